package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"connectrpc.com/connect"

	"github.com/mmynk/tripsettle/internal/cache"
	"github.com/mmynk/tripsettle/internal/metrics"
	"github.com/mmynk/tripsettle/internal/middleware"
	"github.com/mmynk/tripsettle/internal/models"
	"github.com/mmynk/tripsettle/internal/storage"
	"github.com/mmynk/tripsettle/pkg/api"
	"github.com/mmynk/tripsettle/pkg/api/apiconnect"
)

var _ apiconnect.TripServiceHandler = (*TripService)(nil)

// TripService implements the Connect TripService: the trip ledger and the
// balance report computed from it.
type TripService struct {
	store           storage.Store
	cache           *cache.BalanceCache
	metrics         *metrics.Metrics
	logger          *slog.Logger
	defaultCurrency string
}

// Option configures a TripService.
type Option func(*TripService)

// WithCache serves GetBalances from c when possible. Writes invalidate it.
func WithCache(c *cache.BalanceCache) Option {
	return func(s *TripService) { s.cache = c }
}

// WithMetrics records engine runs on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *TripService) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *TripService) { s.logger = logger }
}

// WithDefaultCurrency sets the base currency of trips created without one.
func WithDefaultCurrency(code string) Option {
	return func(s *TripService) { s.defaultCurrency = code }
}

// NewTripService creates a new TripService with the given storage backend.
func NewTripService(store storage.Store, opts ...Option) *TripService {
	s := &TripService{
		store:           store,
		logger:          slog.Default(),
		defaultCurrency: "USD",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// tripAccess is a trip the caller may read and write, with its participants.
type tripAccess struct {
	trip         *models.Trip
	participants []*models.Participant
}

func (a *tripAccess) participant(id string) *models.Participant {
	for _, p := range a.participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (a *tripAccess) participantIDs() []string {
	ids := make([]string, len(a.participants))
	for i, p := range a.participants {
		ids[i] = p.ID
	}
	return ids
}

// requireUser returns the caller's user ID or an Unauthenticated error.
func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errors.New("authentication required"))
	}
	return userID, nil
}

// authorizeTrip loads a trip and checks the caller created it or is one of
// its member participants.
func (s *TripService) authorizeTrip(ctx context.Context, tripID string) (*tripAccess, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if tripID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("trip_id required"))
	}

	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		return nil, toConnectError(err)
	}
	participants, err := s.store.ListParticipants(ctx, tripID)
	if err != nil {
		return nil, toConnectError(err)
	}

	access := &tripAccess{trip: trip, participants: participants}
	isMember := slices.ContainsFunc(participants, func(p *models.Participant) bool { return p.UserID == userID })
	if trip.CreatedBy != userID && !isMember {
		s.logger.Warn("Trip access denied", "trip_id", tripID, "user_id", userID)
		return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("you must be a member of this trip"))
	}
	return access, nil
}

// invalidate drops the cached report of a trip after a write. Failures only
// cost a stale read until the entry expires, so they are logged.
func (s *TripService) invalidate(ctx context.Context, tripID string) {
	if err := s.cache.Invalidate(ctx, tripID); err != nil {
		s.logger.Warn("Balance cache invalidation failed", "trip_id", tripID, "error", err)
	}
}

// displayName picks the name a user appears under when they join a trip.
func (s *TripService) displayName(ctx context.Context, userID string) string {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Warn("User lookup failed", "user_id", userID, "error", err)
	}
	switch {
	case user != nil && user.DisplayName != "":
		return user.DisplayName
	case user != nil:
		return user.Email
	case userID == middleware.GetUserID(ctx) && middleware.GetEmail(ctx) != "":
		return middleware.GetEmail(ctx)
	}
	return userID
}

// CreateTrip creates a trip with the caller as its first member.
func (s *TripService) CreateTrip(ctx context.Context, req *connect.Request[api.CreateTripRequest]) (*connect.Response[api.CreateTripResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("CreateTrip request received", "name", req.Msg.Name, "user_id", userID)

	trip := &models.Trip{
		Name:         req.Msg.Name,
		BaseCurrency: req.Msg.BaseCurrency,
		CreatedBy:    userID,
	}
	if trip.BaseCurrency == "" {
		trip.BaseCurrency = s.defaultCurrency
	}
	if err := trip.Validate(); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	if err := s.store.CreateTrip(ctx, trip); err != nil {
		s.logger.Error("CreateTrip failed", "error", err)
		return nil, toConnectError(err)
	}

	creator := &models.Participant{
		TripID:      trip.ID,
		UserID:      userID,
		DisplayName: s.displayName(ctx, userID),
		Type:        models.ParticipantMember,
	}
	if err := s.store.AddParticipant(ctx, creator); err != nil {
		s.logger.Error("CreateTrip failed to add creator", "trip_id", trip.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Trip created", "trip_id", trip.ID, "base_currency", trip.BaseCurrency)

	return connect.NewResponse(&api.CreateTripResponse{
		Trip:        tripToAPI(trip),
		Participant: participantToAPI(creator),
	}), nil
}

// GetTrip returns a trip with its participants and groups.
func (s *TripService) GetTrip(ctx context.Context, req *connect.Request[api.GetTripRequest]) (*connect.Response[api.GetTripResponse], error) {
	access, err := s.authorizeTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroups(ctx, access.trip.ID)
	if err != nil {
		s.logger.Error("GetTrip failed to list groups", "trip_id", access.trip.ID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetTripResponse{
		Trip:         tripToAPI(access.trip),
		Participants: mapSlice(access.participants, participantToAPI),
		Groups:       mapSlice(groups, groupToAPI),
	}), nil
}

// ListTrips returns the trips the caller created or belongs to.
func (s *TripService) ListTrips(ctx context.Context, req *connect.Request[api.ListTripsRequest]) (*connect.Response[api.ListTripsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	trips, err := s.store.ListTripsForUser(ctx, userID)
	if err != nil {
		s.logger.Error("ListTrips failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("ListTrips successful", "user_id", userID, "count", len(trips))
	return connect.NewResponse(&api.ListTripsResponse{Trips: mapSlice(trips, tripToAPI)}), nil
}

// AddParticipant adds a member or guest to a trip.
func (s *TripService) AddParticipant(ctx context.Context, req *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error) {
	access, err := s.authorizeTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, err
	}

	p := &models.Participant{
		TripID:      access.trip.ID,
		UserID:      req.Msg.UserID,
		DisplayName: req.Msg.DisplayName,
		Avatar:      req.Msg.Avatar,
		Type:        models.ParticipantType(req.Msg.Type),
	}
	if p.UserID != "" {
		p.Type = models.ParticipantMember
		if p.DisplayName == "" {
			p.DisplayName = s.displayName(ctx, p.UserID)
		}
		for _, existing := range access.participants {
			if existing.UserID == p.UserID {
				return nil, connect.NewError(connect.CodeAlreadyExists, fmt.Errorf("user already takes part in this trip"))
			}
		}
	}
	if err := p.Validate(); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	if err := s.store.AddParticipant(ctx, p); err != nil {
		s.logger.Error("AddParticipant failed", "trip_id", access.trip.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.invalidate(ctx, access.trip.ID)

	s.logger.Info("Participant added", "trip_id", access.trip.ID, "participant_id", p.ID, "type", p.Type)
	return connect.NewResponse(&api.AddParticipantResponse{Participant: participantToAPI(p)}), nil
}

// CreateGroup makes a settlement group out of trip participants.
func (s *TripService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	access, err := s.authorizeTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, err
	}

	group := &models.Group{
		TripID:    access.trip.ID,
		Name:      req.Msg.Name,
		Avatar:    req.Msg.Avatar,
		MemberIDs: dedupe(req.Msg.MemberIDs),
	}
	if err := group.Validate(); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	for _, id := range group.MemberIDs {
		if access.participant(id) == nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("participant %s is not part of this trip", id))
		}
	}

	// Each participant settles through exactly one entity.
	existing, err := s.store.ListGroups(ctx, access.trip.ID)
	if err != nil {
		s.logger.Error("CreateGroup failed - could not list groups", "trip_id", access.trip.ID, "error", err)
		return nil, toConnectError(err)
	}
	for _, g := range existing {
		for _, id := range group.MemberIDs {
			if slices.Contains(g.MemberIDs, id) {
				return nil, connect.NewError(connect.CodeAlreadyExists,
					fmt.Errorf("participant %s is already in group %q", id, g.Name))
			}
		}
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		s.logger.Error("CreateGroup failed", "trip_id", access.trip.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.invalidate(ctx, access.trip.ID)

	s.logger.Info("Group created", "trip_id", access.trip.ID, "group_id", group.ID, "members_count", len(group.MemberIDs))
	return connect.NewResponse(&api.CreateGroupResponse{Group: groupToAPI(group)}), nil
}

// DeleteGroup removes a group. Its members settle individually again.
func (s *TripService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if _, err := s.authorizeTrip(ctx, group.TripID); err != nil {
		return nil, err
	}

	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		s.logger.Error("DeleteGroup failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.invalidate(ctx, group.TripID)

	s.logger.Info("Group deleted", "group_id", group.ID, "trip_id", group.TripID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// dedupe drops repeated ids, keeping the first occurrence.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
