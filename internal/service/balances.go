package service

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/tripsettle/internal/cache"
	"github.com/mmynk/tripsettle/internal/calculator"
	"github.com/mmynk/tripsettle/pkg/api"
)

// GetBalances returns the trip's balance report: per-participant balances,
// per-entity balances when groups exist, and suggested payments.
func (s *TripService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	// Read before any trip data is loaded; writes after this point make
	// the computed report stale.
	generation, genErr := s.cache.Generation(ctx, req.Msg.TripID)

	access, err := s.authorizeTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, err
	}
	tripID := access.trip.ID
	if genErr != nil {
		s.logger.Warn("Balance cache generation read failed", "trip_id", tripID, "error", genErr)
	}

	cached, ok, err := s.cache.Get(ctx, tripID)
	if err != nil {
		s.logger.Warn("Balance cache read failed", "trip_id", tripID, "error", err)
	}
	if ok {
		s.metrics.ObserveCacheHit()
		s.logger.Debug("GetBalances served from cache", "trip_id", tripID)
		return connect.NewResponse(cached), nil
	}

	expenses, err := s.store.ListExpenses(ctx, tripID)
	if err != nil {
		s.logger.Error("GetBalances failed - could not list expenses", "trip_id", tripID, "error", err)
		return nil, toConnectError(err)
	}
	settlements, err := s.store.ListSettlementsByTrip(ctx, tripID)
	if err != nil {
		s.logger.Error("GetBalances failed - could not list settlements", "trip_id", tripID, "error", err)
		return nil, toConnectError(err)
	}
	groups, err := s.store.ListGroups(ctx, tripID)
	if err != nil {
		s.logger.Error("GetBalances failed - could not list groups", "trip_id", tripID, "error", err)
		return nil, toConnectError(err)
	}

	start := time.Now()
	report := calculator.BuildReport(reportInput(access.participants, expenses, settlements, groups))
	s.metrics.ObserveComputed(time.Since(start), len(report.Suggestions), len(report.Unresolved))

	for _, u := range report.Unresolved {
		s.logger.Warn("Balance references unknown participant",
			"trip_id", tripID,
			"participant_id", u.Participant.ID,
			"net_balance", u.NetBalance,
		)
	}

	resp := reportToAPI(access.trip, report)
	if genErr == nil {
		switch err := s.cache.Set(ctx, tripID, generation, resp); {
		case errors.Is(err, cache.ErrStale):
			s.logger.Debug("Balance report not cached, trip changed meanwhile", "trip_id", tripID)
		case err != nil:
			s.logger.Warn("Balance cache write failed", "trip_id", tripID, "error", err)
		}
	}

	s.logger.Info("GetBalances successful",
		"trip_id", tripID,
		"expenses_count", len(expenses),
		"settlements_count", len(settlements),
		"groups_count", len(groups),
		"suggestions_count", len(report.Suggestions),
	)

	return connect.NewResponse(resp), nil
}
