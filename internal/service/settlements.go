package service

import (
	"context"
	"fmt"

	"connectrpc.com/connect"

	"github.com/mmynk/tripsettle/internal/models"
	"github.com/mmynk/tripsettle/pkg/api"
)

// RecordSettlement records a payment that has been made between two
// participants, in the trip's base currency.
func (s *TripService) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error) {
	access, err := s.authorizeTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, err
	}
	userID, _ := requireUser(ctx)

	s.logger.Info("RecordSettlement request received",
		"trip_id", req.Msg.TripID,
		"from", req.Msg.From,
		"to", req.Msg.To,
		"amount", req.Msg.Amount,
	)

	settlement := &models.Settlement{
		TripID:            access.trip.ID,
		FromParticipantID: req.Msg.From,
		ToParticipantID:   req.Msg.To,
		Amount:            req.Msg.Amount,
		CreatedBy:         userID,
		Note:              req.Msg.Note,
	}
	if err := settlement.Validate(); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	for _, id := range []string{settlement.FromParticipantID, settlement.ToParticipantID} {
		if access.participant(id) == nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("participant %s is not part of this trip", id))
		}
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		s.logger.Error("RecordSettlement failed", "trip_id", access.trip.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.invalidate(ctx, access.trip.ID)

	s.logger.Info("Settlement recorded", "trip_id", access.trip.ID, "settlement_id", settlement.ID)
	return connect.NewResponse(&api.RecordSettlementResponse{Settlement: settlementToAPI(settlement)}), nil
}

// ListSettlements returns a trip's recorded payments, newest first.
func (s *TripService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	access, err := s.authorizeTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, err
	}

	settlements, err := s.store.ListSettlementsByTrip(ctx, access.trip.ID)
	if err != nil {
		s.logger.Error("ListSettlements failed", "trip_id", access.trip.ID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: mapSlice(settlements, settlementToAPI)}), nil
}

// DeleteSettlement removes a recorded payment, reopening the debt it paid.
func (s *TripService) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}

	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if _, err := s.authorizeTrip(ctx, settlement.TripID); err != nil {
		return nil, err
	}

	if err := s.store.DeleteSettlement(ctx, settlement.ID); err != nil {
		s.logger.Error("DeleteSettlement failed", "settlement_id", settlement.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.invalidate(ctx, settlement.TripID)

	s.logger.Info("Settlement deleted", "settlement_id", settlement.ID, "trip_id", settlement.TripID)
	return connect.NewResponse(&api.DeleteSettlementResponse{}), nil
}
