package service

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsettle/internal/calculator"
	"github.com/mmynk/tripsettle/internal/models"
	"github.com/mmynk/tripsettle/pkg/api"
)

// CreateExpense records an expense. The request divides it one of three
// ways: explicit splits, a split mode with per-participant inputs, or
// itemized receipt lines. With none of those the amount is split equally
// between every participant of the trip.
func (s *TripService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	msg := req.Msg
	access, err := s.authorizeTrip(ctx, msg.TripID)
	if err != nil {
		return nil, err
	}
	userID, _ := requireUser(ctx)

	s.logger.Info("CreateExpense request received",
		"trip_id", msg.TripID,
		"amount", msg.Amount,
		"currency", msg.Currency,
		"split_mode", msg.SplitMode,
	)

	expense := &models.Expense{
		TripID:       access.trip.ID,
		Description:  msg.Description,
		Amount:       msg.Amount,
		Currency:     msg.Currency,
		ExchangeRate: msg.ExchangeRate,
		PaidBy:       msg.PaidBy,
		CreatedBy:    userID,
	}
	if expense.Currency == "" {
		expense.Currency = access.trip.BaseCurrency
	}
	if err := expense.Validate(); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := normalizeRate(expense, access.trip.BaseCurrency); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if access.participant(expense.PaidBy) == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("payer %s is not part of this trip", expense.PaidBy))
	}

	splits, err := buildSplits(msg, access)
	if err != nil {
		s.logger.Warn("CreateExpense rejected splits", "trip_id", msg.TripID, "error", err)
		return nil, toConnectError(err)
	}
	expense.Splits = splits
	if err := expense.Validate(); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	for _, split := range expense.Splits {
		if access.participant(split.ParticipantID) == nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("participant %s is not part of this trip", split.ParticipantID))
		}
	}
	if residual := expense.Amount.Sub(expense.SplitTotal()); !residual.IsZero() {
		s.logger.Warn("Expense splits do not add up to the amount",
			"trip_id", msg.TripID,
			"amount", expense.Amount,
			"splits_total", expense.SplitTotal(),
		)
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		s.logger.Error("CreateExpense failed", "trip_id", msg.TripID, "error", err)
		return nil, toConnectError(err)
	}
	s.invalidate(ctx, access.trip.ID)

	s.logger.Info("Expense created", "trip_id", access.trip.ID, "expense_id", expense.ID, "splits_count", len(expense.Splits))
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: expenseToAPI(expense)}), nil
}

// normalizeRate defaults the exchange rate for base-currency expenses and
// requires one for foreign-currency expenses.
func normalizeRate(e *models.Expense, baseCurrency string) error {
	if e.Currency == baseCurrency {
		if !e.ExchangeRate.IsZero() && !e.ExchangeRate.Equal(decimal.NewFromInt(1)) {
			return fmt.Errorf("exchange rate for %s into itself must be 1", baseCurrency)
		}
		e.ExchangeRate = decimal.NewFromInt(1)
		return nil
	}
	if !e.ExchangeRate.IsPositive() {
		return fmt.Errorf("exchange rate from %s to %s is required", e.Currency, baseCurrency)
	}
	return nil
}

func buildSplits(msg *api.CreateExpenseRequest, access *tripAccess) ([]models.Split, error) {
	ways := 0
	for _, given := range []bool{len(msg.Splits) > 0, msg.SplitMode != "", len(msg.Items) > 0} {
		if given {
			ways++
		}
	}
	if ways > 1 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("use only one of splits, split_mode or items"))
	}

	switch {
	case len(msg.Splits) > 0:
		return splitsFromAPI(msg.Splits), nil

	case len(msg.Items) > 0:
		subtotal := msg.Subtotal
		if subtotal.IsZero() {
			for _, item := range msg.Items {
				subtotal = subtotal.Add(item.Amount)
			}
		}
		items := make([]calculator.Item, len(msg.Items))
		for i, item := range msg.Items {
			items[i] = calculator.Item{Description: item.Description, Amount: item.Amount, AssignedTo: item.AssignedTo}
		}
		splits, err := calculator.ItemizedSplit(items, msg.Amount, subtotal, access.participantIDs())
		if err != nil {
			return nil, err
		}
		return splitsFromCalculator(dropZero(splits)), nil

	case msg.SplitMode != "":
		mode := calculator.SplitMode(msg.SplitMode)
		inputs := make([]calculator.SplitInput, len(msg.SplitInputs))
		for i, in := range msg.SplitInputs {
			inputs[i] = calculator.SplitInput{ParticipantID: in.ParticipantID, Value: in.Value}
		}
		if mode == calculator.SplitEqual && len(inputs) == 0 {
			return equalSplits(msg.Amount, access)
		}
		splits, err := calculator.BuildSplits(mode, msg.Amount, inputs)
		if err != nil {
			return nil, err
		}
		return splitsFromCalculator(splits), nil

	default:
		return equalSplits(msg.Amount, access)
	}
}

func equalSplits(amount decimal.Decimal, access *tripAccess) ([]models.Split, error) {
	splits, err := calculator.EqualSplit(amount, access.participantIDs())
	if err != nil {
		return nil, err
	}
	return splitsFromCalculator(splits), nil
}

// dropZero removes participants an itemized receipt assigned nothing to.
func dropZero(splits []calculator.Split) []calculator.Split {
	out := splits[:0:0]
	for _, s := range splits {
		if !s.Amount.IsZero() {
			out = append(out, s)
		}
	}
	return out
}

// ListExpenses returns a trip's expenses, oldest first.
func (s *TripService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	access, err := s.authorizeTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpenses(ctx, access.trip.ID)
	if err != nil {
		s.logger.Error("ListExpenses failed", "trip_id", access.trip.ID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ListExpensesResponse{Expenses: mapSlice(expenses, expenseToAPI)}), nil
}

// DeleteExpense removes an expense from its trip.
func (s *TripService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if _, err := s.authorizeTrip(ctx, expense.TripID); err != nil {
		return nil, err
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		s.logger.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.invalidate(ctx, expense.TripID)

	s.logger.Info("Expense deleted", "expense_id", expense.ID, "trip_id", expense.TripID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}
