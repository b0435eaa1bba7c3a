package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsettle/internal/money"
)

// Expense is one recorded cost paid by a single participant.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// TripID is the trip this expense belongs to.
	TripID string

	// Description is a human-readable label (e.g., "Dinner at Ramiro").
	Description string

	// Amount is the total cost in Currency. Always positive.
	Amount decimal.Decimal

	// Currency is the ISO 4217 code Amount and the splits are expressed in.
	Currency string

	// ExchangeRate converts Currency into the trip's base currency.
	// The zero value means "no conversion".
	ExchangeRate decimal.Decimal

	// PaidBy is the participant ID who fronted the money.
	PaidBy string

	// Splits divide Amount between participants, in Currency.
	Splits []Split

	// CreatedBy is the user ID who recorded this expense.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Split is one participant's share of an expense.
type Split struct {
	ParticipantID string

	// Amount is the share in the parent expense's currency.
	Amount decimal.Decimal

	// Percentage is informational only; balances use Amount.
	Percentage decimal.NullDecimal
}

// Validate checks an expense at the API boundary. It does not require the
// splits to add up to Amount; an uneven expense shows up as a residual in the
// trip balance instead.
func (e *Expense) Validate() error {
	if !e.Amount.IsPositive() {
		return errors.New("expense amount must be positive")
	}
	if e.PaidBy == "" {
		return errors.New("expense payer is required")
	}
	code, err := money.ValidateCurrency(e.Currency)
	if err != nil {
		return err
	}
	e.Currency = code
	if e.ExchangeRate.IsNegative() {
		return errors.New("exchange rate must not be negative")
	}
	for i, s := range e.Splits {
		if s.ParticipantID == "" {
			return fmt.Errorf("split %d: participant is required", i)
		}
		if s.Amount.IsNegative() {
			return fmt.Errorf("split %d: amount must not be negative", i)
		}
	}
	return nil
}

// SplitTotal returns the sum of all split amounts.
func (e *Expense) SplitTotal() decimal.Decimal {
	total := decimal.Zero
	for _, s := range e.Splits {
		total = total.Add(s.Amount)
	}
	return total
}
