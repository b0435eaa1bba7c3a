package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Settlement represents a payment between trip participants to clear debts.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// TripID is the trip this settlement belongs to.
	TripID string

	// FromParticipantID is the participant who paid (debtor settling up).
	FromParticipantID string

	// ToParticipantID is the participant who received payment (creditor being paid).
	ToParticipantID string

	// Amount is the payment amount in the trip's base currency.
	Amount decimal.Decimal

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string

	// Note is an optional description for the settlement.
	Note string
}

// Validate checks a settlement before it is persisted.
func (s *Settlement) Validate() error {
	if s.FromParticipantID == "" || s.ToParticipantID == "" {
		return errors.New("settlement needs both a payer and a payee")
	}
	if s.FromParticipantID == s.ToParticipantID {
		return errors.New("settlement payer and payee must differ")
	}
	if !s.Amount.IsPositive() {
		return errors.New("settlement amount must be positive")
	}
	return nil
}
