package models

import (
	"errors"
	"strings"

	"github.com/mmynk/tripsettle/internal/money"
)

// ParticipantType distinguishes registered members from guest placeholders.
type ParticipantType string

const (
	ParticipantMember ParticipantType = "member"
	ParticipantGuest  ParticipantType = "guest"
)

// Trip is the scope all expenses, settlements and balances belong to.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string

	// Name is the display name of the trip (e.g., "Lisbon 2026").
	Name string

	// BaseCurrency is the ISO 4217 code all balances are expressed in.
	BaseCurrency string

	// CreatedBy is the user ID of the trip creator.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the trip was created.
	CreatedAt int64
}

// Validate normalizes the base currency and checks required fields.
func (t *Trip) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("trip name is required")
	}
	code, err := money.ValidateCurrency(t.BaseCurrency)
	if err != nil {
		return err
	}
	t.BaseCurrency = code
	return nil
}

// Participant is a person taking part in a trip.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	// TripID is the trip this participant belongs to.
	TripID string

	// UserID links a member to a registered account. Empty for guests.
	UserID string

	// DisplayName is shown in balances and settlement suggestions.
	DisplayName string

	// Avatar is an optional avatar reference (URL or asset key).
	Avatar string

	Type ParticipantType

	// CreatedAt is the Unix timestamp when the participant was added.
	CreatedAt int64
}

// Validate checks required fields and defaults the type to guest.
func (p *Participant) Validate() error {
	if strings.TrimSpace(p.DisplayName) == "" {
		return errors.New("participant display name is required")
	}
	switch p.Type {
	case "":
		p.Type = ParticipantGuest
	case ParticipantMember, ParticipantGuest:
	default:
		return errors.New("participant type must be member or guest")
	}
	return nil
}
