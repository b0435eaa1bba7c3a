package models

import (
	"errors"
	"strings"
)

// Group is a set of trip participants who settle as a single wallet,
// e.g. a couple or a household. Balances for a trip with groups are
// aggregated per group before settlements are suggested.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// TripID is the trip this group belongs to.
	TripID string

	// Name is the display name of the group (e.g., "Family Smith").
	Name string

	// Avatar is an optional avatar reference for the group.
	Avatar string

	// MemberIDs are the participant IDs in this group.
	MemberIDs []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Validate checks required fields.
func (g *Group) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return errors.New("group name is required")
	}
	if len(g.MemberIDs) == 0 {
		return errors.New("group needs at least one member")
	}
	return nil
}
