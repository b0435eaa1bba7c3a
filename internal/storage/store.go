// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/tripsettle/internal/models"
)

// ErrNotFound is wrapped by every lookup that finds no row.
var ErrNotFound = errors.New("not found")

// ErrConflict is wrapped by writes that would break a uniqueness rule, such
// as a participant joining a second group of the same trip.
var ErrConflict = errors.New("conflict")

// Store defines the interface for trip ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateTrip persists a new trip. The trip.ID field will be populated by the store.
	CreateTrip(ctx context.Context, trip *models.Trip) error

	// GetTrip retrieves a trip by its ID.
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)

	// ListTripsForUser returns trips the user created or takes part in, newest first.
	ListTripsForUser(ctx context.Context, userID string) ([]*models.Trip, error)

	// AddParticipant adds a member or guest to a trip.
	AddParticipant(ctx context.Context, participant *models.Participant) error

	// ListParticipants returns a trip's participants in the order they joined.
	ListParticipants(ctx context.Context, tripID string) ([]*models.Participant, error)

	// CreateGroup persists a settlement group and its members. A participant
	// belongs to at most one group per trip; a second membership fails with
	// ErrConflict and nothing is stored.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its member IDs.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups returns a trip's groups in creation order.
	ListGroups(ctx context.Context, tripID string) ([]*models.Group, error)

	// DeleteGroup removes a group. Its participants become individuals again.
	DeleteGroup(ctx context.Context, groupID string) error

	// CreateExpense persists an expense together with its splits.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its splits.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpenses returns a trip's expenses with splits, oldest first.
	ListExpenses(ctx context.Context, tripID string) ([]*models.Expense, error)

	// DeleteExpense removes an expense and its splits.
	DeleteExpense(ctx context.Context, expenseID string) error

	// CreateSettlement records a payment that has been made.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlement retrieves a settlement by ID.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ListSettlementsByTrip returns a trip's settlements, newest first.
	ListSettlementsByTrip(ctx context.Context, tripID string) ([]*models.Settlement, error)

	// DeleteSettlement removes a settlement by ID.
	DeleteSettlement(ctx context.Context, settlementID string) error

	// CreateUser persists a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns nil, nil when no account uses email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns nil, nil when the account does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
