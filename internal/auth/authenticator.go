// Package auth issues session tokens and verifies user credentials.
package auth

import (
	"context"

	"github.com/mmynk/tripsettle/internal/models"
)

// Authenticator verifies who is calling the trip ledger.
// Implementations decide what a credential is (password today, possibly
// passkeys or OAuth later).
type Authenticator interface {
	// Register creates a new account and returns it.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the user owning email if credential matches.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential rejects credentials that do not meet the implementation's rules.
	ValidateCredential(credential string) error
}
