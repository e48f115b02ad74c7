// Package auth handles account credentials and session tokens.
package auth

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// Authenticator registers users and verifies their credentials.
// Implementations can be swapped (password, passkeys, OAuth) without
// changing the service layer.
type Authenticator interface {
	// Register creates a new account. The credential format depends on the
	// implementation.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the user if the credential matches.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks the credential against the implementation's
	// requirements.
	ValidateCredential(credential string) error
}
