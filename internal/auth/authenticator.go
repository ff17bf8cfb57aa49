package auth

import (
	"context"

	"github.com/mmynk/smakolyk/internal/models"
)

// Authenticator owns account creation and sign-in for the pages and the API.
type Authenticator interface {
	// Register validates the signup form and creates the account with its profile.
	// Validation failures are returned as validation.Errors.
	Register(ctx context.Context, form SignupForm) (*models.User, error)

	// Authenticate returns the active user matching email and credential, or ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// EnsureAdmin creates the menu administrator account unless it already exists.
	// An empty email is a no-op.
	EnsureAdmin(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential reports a *validation.Error when credential is too weak.
	ValidateCredential(credential string) error
}

var _ Authenticator = (*PasswordAuthenticator)(nil)
