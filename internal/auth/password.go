package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/internal/validation"
)

const minPasswordLength = 8

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
)

// UserStorage defines the interface for user persistence operations.
// This allows the authenticator to be independent of the storage implementation.
type UserStorage interface {
	ProfileLookup
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SetAdmin(ctx context.Context, userID string, admin bool) error
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage UserStorage
	now     func() time.Time
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage UserStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
		now:     time.Now,
	}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Register validates the signup form and creates a new account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, form SignupForm) (*models.User, error) {
	var errs validation.Errors

	email := models.NormalizeEmail(form.Email)
	switch {
	case email == "":
		errs.Add(validation.Required, "email", nil)
	case !ValidEmail(email):
		errs.Add(validation.InvalidEmail, "email", nil)
	default:
		existing, err := a.storage.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			errs.Add(validation.Taken, "email", nil)
		}
	}

	if err := a.ValidateCredential(form.Password); err != nil {
		errs.Add(validation.WeakPassword, "password", validation.Params{"min": minPasswordLength})
	} else if form.Password != form.PasswordConfirm {
		errs.Add(validation.PasswordMismatch, "password_confirm", nil)
	}

	profile, err := ValidateProfile(ctx, a.storage, form.ProfileForm, "", a.now())
	if err != nil {
		pe, ok := validation.From(err)
		if !ok {
			return nil, err
		}
		errs = append(errs, pe...)
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(email, string(hashedPassword), profile)
	if err := a.storage.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the email and password, returning the user if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	// Compare password hash
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// EnsureAdmin creates the admin account if it is missing and grants it the admin flag.
// It is a no-op when email is empty.
func (a *PasswordAuthenticator) EnsureAdmin(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" {
		return nil, nil
	}

	user, err := a.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		if err := a.ValidateCredential(password); err != nil {
			return nil, fmt.Errorf("admin password: %w", err)
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		username := strings.SplitN(email, "@", 2)[0]
		user = models.NewUser(email, string(hashedPassword), models.Profile{
			Username:  username,
			FirstName: "Admin",
			LastName:  Capitalize(username),
			Phone:     "admin:" + username,
		})
		user.IsAdmin = true
		if err := a.storage.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create admin: %w", err)
		}
		return user, nil
	}

	if !user.IsAdmin {
		if err := a.storage.SetAdmin(ctx, user.ID, true); err != nil {
			return nil, err
		}
		user.IsAdmin = true
	}
	return user, nil
}
