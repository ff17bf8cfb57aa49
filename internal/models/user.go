package models

import (
	"strings"
	"time"
)

// User represents a registered user account.
type User struct {
	EntityMeta

	// Email is the login (unique, stored lower-cased).
	Email string

	// PasswordHash is the bcrypt hash of the password.
	PasswordHash string

	IsActive bool

	// IsAdmin grants access to the menu upload.
	IsAdmin bool

	Profile Profile
}

// Profile is the display data attached one-to-one to a User.
type Profile struct {
	// Username is unique; Slug is derived from it.
	Username string
	Slug     string

	FirstName string
	LastName  string

	// Birthdate is optional (nil when unknown).
	Birthdate *time.Time

	// Phone is unique and stored in E.164 form.
	Phone string
}

// NewUser creates a user with the given email and password hash.
func NewUser(email, passwordHash string, profile Profile) *User {
	u := &User{
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		IsActive:     true,
		Profile:      profile,
	}
	u.Profile.Slug = Slugify(profile.Username)
	u.Touch(time.Now())
	return u
}

// DisplayName is "First Last".
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.Profile.FirstName + " " + u.Profile.LastName)
}

// NormalizeEmail lower-cases the domain part of an address.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + strings.ToLower(email[at:])
}

// Slugify converts a username into a URL-safe slug.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			dash = false
		case r == '-' || r == ' ':
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
