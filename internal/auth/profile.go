package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"

	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/internal/validation"
)

const (
	minNameLength = 2
	maxNameLength = 30
	minAge        = 18
	maxAge        = 90
)

// ProfileForm is the raw profile input of the signup and profile edit forms.
type ProfileForm struct {
	Username  string
	FirstName string
	LastName  string
	// Birthdate is YYYY-MM-DD or empty.
	Birthdate string
	Phone     string
}

// SignupForm is the raw signup input.
type SignupForm struct {
	Email           string
	Password        string
	PasswordConfirm string
	ProfileForm
}

// ProfileLookup is the subset of storage needed to enforce profile uniqueness.
type ProfileLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
}

// ValidateProfile checks form and returns the normalized profile. selfID is the user being
// edited (empty on signup); their own username and phone do not count as taken.
func ValidateProfile(ctx context.Context, lookup ProfileLookup, form ProfileForm, selfID string, now time.Time) (models.Profile, error) {
	var errs validation.Errors
	profile := models.Profile{
		Username:  strings.TrimSpace(form.Username),
		FirstName: Capitalize(form.FirstName),
		LastName:  Capitalize(form.LastName),
	}

	checkLength(&errs, "username", profile.Username)
	checkLength(&errs, "first_name", profile.FirstName)
	checkLength(&errs, "last_name", profile.LastName)

	if profile.Username != "" {
		existing, err := lookup.GetUserByUsername(ctx, profile.Username)
		if err != nil {
			return models.Profile{}, err
		}
		if existing != nil && existing.ID != selfID {
			errs.Add(validation.Taken, "username", nil)
		}
	}

	phone, ok := NormalizePhone(form.Phone)
	switch {
	case strings.TrimSpace(form.Phone) == "":
		errs.Add(validation.Required, "phone", nil)
	case !ok:
		errs.Add(validation.InvalidPhone, "phone", nil)
	default:
		profile.Phone = phone
		existing, err := lookup.GetUserByPhone(ctx, phone)
		if err != nil {
			return models.Profile{}, err
		}
		if existing != nil && existing.ID != selfID {
			errs.Add(validation.Taken, "phone", nil)
		}
	}

	if b := strings.TrimSpace(form.Birthdate); b != "" {
		d, err := models.ParseDate(b)
		if err != nil {
			errs.Add(validation.InvalidDate, "birthdate", nil)
		} else {
			switch age := Age(d, now); {
			case age < minAge:
				errs.Add(validation.TooYoung, "birthdate", validation.Params{"min": minAge})
			case age > maxAge:
				errs.Add(validation.TooOld, "birthdate", validation.Params{"max": maxAge})
			}
			profile.Birthdate = &d
		}
	}

	if err := errs.Err(); err != nil {
		return models.Profile{}, err
	}
	profile.Slug = models.Slugify(profile.Username)
	return profile, nil
}

func checkLength(errs *validation.Errors, field, value string) {
	n := utf8.RuneCountInString(value)
	switch {
	case n == 0:
		errs.Add(validation.Required, field, nil)
	case n < minNameLength:
		errs.Add(validation.TooShort, field, validation.Params{"min": minNameLength})
	case n > maxNameLength:
		errs.Add(validation.TooLong, field, validation.Params{"max": maxNameLength})
	}
}

// Capitalize trims s and upper-cases its first letter, lower-casing the rest.
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// NormalizePhone parses an international number and returns it in E.164 form.
func NormalizePhone(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	num, err := phonenumbers.Parse(raw, "")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}

// ValidEmail reports whether s is a bare email address.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s, "@")
}

// Age is the number of full years between birthdate and now.
func Age(birthdate, now time.Time) int {
	years := now.Year() - birthdate.Year()
	if now.Month() < birthdate.Month() || (now.Month() == birthdate.Month() && now.Day() < birthdate.Day()) {
		years--
	}
	return years
}
