// Package validation defines the user-facing validation failures.
//
// A failure is a Kind plus its parameters; the text shown to a user is only
// produced when Error() is called at the web or API boundary.
package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Kind enumerates validation failures.
type Kind int

const (
	FileExtension Kind = iota + 1
	FileTooLarge
	FileUnreadable
	Columns
	EmptyDish
	DishTooShort
	DishTooLong
	DuplicateDish
	DishPrice
	Required
	TooShort
	TooLong
	InvalidEmail
	InvalidPhone
	InvalidDate
	InvalidQuantity
	UnknownDish
	Taken
	PasswordMismatch
	WeakPassword
	TooYoung
	TooOld
	TotalTooLarge
)

// Params carries the values interpolated into a failure message.
type Params map[string]any

// Error is a single validation failure on one field (Field may be empty for form-wide failures).
type Error struct {
	Kind   Kind
	Field  string
	Params Params
}

// New creates a validation failure.
func New(kind Kind, field string, params Params) *Error {
	return &Error{Kind: kind, Field: field, Params: params}
}

func (e *Error) Error() string {
	p := func(key string) any { return e.Params[key] }

	switch e.Kind {
	case FileExtension:
		return fmt.Sprintf("Invalid file extension! Valid extensions are %v.", p("valid"))
	case FileTooLarge:
		return fmt.Sprintf("The file size is too big! Max size is %v MB.", p("max_mb"))
	case FileUnreadable:
		return fmt.Sprintf("The file could not be read as a spreadsheet: %v.", p("reason"))
	case Columns:
		return fmt.Sprintf("Invalid column names: %v. Expected: %v.", p("got"), p("expected"))
	case EmptyDish:
		return fmt.Sprintf("The value in the column '%s' cannot be empty!", e.Field)
	case DishTooShort:
		return fmt.Sprintf("The value '%v' in the column '%s' is too short! Minimal length is %v.", p("value"), e.Field, p("min"))
	case DishTooLong:
		return fmt.Sprintf("The value '%v' in the column '%s' is too long! Maximal length is %v.", p("value"), e.Field, p("max"))
	case DuplicateDish:
		return fmt.Sprintf("The value '%v' appears more than once in the column '%s'!", p("value"), e.Field)
	case DishPrice:
		return fmt.Sprintf("The value '%v' in the column '%s' is too small! Minimal price is %v.", p("value"), e.Field, p("min"))
	case Required:
		return fmt.Sprintf("%s is required!", label(e.Field))
	case TooShort:
		return fmt.Sprintf("%s should contain at least %v characters!", label(e.Field), p("min"))
	case TooLong:
		return fmt.Sprintf("%s should contain at most %v characters!", label(e.Field), p("max"))
	case InvalidEmail:
		return "Enter a valid email address!"
	case InvalidPhone:
		return "Enter a valid international phone number!"
	case InvalidDate:
		return "Enter a valid date!"
	case InvalidQuantity:
		if limit := p("max"); limit != nil {
			return fmt.Sprintf("%s must be a whole number from 0 to %v!", label(e.Field), limit)
		}
		return fmt.Sprintf("%s must be a whole number not less than 0!", label(e.Field))
	case TotalTooLarge:
		return "The order total is too large!"
	case UnknownDish:
		return fmt.Sprintf("'%v' is not on the current menu!", p("value"))
	case Taken:
		return fmt.Sprintf("Current %s is already taken!", strings.ToLower(label(e.Field)))
	case PasswordMismatch:
		return "Password does not match!"
	case WeakPassword:
		return fmt.Sprintf("Password should contain at least %v characters!", p("min"))
	case TooYoung:
		return "You are too young, go to the school!"
	case TooOld:
		return "Enter a valid birthdate!"
	}
	return fmt.Sprintf("invalid value for %s", e.Field)
}

func label(field string) string {
	if field == "" {
		return "Value"
	}
	s := strings.ReplaceAll(field, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}

// Errors collects the failures of a whole form.
type Errors []*Error

func (es Errors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, " ")
}

// Add appends a failure.
func (es *Errors) Add(kind Kind, field string, params Params) {
	*es = append(*es, New(kind, field, params))
}

// Err returns nil when no failure was collected.
func (es Errors) Err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

// ByField groups rendered messages by field name.
func (es Errors) ByField() map[string][]string {
	out := make(map[string][]string)
	for _, e := range es {
		out[e.Field] = append(out[e.Field], e.Error())
	}
	return out
}

// From extracts validation failures from err. ok is false if err is not a validation failure.
func From(err error) (Errors, bool) {
	var es Errors
	if errors.As(err, &es) {
		return es, true
	}
	var e *Error
	if errors.As(err, &e) {
		return Errors{e}, true
	}
	return nil, false
}

// Is reports whether err carries a failure of the given kind.
func Is(err error, kind Kind) bool {
	es, ok := From(err)
	if !ok {
		return false
	}
	for _, e := range es {
		if e.Kind == kind {
			return true
		}
	}
	return false
}
