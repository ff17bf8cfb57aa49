package models

import (
	"math"
	"time"
)

const (
	// NotChosen is stored as the dish of a category the user left empty.
	NotChosen = "Not chosen"

	// MaxQuantity is the largest portion count a selection may carry.
	MaxQuantity = math.MaxInt32

	// DateLayout is the wire and storage format of calendar dates.
	DateLayout = "2006-01-02"
)

// Date returns the calendar date of t (in t's location) as midnight UTC.
// All order and history dates are civil dates in this form.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// Selection is the user's choice for one category of one day.
type Selection struct {
	Dish     string
	Quantity int
}

// NewSelection normalizes a submitted choice: an empty dish always means
// "Not chosen" with quantity 0, whatever quantity was sent.
func NewSelection(dish string, quantity int) Selection {
	if dish == "" || dish == NotChosen {
		return Selection{Dish: NotChosen}
	}
	if quantity < 0 {
		quantity = 0
	}
	return Selection{Dish: dish, Quantity: quantity}
}

// Chosen reports whether a dish was picked.
func (s Selection) Chosen() bool {
	return s.Dish != "" && s.Dish != NotChosen
}

// PendingOrder is one user's selections for one day. At most one exists per user per date.
// Pending orders are deleted in bulk by the weekly aggregation.
type PendingOrder struct {
	EntityMeta

	UserID string
	Date   time.Time

	// Selections is indexed by Category.
	Selections [NumCategories]Selection
}

// AggregatedOrder is a pending order together with its owner's display name,
// as read by the weekly aggregation.
type AggregatedOrder struct {
	PendingOrder
	Name string
}
