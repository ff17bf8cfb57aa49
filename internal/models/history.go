package models

import "time"

// HistoryLine is the snapshot of one category of a submitted order.
type HistoryLine struct {
	Dish     string
	Quantity int

	// UnitPrice is the menu price at the time of ordering (0 if the dish was not on the menu).
	UnitPrice int64
}

// Amount is Quantity × UnitPrice.
func (l HistoryLine) Amount() int64 {
	return int64(l.Quantity) * l.UnitPrice
}

// HistoryRecord is the immutable record of a submitted order.
// It is created in the same transaction as the PendingOrder and never updated;
// the weekly aggregation does not touch it.
type HistoryRecord struct {
	EntityMeta

	UserID string
	Date   time.Time

	// Lines is indexed by Category.
	Lines [NumCategories]HistoryLine

	// Total is the sum of every line amount.
	Total int64
}
