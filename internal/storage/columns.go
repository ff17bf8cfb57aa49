package storage

import (
	"strings"

	"github.com/mmynk/smakolyk/internal/models"
)

// SelectionColumns lists the per-category columns of pending_orders in category order:
// dish, quantity for each category.
func SelectionColumns() []string {
	cols := make([]string, 0, 2*models.NumCategories)
	for _, c := range models.Categories {
		cols = append(cols, c.String(), c.QuantityField())
	}
	return cols
}

// HistoryColumns lists the per-category columns of history in category order:
// dish, quantity, unit price for each category.
func HistoryColumns() []string {
	cols := make([]string, 0, 3*models.NumCategories)
	for _, c := range models.Categories {
		cols = append(cols, c.String(), c.QuantityField(), c.PriceColumn())
	}
	return cols
}

// JoinColumns renders a column list for a SELECT or INSERT.
func JoinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

// SelectionArgs flattens the selections of an order in SelectionColumns order.
func SelectionArgs(o *models.PendingOrder) []any {
	args := make([]any, 0, 2*models.NumCategories)
	for _, c := range models.Categories {
		args = append(args, o.Selections[c].Dish, o.Selections[c].Quantity)
	}
	return args
}

// SelectionDest returns scan destinations for SelectionColumns.
func SelectionDest(o *models.PendingOrder) []any {
	dest := make([]any, 0, 2*models.NumCategories)
	for _, c := range models.Categories {
		dest = append(dest, &o.Selections[c].Dish, &o.Selections[c].Quantity)
	}
	return dest
}

// HistoryArgs flattens the lines of a record in HistoryColumns order.
func HistoryArgs(r *models.HistoryRecord) []any {
	args := make([]any, 0, 3*models.NumCategories)
	for _, c := range models.Categories {
		args = append(args, r.Lines[c].Dish, r.Lines[c].Quantity, r.Lines[c].UnitPrice)
	}
	return args
}

// HistoryDest returns scan destinations for HistoryColumns.
func HistoryDest(r *models.HistoryRecord) []any {
	dest := make([]any, 0, 3*models.NumCategories)
	for _, c := range models.Categories {
		dest = append(dest, &r.Lines[c].Dish, &r.Lines[c].Quantity, &r.Lines[c].UnitPrice)
	}
	return dest
}
