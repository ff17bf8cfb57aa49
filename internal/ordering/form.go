package ordering

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/internal/validation"
)

// FormOptions are the dish choices offered by the order form, built from the current
// menu when the form is rendered or submitted.
type FormOptions struct {
	// Dishes is indexed by Category; the first choice of each list is models.NotChosen.
	Dishes [models.NumCategories][]string
	// Prices maps category name -> dish -> unit price, for the client-side running total.
	Prices map[string]map[string]int64
	// MaxQuantity bounds every submitted quantity.
	MaxQuantity int
}

// NewFormOptions builds the form choices of menu.
func NewFormOptions(menu *models.Menu) FormOptions {
	var opts FormOptions
	for _, c := range models.Categories {
		opts.Dishes[c] = append([]string{models.NotChosen}, menu.Names(c)...)
	}
	opts.Prices = menu.Prices()
	opts.MaxQuantity = models.MaxQuantity
	return opts
}

// Offers reports whether dish is a valid choice for category.
func (o FormOptions) Offers(category models.Category, dish string) bool {
	for _, d := range o.Dishes[category] {
		if d == dish {
			return true
		}
	}
	return false
}

// DayInput is the raw content of one day sub-form.
type DayInput struct {
	Dishes     [models.NumCategories]string
	Quantities [models.NumCategories]string
}

// FieldName is the form field of a category on the day with the given index, e.g. "day0-dessert".
func FieldName(day int, field string) string {
	return fmt.Sprintf("day%d-%s", day, field)
}

// Normalize validates one day sub-form against opts and returns its selections.
// An empty or "Not chosen" dish always yields quantity 0; an empty quantity is 0.
// Quantities above opts.MaxQuantity are rejected.
func Normalize(day int, in DayInput, opts FormOptions) ([models.NumCategories]models.Selection, validation.Errors) {
	var sels [models.NumCategories]models.Selection
	var errs validation.Errors

	for _, c := range models.Categories {
		dish := strings.TrimSpace(in.Dishes[c])
		if dish != "" && !opts.Offers(c, dish) {
			errs.Add(validation.UnknownDish, FieldName(day, c.String()), validation.Params{"value": dish})
			continue
		}

		qty := 0
		if raw := strings.TrimSpace(in.Quantities[c]); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 || n > opts.MaxQuantity {
				errs.Add(validation.InvalidQuantity, FieldName(day, c.QuantityField()), validation.Params{
					"value": raw,
					"max":   opts.MaxQuantity,
				})
				continue
			}
			qty = n
		}

		sels[c] = models.NewSelection(dish, qty)
	}
	return sels, errs
}

// DayView is one day of the order form with its date.
type DayView struct {
	Index int
	Date  time.Time
	Name  string
}

// Days labels the dates of a week for the order form.
func Days(dates []time.Time) []DayView {
	days := make([]DayView, len(dates))
	for i, d := range dates {
		days[i] = DayView{Index: i, Date: d, Name: d.Weekday().String()}
	}
	return days
}
