package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/mmynk/smakolyk/internal/models"
)

// ErrOverflow is returned when an amount does not fit in an int64.
var ErrOverflow = errors.New("amount out of range")

// Line is one category of an order: how many portions at what unit price.
type Line struct {
	Quantity  int
	UnitPrice int64
}

// Amount is Quantity × UnitPrice, or ErrOverflow when the product does not fit.
func (l Line) Amount() (int64, error) {
	return multiply(l.Quantity, l.UnitPrice)
}

func multiply(quantity int, price int64) (int64, error) {
	q := int64(quantity)
	if q != 0 && price > math.MaxInt64/q {
		return 0, ErrOverflow
	}
	return q * price, nil
}

func add(total, amount int64) (int64, error) {
	if amount > math.MaxInt64-total {
		return 0, ErrOverflow
	}
	return total + amount, nil
}

// OrderTotal computes Σ quantity × unit price over all lines.
// Negative quantities or prices are rejected.
func OrderTotal(lines []Line) (int64, error) {
	var total int64
	for i, l := range lines {
		if l.Quantity < 0 {
			return 0, fmt.Errorf("line %d: quantity cannot be negative", i)
		}
		if l.UnitPrice < 0 {
			return 0, fmt.Errorf("line %d: unit price cannot be negative", i)
		}
		amount, err := l.Amount()
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", i, err)
		}
		if total, err = add(total, amount); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// PriceOrder snapshots an order against the menu: each chosen dish is looked up by name
// within its category (a dish missing from the menu is priced 0) and the total is computed.
func PriceOrder(order *models.PendingOrder, menu *models.Menu) (*models.HistoryRecord, error) {
	record := &models.HistoryRecord{
		UserID: order.UserID,
		Date:   order.Date,
	}

	for _, c := range models.Categories {
		sel := order.Selections[c]
		line := models.HistoryLine{
			Dish:     sel.Dish,
			Quantity: sel.Quantity,
		}
		if sel.Chosen() {
			line.UnitPrice = menu.Price(c, sel.Dish)
		}
		amount, err := multiply(line.Quantity, line.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("%s on %s: %w", c, order.Date.Format(models.DateLayout), err)
		}
		if record.Total, err = add(record.Total, amount); err != nil {
			return nil, fmt.Errorf("total on %s: %w", order.Date.Format(models.DateLayout), err)
		}
		record.Lines[c] = line
	}

	return record, nil
}
