// Package ordering accepts weekly orders: it gates submissions by the weekly window and
// existing orders, validates the day forms against the current menu, persists the orders
// and their history, and runs the budget guard on every persisted day.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/smakolyk/internal/calculator"
	"github.com/mmynk/smakolyk/internal/metrics"
	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/internal/schedule"
	"github.com/mmynk/smakolyk/internal/storage"
	"github.com/mmynk/smakolyk/internal/validation"
)

var (
	ErrPastCutoff     = errors.New("orders for next week are closed")
	ErrDuplicateOrder = errors.New("an order for next week already exists")
	ErrNotification   = errors.New("order saved but oversum notification failed")
)

// Status is what a user may do with the order form right now.
type Status int

const (
	Submittable Status = iota
	PastCutoff
	DuplicateExists
)

func (s Status) String() string {
	switch s {
	case PastCutoff:
		return "past_cutoff"
	case DuplicateExists:
		return "duplicate_exists"
	}
	return "submittable"
}

// Store is the storage the intake needs.
type Store interface {
	GetMenu(ctx context.Context) (*models.Menu, error)
	HasOrderBetween(ctx context.Context, userID string, from, to time.Time) (bool, error)
	SubmitOrders(ctx context.Context, week storage.Week, orders []*models.PendingOrder) ([]*models.HistoryRecord, error)
	ListPendingOrders(ctx context.Context, userID string, from, to time.Time) ([]*models.PendingOrder, error)
}

// Intake is the order intake of the upcoming week.
type Intake struct {
	store   Store
	window  schedule.Window
	guard   *BudgetGuard
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewIntake creates an intake.
func NewIntake(store Store, window schedule.Window, guard *BudgetGuard, m *metrics.Metrics, logger *slog.Logger) *Intake {
	return &Intake{
		store:   store,
		window:  window,
		guard:   guard,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock replaces the clock used to find the upcoming week and the cutoff.
func (i *Intake) WithClock(now func() time.Time) *Intake {
	i.now = now
	return i
}

// Week returns the working days of the upcoming week.
func (i *Intake) Week() []time.Time {
	return i.window.UpcomingWeek(i.now())
}

// Guard returns the budget guard used by the intake.
func (i *Intake) Guard() *BudgetGuard {
	return i.guard
}

// Status checks the cutoff first, then whether the user already ordered for the upcoming week.
func (i *Intake) Status(ctx context.Context, userID string) (Status, error) {
	now := i.now()
	if i.window.PastCutoff(now) {
		return PastCutoff, nil
	}
	from, to := schedule.WeekRange(i.window.UpcomingWeek(now))
	exists, err := i.store.HasOrderBetween(ctx, userID, from, to)
	if err != nil {
		return 0, err
	}
	if exists {
		return DuplicateExists, nil
	}
	return Submittable, nil
}

// Options builds the order form choices from the current menu.
func (i *Intake) Options(ctx context.Context) (FormOptions, error) {
	menu, err := i.store.GetMenu(ctx)
	if err != nil {
		return FormOptions{}, err
	}
	return NewFormOptions(menu), nil
}

// Submission is the outcome of a successful Submit.
type Submission struct {
	Records []*models.HistoryRecord
	// Oversums maps a day to the amount by which it exceeded the ceiling.
	Oversums map[time.Time]int64
}

// Total is the sum of every day total.
func (s *Submission) Total() int64 {
	var t int64
	for _, r := range s.Records {
		t += r.Total
	}
	return t
}

// Submit validates days (one entry per working day of the upcoming week, in order),
// persists the orders with their history and runs the budget guard on each day.
//
// It returns ErrPastCutoff or ErrDuplicateOrder when the submission is not allowed,
// validation.Errors when a form is invalid or a day total does not fit in an int64, and
// an error wrapping ErrNotification when the orders were saved but a notification could
// not be sent.
func (i *Intake) Submit(ctx context.Context, user *models.User, days []DayInput) (*Submission, error) {
	now := i.now()
	if i.window.PastCutoff(now) {
		i.metrics.OrderSubmitted(metrics.ResultRejected)
		return nil, ErrPastCutoff
	}

	dates := i.window.UpcomingWeek(now)
	if len(days) != len(dates) {
		return nil, validation.New(validation.Required, "days", validation.Params{"expected": len(dates)})
	}

	opts, err := i.Options(ctx)
	if err != nil {
		return nil, err
	}

	var errs validation.Errors
	orders := make([]*models.PendingOrder, len(days))
	for d, in := range days {
		sels, dayErrs := Normalize(d, in, opts)
		errs = append(errs, dayErrs...)
		orders[d] = &models.PendingOrder{UserID: user.ID, Date: dates[d], Selections: sels}
	}
	if err := errs.Err(); err != nil {
		i.metrics.OrderSubmitted(metrics.ResultRejected)
		return nil, err
	}

	from, to := schedule.WeekRange(dates)
	records, err := i.store.SubmitOrders(ctx, storage.Week{From: from, To: to}, orders)
	if errors.Is(err, storage.ErrOrderExists) {
		i.metrics.OrderSubmitted(metrics.ResultRejected)
		return nil, ErrDuplicateOrder
	}
	if errors.Is(err, calculator.ErrOverflow) {
		i.metrics.OrderSubmitted(metrics.ResultRejected)
		return nil, validation.New(validation.TotalTooLarge, "days", nil)
	}
	if err != nil {
		i.metrics.OrderSubmitted(metrics.ResultError)
		return nil, fmt.Errorf("failed to submit orders: %w", err)
	}
	i.metrics.OrderSubmitted(metrics.ResultOK)

	sub := &Submission{Records: records, Oversums: make(map[time.Time]int64)}
	var notifyErrs []error
	for _, r := range records {
		oversum, err := i.guard.Check(ctx, user, r)
		if oversum > 0 {
			sub.Oversums[r.Date] = oversum
		}
		if err != nil {
			notifyErrs = append(notifyErrs, err)
		}
	}

	i.logger.Info("Orders submitted",
		"user_id", user.ID,
		"week", from.Format(models.DateLayout),
		"count", len(records),
		"total", sub.Total(),
		"oversum_days", len(sub.Oversums),
	)

	if len(notifyErrs) > 0 {
		return sub, fmt.Errorf("%w: %w", ErrNotification, errors.Join(notifyErrs...))
	}
	return sub, nil
}

// PendingWeek returns the user's pending orders of the upcoming week.
func (i *Intake) PendingWeek(ctx context.Context, userID string) ([]*models.PendingOrder, error) {
	from, to := schedule.WeekRange(i.window.UpcomingWeek(i.now()))
	return i.store.ListPendingOrders(ctx, userID, from, to)
}

// Quote prices a single order form against the current menu without persisting it.
// It backs the running total shown while the user fills in the form. Out-of-range
// quantities and totals are returned as validation failures.
func (i *Intake) Quote(ctx context.Context, lines []QuoteLine) (calculator.Budget, error) {
	menu, err := i.store.GetMenu(ctx)
	if err != nil {
		return calculator.Budget{}, err
	}

	calc := make([]calculator.Line, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < 0 || l.Quantity > models.MaxQuantity {
			return calculator.Budget{}, validation.New(validation.InvalidQuantity, l.Category.QuantityField(), validation.Params{
				"value": l.Quantity,
				"max":   models.MaxQuantity,
			})
		}
		sel := models.NewSelection(l.Dish, l.Quantity)
		var price int64
		if sel.Chosen() {
			price = menu.Price(l.Category, sel.Dish)
		}
		calc = append(calc, calculator.Line{Quantity: sel.Quantity, UnitPrice: price})
	}

	total, err := calculator.OrderTotal(calc)
	if errors.Is(err, calculator.ErrOverflow) {
		return calculator.Budget{}, validation.New(validation.TotalTooLarge, "selections", nil)
	}
	if err != nil {
		return calculator.Budget{}, err
	}
	return i.guard.Remaining(total), nil
}

// QuoteLine is one category of a running-total request.
type QuoteLine struct {
	Category models.Category
	Dish     string
	Quantity int
}
