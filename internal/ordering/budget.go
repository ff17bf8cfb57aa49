package ordering

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/smakolyk/internal/calculator"
	"github.com/mmynk/smakolyk/internal/metrics"
	"github.com/mmynk/smakolyk/internal/models"
)

// OversumNotifier is told about every day order over the ceiling.
type OversumNotifier interface {
	Oversum(ctx context.Context, user *models.User, date time.Time, oversum int64) error
}

// BudgetGuard compares each persisted day order against the ceiling.
type BudgetGuard struct {
	ceiling  int64
	notifier OversumNotifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewBudgetGuard creates a guard for the given ceiling.
func NewBudgetGuard(ceiling int64, notifier OversumNotifier, m *metrics.Metrics, logger *slog.Logger) *BudgetGuard {
	return &BudgetGuard{ceiling: ceiling, notifier: notifier, metrics: m, logger: logger}
}

// Ceiling is the per-order budget.
func (g *BudgetGuard) Ceiling() int64 {
	return g.ceiling
}

// Check evaluates one history record. When the total is strictly above the ceiling the
// user and the accountant are notified; the oversum is returned either way (0 within budget).
func (g *BudgetGuard) Check(ctx context.Context, user *models.User, record *models.HistoryRecord) (int64, error) {
	oversum := calculator.Oversum(record.Total, g.ceiling)
	if oversum == 0 {
		return 0, nil
	}

	g.logger.Info("Order over budget",
		"user_id", user.ID,
		"date", record.Date.Format(models.DateLayout),
		"total", record.Total,
		"oversum", oversum,
	)
	if err := g.notifier.Oversum(ctx, user, record.Date, oversum); err != nil {
		g.metrics.Oversum(metrics.ResultError)
		return oversum, err
	}
	g.metrics.Oversum(metrics.ResultOK)
	return oversum, nil
}

// Remaining is the running-total view: what is left of the ceiling and whether it is exceeded.
func (g *BudgetGuard) Remaining(total int64) calculator.Budget {
	return calculator.CheckBudget(total, g.ceiling)
}
