// Package aggregator runs the weekly hand-off to the kitchen: it drains every pending
// order, writes them to a spreadsheet and emails it.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/smakolyk/internal/export"
	"github.com/mmynk/smakolyk/internal/metrics"
	"github.com/mmynk/smakolyk/internal/models"
)

// Store drains pending orders.
type Store interface {
	DrainPendingOrders(ctx context.Context) ([]*models.AggregatedOrder, error)
}

// Mailer sends the export.
type Mailer interface {
	WeeklyOrders(ctx context.Context, exportPath string) error
}

// Report summarizes one run.
type Report struct {
	Orders     int
	ExportPath string
	Duration   time.Duration
}

// Aggregator is the weekly aggregation job.
type Aggregator struct {
	store      Store
	mailer     Mailer
	exportPath string
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// New creates an aggregator writing its spreadsheet to exportPath.
func New(store Store, mailer Mailer, exportPath string, m *metrics.Metrics, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		store:      store,
		mailer:     mailer,
		exportPath: exportPath,
		metrics:    m,
		logger:     logger,
	}
}

// Run drains the pending orders in one transaction, then exports and emails them.
// The drain is not undone if the export or the email fails; history is unaffected either way.
func (a *Aggregator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	orders, err := a.store.DrainPendingOrders(ctx)
	if err != nil {
		a.metrics.Aggregation(metrics.ResultError, 0)
		return nil, fmt.Errorf("failed to drain orders: %w", err)
	}
	report := &Report{Orders: len(orders), ExportPath: a.exportPath}

	if err := export.WriteOrders(a.exportPath, orders); err != nil {
		a.metrics.Aggregation(metrics.ResultError, len(orders))
		a.logger.Error("Export failed after drain", "count", len(orders), "error", err)
		return report, fmt.Errorf("failed to export orders: %w", err)
	}

	if err := a.mailer.WeeklyOrders(ctx, a.exportPath); err != nil {
		a.metrics.Aggregation(metrics.ResultError, len(orders))
		a.logger.Error("Weekly orders email failed", "count", len(orders), "path", a.exportPath, "error", err)
		return report, err
	}

	report.Duration = time.Since(start)
	a.metrics.Aggregation(metrics.ResultOK, len(orders))
	a.logger.Info("Orders sent", "count", len(orders), "path", a.exportPath, "duration_ms", report.Duration.Milliseconds())
	return report, nil
}
