package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/mmynk/smakolyk/internal/aggregator"
	"github.com/mmynk/smakolyk/internal/models"
)

// MenuImporter writes a validated menu.
type MenuImporter interface {
	Import(ctx context.Context, items []models.MenuItem) error
}

// WeeklyAggregator runs the weekly aggregation.
type WeeklyAggregator interface {
	Run(ctx context.Context) (*aggregator.Report, error)
}

// Handlers processes the application's tasks.
type Handlers struct {
	importer   MenuImporter
	aggregator WeeklyAggregator
	logger     *slog.Logger
}

// NewHandlers creates task handlers.
func NewHandlers(importer MenuImporter, agg WeeklyAggregator, logger *slog.Logger) *Handlers {
	return &Handlers{importer: importer, aggregator: agg, logger: logger}
}

// Mux routes task types to their handlers.
func (h *Handlers) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeMenuImport, h.HandleMenuImport)
	mux.HandleFunc(TypeWeeklyOrders, h.HandleWeeklyOrders)
	return mux
}

func (h *Handlers) HandleMenuImport(ctx context.Context, t *asynq.Task) error {
	var p MenuImportPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode menu import: %v: %w", err, asynq.SkipRetry)
	}
	if err := h.importer.Import(ctx, p.Items); err != nil {
		h.logger.Error("Menu import failed", "error", err)
		return err
	}
	h.logger.Info("Menu uploaded", "count", len(p.Items))
	return nil
}

func (h *Handlers) HandleWeeklyOrders(ctx context.Context, _ *asynq.Task) error {
	report, err := h.aggregator.Run(ctx)
	if err != nil {
		return err
	}
	h.logger.Info("Orders sent", "count", report.Orders)
	return nil
}

// NewServer creates the asynq worker server with an slog-backed logger.
func NewServer(redisAddr string, concurrency int, logger *slog.Logger) *asynq.Server {
	return asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency: concurrency,
		Logger:      &slogAdapter{logger: logger},
	})
}
