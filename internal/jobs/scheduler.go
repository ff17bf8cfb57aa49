package jobs

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mmynk/smakolyk/internal/schedule"
)

// NewScheduler registers the weekly aggregation at the cutoff of window.
func NewScheduler(redisAddr string, window schedule.Window, logger *slog.Logger) (*asynq.Scheduler, error) {
	loc := window.Location
	if loc == nil {
		loc = time.UTC
	}
	s := asynq.NewScheduler(asynq.RedisClientOpt{Addr: redisAddr}, &asynq.SchedulerOpts{
		Location: loc,
		Logger:   &slogAdapter{logger: logger},
	})

	spec := window.CronSpec()
	id, err := s.Register(spec, NewWeeklyOrdersTask(), asynq.MaxRetry(0))
	if err != nil {
		return nil, fmt.Errorf("register weekly orders: %w", err)
	}
	logger.Info("Weekly orders scheduled", "cron", spec, "location", loc.String(), "entry_id", id)
	return s, nil
}

var _ asynq.Logger = (*slogAdapter)(nil)

// slogAdapter satisfies asynq.Logger.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Debug(args ...interface{}) { a.logger.Debug(fmt.Sprint(args...)) }
func (a *slogAdapter) Info(args ...interface{})  { a.logger.Info(fmt.Sprint(args...)) }
func (a *slogAdapter) Warn(args ...interface{})  { a.logger.Warn(fmt.Sprint(args...)) }
func (a *slogAdapter) Error(args ...interface{}) { a.logger.Error(fmt.Sprint(args...)) }
func (a *slogAdapter) Fatal(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
