package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmynk/smakolyk/internal/aggregator"
	"github.com/mmynk/smakolyk/internal/app"
	"github.com/mmynk/smakolyk/internal/config"
	"github.com/mmynk/smakolyk/internal/jobs"
	"github.com/mmynk/smakolyk/internal/menuimport"
	"github.com/mmynk/smakolyk/internal/metrics"
	"github.com/mmynk/smakolyk/internal/notify"
	"github.com/mmynk/smakolyk/internal/schedule"
	"github.com/mmynk/smakolyk/pkg/logging"
)

func main() {
	runOnce := flag.Bool("aggregate", false, "drain, export and email the pending orders once, then exit")
	flag.Parse()

	logger := logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg.DB, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	m := metrics.New()
	notifier := notify.NewNotifier(app.NewSender(cfg.Mail, logger), cfg.Mail, logger)
	agg := aggregator.New(store, notifier, cfg.Export.Path, m, logger)
	importer := menuimport.NewImporter(store, cfg.Menu, m, logger)

	if *runOnce {
		report, err := agg.Run(ctx)
		if err != nil {
			logger.Error("Weekly aggregation failed", "error", err)
			os.Exit(1)
		}
		logger.Info("Weekly aggregation finished", "orders", report.Orders, "export", report.ExportPath)
		return
	}

	scheduler, err := jobs.NewScheduler(cfg.Queue.RedisAddr, schedule.FromConfig(cfg.Ordering), logger)
	if err != nil {
		logger.Error("Failed to create scheduler", "error", err)
		os.Exit(1)
	}
	if err := scheduler.Start(); err != nil {
		logger.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer scheduler.Shutdown()

	srv := jobs.NewServer(cfg.Queue.RedisAddr, cfg.Queue.Concurrency, logger)
	if err := srv.Start(jobs.NewHandlers(importer, agg, logger).Mux()); err != nil {
		logger.Error("Failed to start worker", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker started", "redis", cfg.Queue.RedisAddr, "concurrency", cfg.Queue.Concurrency)

	<-ctx.Done()
	logger.Info("Worker stopping")
	srv.Shutdown()
}
