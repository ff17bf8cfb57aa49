// Package app assembles the components shared by the server and the worker.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/smakolyk/internal/config"
	"github.com/mmynk/smakolyk/internal/notify"
	"github.com/mmynk/smakolyk/internal/storage"
	"github.com/mmynk/smakolyk/internal/storage/postgres"
	"github.com/mmynk/smakolyk/internal/storage/sqlite"
)

// OpenStore opens the configured backend and applies its migrations.
func OpenStore(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (storage.Store, error) {
	switch cfg.Driver {
	case "postgres":
		store, err := postgres.New(ctx, cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		logger.Info("Storage initialized", "driver", cfg.Driver, "host", cfg.Host, "database", cfg.Name)
		return store, nil
	case "sqlite":
		store, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		logger.Info("Storage initialized", "driver", cfg.Driver, "database", cfg.Path)
		return store, nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
}

// NewSender returns an SMTP sender, or an in-memory outbox when no SMTP account is configured.
func NewSender(cfg config.MailConfig, logger *slog.Logger) notify.Sender {
	if cfg.Username == "" {
		logger.Warn("EMAIL_HOST_USER is not set, emails are kept in memory")
		return &notify.Outbox{}
	}
	return notify.NewSMTPSender(cfg)
}
