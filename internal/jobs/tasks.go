// Package jobs defines the background tasks of the application on an asynq (Redis) queue:
// the deferred menu import and the weekly order aggregation.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mmynk/smakolyk/internal/models"
)

const (
	TypeMenuImport   = "menu:import"
	TypeWeeklyOrders = "orders:weekly"
)

// MenuImportPayload carries an already validated menu.
type MenuImportPayload struct {
	Items []models.MenuItem `json:"items"`
}

// NewMenuImportTask creates the deferred import of items.
func NewMenuImportTask(items []models.MenuItem) (*asynq.Task, error) {
	payload, err := json.Marshal(MenuImportPayload{Items: items})
	if err != nil {
		return nil, fmt.Errorf("encode menu import: %w", err)
	}
	return asynq.NewTask(TypeMenuImport, payload), nil
}

// NewWeeklyOrdersTask creates the weekly aggregation task.
func NewWeeklyOrdersTask() *asynq.Task {
	return asynq.NewTask(TypeWeeklyOrders, nil)
}

// Enqueuer schedules deferred menu imports.
type Enqueuer interface {
	EnqueueMenuImport(ctx context.Context, items []models.MenuItem, delay time.Duration) error
}

// Client enqueues tasks on Redis.
type Client struct {
	client *asynq.Client
}

// NewClient connects to the broker at redisAddr.
func NewClient(redisAddr string) *Client {
	return &Client{client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})}
}

// EnqueueMenuImport schedules the import to run after delay. The task is never retried:
// a failed import must not be replayed over a menu uploaded later.
func (c *Client) EnqueueMenuImport(ctx context.Context, items []models.MenuItem, delay time.Duration) error {
	task, err := NewMenuImportTask(items)
	if err != nil {
		return err
	}
	if _, err := c.client.EnqueueContext(ctx, task, asynq.ProcessIn(delay), asynq.MaxRetry(0)); err != nil {
		return fmt.Errorf("enqueue menu import: %w", err)
	}
	return nil
}

// EnqueueWeeklyOrders runs the aggregation as soon as a worker is free.
func (c *Client) EnqueueWeeklyOrders(ctx context.Context) error {
	if _, err := c.client.EnqueueContext(ctx, NewWeeklyOrdersTask(), asynq.MaxRetry(0)); err != nil {
		return fmt.Errorf("enqueue weekly orders: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
