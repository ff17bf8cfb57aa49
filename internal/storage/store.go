// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/smakolyk/internal/models"
)

// ErrOrderExists is returned when a user already has a pending order in the submitted week.
var ErrOrderExists = errors.New("an order already exists for this week")

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	UserStore
	MenuStore
	OrderStore
	HistoryStore

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists accounts and profiles.
type UserStore interface {
	// CreateUser inserts the user and its profile in one transaction.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail, GetUserByID, GetUserByUsername and GetUserByPhone
	// return nil and no error when the user does not exist.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)

	// UpdateProfile replaces the profile of an existing user.
	UpdateProfile(ctx context.Context, userID string, profile models.Profile) error

	// SetAdmin grants or revokes menu administration.
	SetAdmin(ctx context.Context, userID string, admin bool) error
}

// MenuStore holds the current menu.
type MenuStore interface {
	// GetMenu returns every menu item in upload order.
	GetMenu(ctx context.Context) (*models.Menu, error)

	// ReplaceMenu deletes the whole menu and inserts items in one transaction.
	ReplaceMenu(ctx context.Context, items []models.MenuItem) error
}

// Week bounds a submission: both dates are inclusive.
type Week struct {
	From time.Time
	To   time.Time
}

// OrderStore holds pending orders.
type OrderStore interface {
	// HasOrderBetween reports whether the user has a pending order dated within [from, to].
	HasOrderBetween(ctx context.Context, userID string, from, to time.Time) (bool, error)

	// SubmitOrders persists one user's orders for a week together with their history records
	// in a single transaction. Each order is priced against the menu read inside that
	// transaction. Returns ErrOrderExists if the user already has an order within week.
	SubmitOrders(ctx context.Context, week Week, orders []*models.PendingOrder) ([]*models.HistoryRecord, error)

	// ListPendingOrders returns a user's pending orders dated within [from, to], oldest first.
	ListPendingOrders(ctx context.Context, userID string, from, to time.Time) ([]*models.PendingOrder, error)

	// CountPendingOrders returns the number of pending orders of all users.
	CountPendingOrders(ctx context.Context) (int, error)

	// DrainPendingOrders reads every pending order with its owner's display name and
	// deletes them all, atomically.
	DrainPendingOrders(ctx context.Context) ([]*models.AggregatedOrder, error)
}

// HistoryFilter narrows a history query. Zero values mean "any".
type HistoryFilter struct {
	UserID string
	From   time.Time
	To     time.Time
}

// HistoryStore reads the append-only history ledger.
type HistoryStore interface {
	// ListHistory returns matching records, newest date first.
	ListHistory(ctx context.Context, filter HistoryFilter) ([]*models.HistoryRecord, error)
}
