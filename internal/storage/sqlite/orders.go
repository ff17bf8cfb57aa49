package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/smakolyk/internal/calculator"
	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/internal/storage"
)

var (
	orderColumns   = storage.JoinColumns(storage.SelectionColumns())
	historyColumns = storage.JoinColumns(storage.HistoryColumns())
)

// HasOrderBetween reports whether the user has a pending order dated within [from, to].
func (s *SQLiteStore) HasOrderBetween(ctx context.Context, userID string, from, to time.Time) (bool, error) {
	return hasOrderBetween(ctx, s.db, userID, from, to)
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func hasOrderBetween(ctx context.Context, q rowQueryer, userID string, from, to time.Time) (bool, error) {
	var exists int
	err := q.QueryRowContext(ctx,
		"SELECT 1 FROM pending_orders WHERE user_id = ? AND order_date BETWEEN ? AND ? LIMIT 1",
		userID, formatDate(from), formatDate(to),
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check existing orders: %w", err)
	}
	return true, nil
}

// SubmitOrders persists orders and their history records in one transaction.
func (s *SQLiteStore) SubmitOrders(ctx context.Context, week storage.Week, orders []*models.PendingOrder) ([]*models.HistoryRecord, error) {
	if len(orders) == 0 {
		return nil, nil
	}
	userID := orders[0].UserID
	now := s.now()

	var records []*models.HistoryRecord
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		exists, err := hasOrderBetween(ctx, tx, userID, week.From, week.To)
		if err != nil {
			return err
		}
		if exists {
			return storage.ErrOrderExists
		}

		menu, err := loadMenu(ctx, tx)
		if err != nil {
			return err
		}

		for _, order := range orders {
			if order.UserID != userID {
				return fmt.Errorf("orders of several users in one submission")
			}
			order.Touch(now)

			args := append([]any{order.ID, order.UserID, formatDate(order.Date)}, storage.SelectionArgs(order)...)
			args = append(args, order.CreatedAt, order.UpdatedAt)
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO pending_orders (id, user_id, order_date, "+orderColumns+", created_at, updated_at) "+
					"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
				args...,
			); err != nil {
				return fmt.Errorf("failed to insert order: %w", err)
			}

			record, err := calculator.PriceOrder(order, menu)
			if err != nil {
				return fmt.Errorf("failed to price order: %w", err)
			}
			record.Touch(now)

			args = append([]any{record.ID, record.UserID, formatDate(record.Date), record.Total}, storage.HistoryArgs(record)...)
			args = append(args, record.CreatedAt, record.UpdatedAt)
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO history (id, user_id, order_date, total_amount, "+historyColumns+", created_at, updated_at) "+
					"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
				args...,
			); err != nil {
				return fmt.Errorf("failed to insert history: %w", err)
			}

			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// ListPendingOrders returns the user's pending orders within [from, to].
func (s *SQLiteStore) ListPendingOrders(ctx context.Context, userID string, from, to time.Time) ([]*models.PendingOrder, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, order_date, "+orderColumns+", created_at, updated_at FROM pending_orders "+
			"WHERE user_id = ? AND order_date BETWEEN ? AND ? ORDER BY order_date",
		userID, formatDate(from), formatDate(to),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.PendingOrder
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return orders, nil
}

// CountPendingOrders returns the number of pending orders.
func (s *SQLiteStore) CountPendingOrders(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pending_orders").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return n, nil
}

// DrainPendingOrders reads all pending orders with display names, then deletes them.
func (s *SQLiteStore) DrainPendingOrders(ctx context.Context) ([]*models.AggregatedOrder, error) {
	var drained []*models.AggregatedOrder

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			"SELECT o.id, o.user_id, o.order_date, "+prefixed("o.", storage.SelectionColumns())+", o.created_at, o.updated_at, "+
				"p.first_name, p.last_name "+
				"FROM pending_orders o JOIN profiles p ON p.user_id = o.user_id "+
				"ORDER BY o.order_date, p.last_name, p.first_name",
		)
		if err != nil {
			return fmt.Errorf("failed to read orders: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var first, last string
			order, err := scanOrder(rows, &first, &last)
			if err != nil {
				return err
			}
			drained = append(drained, &models.AggregatedOrder{
				PendingOrder: *order,
				Name:         first + " " + last,
			})
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate orders: %w", err)
		}
		rows.Close()

		if _, err := tx.ExecContext(ctx, "DELETE FROM pending_orders"); err != nil {
			return fmt.Errorf("failed to delete orders: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return drained, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner, extra ...any) (*models.PendingOrder, error) {
	order := &models.PendingOrder{}
	var date string

	dest := append([]any{&order.ID, &order.UserID, &date}, storage.SelectionDest(order)...)
	dest = append(dest, &order.CreatedAt, &order.UpdatedAt)
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	order.Date = d
	return order, nil
}

func prefixed(prefix string, cols []string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = prefix + c
	}
	return storage.JoinColumns(out)
}
