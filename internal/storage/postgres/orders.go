package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mmynk/smakolyk/internal/calculator"
	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/internal/storage"
)

var (
	orderColumns   = storage.JoinColumns(storage.SelectionColumns())
	historyColumns = storage.JoinColumns(storage.HistoryColumns())
)

func (s *PostgresStore) HasOrderBetween(ctx context.Context, userID string, from, to time.Time) (bool, error) {
	return hasOrderBetween(ctx, s.pool, userID, from, to)
}

func hasOrderBetween(ctx context.Context, q querier, userID string, from, to time.Time) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM pending_orders WHERE user_id = $1 AND order_date BETWEEN $2 AND $3)",
		userID, from, to,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check existing orders: %w", err)
	}
	return exists, nil
}

// SubmitOrders serializes submissions of one user with a transaction-scoped advisory lock,
// so two concurrent requests cannot both pass the duplicate check.
func (s *PostgresStore) SubmitOrders(ctx context.Context, week storage.Week, orders []*models.PendingOrder) ([]*models.HistoryRecord, error) {
	if len(orders) == 0 {
		return nil, nil
	}
	userID := orders[0].UserID
	now := s.now()

	nOrder := 3 + 2*models.NumCategories + 2
	nHistory := 4 + 3*models.NumCategories + 2
	insertOrder := "INSERT INTO pending_orders (id, user_id, order_date, " + orderColumns + ", created_at, updated_at) " +
		"VALUES (" + placeholders(1, nOrder) + ")"
	insertHistory := "INSERT INTO history (id, user_id, order_date, total_amount, " + historyColumns + ", created_at, updated_at) " +
		"VALUES (" + placeholders(1, nHistory) + ")"

	var records []*models.HistoryRecord
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", userID); err != nil {
			return fmt.Errorf("failed to lock user orders: %w", err)
		}

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
				return errors.New("orders of several users in one submission")
			}
			order.Touch(now)

			args := append([]any{order.ID, order.UserID, order.Date}, storage.SelectionArgs(order)...)
			args = append(args, order.CreatedAt, order.UpdatedAt)
			if _, err := tx.Exec(ctx, insertOrder, args...); err != nil {
				return fmt.Errorf("failed to insert order: %w", err)
			}

			record, err := calculator.PriceOrder(order, menu)
			if err != nil {
				return fmt.Errorf("failed to price order: %w", err)
			}
			record.Touch(now)

			args = append([]any{record.ID, record.UserID, record.Date, record.Total}, storage.HistoryArgs(record)...)
			args = append(args, record.CreatedAt, record.UpdatedAt)
			if _, err := tx.Exec(ctx, insertHistory, args...); err != nil {
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

func (s *PostgresStore) ListPendingOrders(ctx context.Context, userID string, from, to time.Time) ([]*models.PendingOrder, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, user_id, order_date, "+orderColumns+", created_at, updated_at FROM pending_orders "+
			"WHERE user_id = $1 AND order_date BETWEEN $2 AND $3 ORDER BY order_date",
		userID, from, to,
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

func (s *PostgresStore) CountPendingOrders(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM pending_orders").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return n, nil
}

// DrainPendingOrders locks the table so no order lands between the read and the delete.
func (s *PostgresStore) DrainPendingOrders(ctx context.Context) ([]*models.AggregatedOrder, error) {
	cols := make([]string, 0, 2*models.NumCategories)
	for _, c := range storage.SelectionColumns() {
		cols = append(cols, "o."+c)
	}

	var drained []*models.AggregatedOrder
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "LOCK TABLE pending_orders IN EXCLUSIVE MODE"); err != nil {
			return fmt.Errorf("failed to lock orders: %w", err)
		}

		rows, err := tx.Query(ctx,
			"SELECT o.id, o.user_id, o.order_date, "+strings.Join(cols, ", ")+", o.created_at, o.updated_at, "+
				"p.first_name, p.last_name "+
				"FROM pending_orders o JOIN profiles p ON p.user_id = o.user_id "+
				"ORDER BY o.order_date, p.last_name, p.first_name",
		)
		if err != nil {
			return fmt.Errorf("failed to read orders: %w", err)
		}

		for rows.Next() {
			var first, last string
			order, err := scanOrder(rows, &first, &last)
			if err != nil {
				rows.Close()
				return err
			}
			drained = append(drained, &models.AggregatedOrder{PendingOrder: *order, Name: first + " " + last})
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate orders: %w", err)
		}

		if _, err := tx.Exec(ctx, "DELETE FROM pending_orders"); err != nil {
			return fmt.Errorf("failed to delete orders: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return drained, nil
}

func scanOrder(row pgx.Row, extra ...any) (*models.PendingOrder, error) {
	order := &models.PendingOrder{}

	dest := append([]any{&order.ID, &order.UserID, &order.Date}, storage.SelectionDest(order)...)
	dest = append(dest, &order.CreatedAt, &order.UpdatedAt)
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	order.Date = models.Date(order.Date)
	return order, nil
}
