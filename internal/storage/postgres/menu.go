package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmynk/smakolyk/internal/models"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PostgresStore) GetMenu(ctx context.Context) (*models.Menu, error) {
	return loadMenu(ctx, s.pool)
}

func loadMenu(ctx context.Context, q querier) (*models.Menu, error) {
	rows, err := q.Query(ctx,
		"SELECT id, category, name, price, created_at, updated_at FROM menu_items ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu: %w", err)
	}
	defer rows.Close()

	menu := &models.Menu{}
	for rows.Next() {
		var item models.MenuItem
		var category string
		if err := rows.Scan(&item.ID, &category, &item.Name, &item.Price, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		c, ok := models.ParseCategory(category)
		if !ok {
			return nil, fmt.Errorf("unknown menu category %q", category)
		}
		item.Category = c
		menu.Items = append(menu.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate menu items: %w", err)
	}
	return menu, nil
}

// ReplaceMenu swaps the whole menu in one transaction using a batch of inserts.
func (s *PostgresStore) ReplaceMenu(ctx context.Context, items []models.MenuItem) error {
	now := s.now()

	return s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM menu_items"); err != nil {
			return fmt.Errorf("failed to clear menu: %w", err)
		}

		batch := &pgx.Batch{}
		for i := range items {
			item := &items[i]
			item.Touch(now)
			batch.Queue(`
				INSERT INTO menu_items (id, category, name, price, position, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				item.ID, item.Category.String(), item.Name, item.Price, i, item.CreatedAt, item.UpdatedAt,
			)
		}

		results := tx.SendBatch(ctx, batch)
		for i := range items {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to insert menu item %q: %w", items[i].Name, err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to insert menu: %w", err)
		}
		return nil
	})
}
