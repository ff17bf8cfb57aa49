package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/smakolyk/internal/models"
)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// GetMenu returns the current menu in upload order.
func (s *SQLiteStore) GetMenu(ctx context.Context) (*models.Menu, error) {
	return loadMenu(ctx, s.db)
}

func loadMenu(ctx context.Context, q queryer) (*models.Menu, error) {
	rows, err := q.QueryContext(ctx,
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

// ReplaceMenu deletes every menu item and inserts items, all in one transaction.
func (s *SQLiteStore) ReplaceMenu(ctx context.Context, items []models.MenuItem) error {
	now := s.now()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM menu_items"); err != nil {
			return fmt.Errorf("failed to clear menu: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO menu_items (id, category, name, price, position, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare menu insert: %w", err)
		}
		defer stmt.Close()

		for i := range items {
			item := &items[i]
			item.Touch(now)
			if _, err := stmt.ExecContext(ctx,
				item.ID, item.Category.String(), item.Name, item.Price, i, item.CreatedAt, item.UpdatedAt,
			); err != nil {
				return fmt.Errorf("failed to insert menu item %q: %w", item.Name, err)
			}
		}
		return nil
	})
}
