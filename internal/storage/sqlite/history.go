package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/internal/storage"
)

// ListHistory returns history records matching filter, newest date first.
func (s *SQLiteStore) ListHistory(ctx context.Context, filter storage.HistoryFilter) ([]*models.HistoryRecord, error) {
	var where []string
	var args []any
	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if !filter.From.IsZero() {
		where = append(where, "order_date >= ?")
		args = append(args, formatDate(filter.From))
	}
	if !filter.To.IsZero() {
		where = append(where, "order_date <= ?")
		args = append(args, formatDate(filter.To))
	}

	query := "SELECT id, user_id, order_date, total_amount, " + historyColumns + ", created_at, updated_at FROM history"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY order_date DESC, created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var records []*models.HistoryRecord
	for rows.Next() {
		record := &models.HistoryRecord{}
		var date string

		dest := append([]any{&record.ID, &record.UserID, &date, &record.Total}, storage.HistoryDest(record)...)
		dest = append(dest, &record.CreatedAt, &record.UpdatedAt)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		if record.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	return records, nil
}
