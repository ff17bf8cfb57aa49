package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/internal/storage"
)

func (s *PostgresStore) ListHistory(ctx context.Context, filter storage.HistoryFilter) ([]*models.HistoryRecord, error) {
	var where []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.UserID != "" {
		add("user_id = $%d", filter.UserID)
	}
	if !filter.From.IsZero() {
		add("order_date >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("order_date <= $%d", filter.To)
	}

	query := "SELECT id, user_id, order_date, total_amount, " + historyColumns + ", created_at, updated_at FROM history"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY order_date DESC, created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var records []*models.HistoryRecord
	for rows.Next() {
		record := &models.HistoryRecord{}
		dest := append([]any{&record.ID, &record.UserID, &record.Date, &record.Total}, storage.HistoryDest(record)...)
		dest = append(dest, &record.CreatedAt, &record.UpdatedAt)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		record.Date = models.Date(record.Date)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return records, nil
}
