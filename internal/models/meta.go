package models

import (
	"time"

	"github.com/google/uuid"
)

// EntityMeta holds the identity and timestamps shared by every persisted record.
type EntityMeta struct {
	// ID is the unique identifier (UUID format).
	ID string

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last modification.
	UpdatedAt int64
}

// Touch fills in a missing ID and creation time and bumps UpdatedAt.
func (m *EntityMeta) Touch(now time.Time) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt == 0 {
		m.CreatedAt = now.Unix()
	}
	m.UpdatedAt = now.Unix()
}
