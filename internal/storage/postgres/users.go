package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mmynk/smakolyk/internal/models"
)

const selectUser = `
	SELECT u.id, u.email, u.password_hash, u.is_active, u.is_admin, u.created_at, u.updated_at,
	       p.username, p.slug, p.first_name, p.last_name, p.birthdate, p.phone
	FROM users u
	JOIN profiles p ON p.user_id = u.id
`

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	user.Touch(s.now())

	return s.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, is_active, is_admin, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			user.ID, user.Email, user.PasswordHash, user.IsActive, user.IsAdmin, user.CreatedAt, user.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		p := user.Profile
		_, err = tx.Exec(ctx, `
			INSERT INTO profiles (user_id, username, slug, first_name, last_name, birthdate, phone)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			user.ID, p.Username, p.Slug, p.FirstName, p.LastName, p.Birthdate, p.Phone,
		)
		if err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "u.email = $1", models.NormalizeEmail(email))
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "u.id = $1", id)
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "p.username = $1", username)
}

func (s *PostgresStore) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	return s.getUser(ctx, "p.phone = $1", phone)
}

func (s *PostgresStore) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	user := &models.User{}
	var birthdate *time.Time

	err := s.pool.QueryRow(ctx, selectUser+" WHERE "+where, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.IsActive,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Profile.Username,
		&user.Profile.Slug,
		&user.Profile.FirstName,
		&user.Profile.LastName,
		&birthdate,
		&user.Profile.Phone,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if birthdate != nil {
		d := models.Date(*birthdate)
		user.Profile.Birthdate = &d
	}
	return user, nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, userID string, profile models.Profile) error {
	profile.Slug = models.Slugify(profile.Username)

	return s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE profiles
			SET username = $1, slug = $2, first_name = $3, last_name = $4, birthdate = $5, phone = $6
			WHERE user_id = $7`,
			profile.Username, profile.Slug, profile.FirstName, profile.LastName, profile.Birthdate, profile.Phone, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("user not found: %s", userID)
		}

		if _, err := tx.Exec(ctx, "UPDATE users SET updated_at = $1 WHERE id = $2", s.now().Unix(), userID); err != nil {
			return fmt.Errorf("failed to touch user: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) SetAdmin(ctx context.Context, userID string, admin bool) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE users SET is_admin = $1, updated_at = $2 WHERE id = $3",
		admin, s.now().Unix(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set admin flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}
