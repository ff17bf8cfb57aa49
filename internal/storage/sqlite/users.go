package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/smakolyk/internal/models"
)

const selectUser = `
	SELECT u.id, u.email, u.password_hash, u.is_active, u.is_admin, u.created_at, u.updated_at,
	       p.username, p.slug, p.first_name, p.last_name, p.birthdate, p.phone
	FROM users u
	JOIN profiles p ON p.user_id = u.id
`

// CreateUser inserts a new user and its profile into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	user.Touch(s.now())

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, email, password_hash, is_active, is_admin, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			user.ID, user.Email, user.PasswordHash, user.IsActive, user.IsAdmin, user.CreatedAt, user.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		p := user.Profile
		_, err = tx.ExecContext(ctx, `
			INSERT INTO profiles (user_id, username, slug, first_name, last_name, birthdate, phone)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			user.ID, p.Username, p.Slug, p.FirstName, p.LastName, birthdateArg(p), p.Phone,
		)
		if err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		return nil
	})
}

// GetUserByEmail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "u.email = ?", models.NormalizeEmail(email))
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "u.id = ?", id)
}

// GetUserByUsername retrieves a user by profile username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "p.username = ?", username)
}

// GetUserByPhone retrieves a user by profile phone number.
func (s *SQLiteStore) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	return s.getUser(ctx, "p.phone = ?", phone)
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	user := &models.User{}
	var birthdate sql.NullString

	err := s.db.QueryRowContext(ctx, selectUser+" WHERE "+where, arg).Scan(
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
	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if birthdate.Valid {
		d, err := parseDate(birthdate.String)
		if err != nil {
			return nil, err
		}
		user.Profile.Birthdate = &d
	}

	return user, nil
}

// UpdateProfile replaces the profile fields of a user.
func (s *SQLiteStore) UpdateProfile(ctx context.Context, userID string, profile models.Profile) error {
	profile.Slug = models.Slugify(profile.Username)

	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE profiles
			SET username = ?, slug = ?, first_name = ?, last_name = ?, birthdate = ?, phone = ?
			WHERE user_id = ?`,
			profile.Username, profile.Slug, profile.FirstName, profile.LastName, birthdateArg(profile), profile.Phone, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("user not found: %s", userID)
		}

		if _, err := tx.ExecContext(ctx, "UPDATE users SET updated_at = ? WHERE id = ?", s.now().Unix(), userID); err != nil {
			return fmt.Errorf("failed to touch user: %w", err)
		}
		return nil
	})
}

// SetAdmin grants or revokes the admin flag.
func (s *SQLiteStore) SetAdmin(ctx context.Context, userID string, admin bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET is_admin = ?, updated_at = ? WHERE id = ?",
		admin, s.now().Unix(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set admin flag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}

func birthdateArg(p models.Profile) any {
	if p.Birthdate == nil {
		return nil
	}
	return formatDate(*p.Birthdate)
}
