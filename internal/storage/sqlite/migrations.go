package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mmynk/smakolyk/internal/models"
)

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: users must be created before every table referencing it.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    is_active INTEGER NOT NULL DEFAULT 1,
    is_admin INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS profiles (
    user_id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    slug TEXT NOT NULL UNIQUE,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    birthdate TEXT,
    phone TEXT NOT NULL UNIQUE,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS menu_items (
    id TEXT PRIMARY KEY,
    category TEXT NOT NULL,
    name TEXT NOT NULL,
    price INTEGER NOT NULL CHECK (price >= 0),
    position INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    UNIQUE (category, name)
);

CREATE TABLE IF NOT EXISTS pending_orders (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    order_date TEXT NOT NULL,
    %s,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    UNIQUE (user_id, order_date),
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS history (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    order_date TEXT NOT NULL,
    total_amount INTEGER NOT NULL CHECK (total_amount >= 0),
    %s,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_menu_items_category ON menu_items(category, position);
CREATE INDEX IF NOT EXISTS idx_pending_orders_user_date ON pending_orders(user_id, order_date);
CREATE INDEX IF NOT EXISTS idx_history_user_date ON history(user_id, order_date);
`

// categoryColumns renders the per-category column definitions.
func categoryColumns(withPrice bool) string {
	var defs []string
	for _, c := range models.Categories {
		defs = append(defs,
			fmt.Sprintf("%s TEXT NOT NULL", c),
			fmt.Sprintf("%s INTEGER NOT NULL DEFAULT 0 CHECK (%s >= 0)", c.QuantityField(), c.QuantityField()),
		)
		if withPrice {
			defs = append(defs, fmt.Sprintf("%s INTEGER NOT NULL DEFAULT 0 CHECK (%s >= 0)", c.PriceColumn(), c.PriceColumn()))
		}
	}
	return strings.Join(defs, ",\n    ")
}

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(fmt.Sprintf(schema, categoryColumns(false), categoryColumns(true)))
	return err
}
