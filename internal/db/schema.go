package db

import (
	"context"
	"fmt"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS customer (
	id    BIGSERIAL PRIMARY KEY,
	name  TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	phone TEXT NOT NULL
)`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS customer (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	name  TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	phone TEXT NOT NULL
)`

// EnsureSchema creates the customer table when it does not exist yet
func (db *DB) EnsureSchema(ctx context.Context) error {
	schema := postgresSchema
	if db.driver == DriverSQLite {
		schema = sqliteSchema
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create customer table: %w", err)
	}

	return nil
}
