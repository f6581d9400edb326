package db

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Raymond9734/customer-registry/internal/models"
)

// WithTx runs fn inside a single unit of work. The transaction commits only
// when fn returns nil; every other exit path rolls back. Failures to open or
// commit the transaction surface as models.ErrUnavailable.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return models.ErrUnavailableWithCause("failed to begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback() // Rollback is safe to call even after Commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return models.ErrUnavailableWithCause("failed to commit transaction", err)
	}

	return nil
}

var placeholder = regexp.MustCompile(`\$\d+`)

// Rebind rewrites $n placeholders into the bind syntax of the driver.
// Queries passed to Rebind must use each placeholder once, in order.
func (db *DB) Rebind(query string) string {
	if db.driver != DriverSQLite {
		return query
	}
	return placeholder.ReplaceAllString(query, "?")
}

// IsUniqueViolation reports whether err is a unique constraint failure
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return true
		}
		return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE")
	}

	return false
}
