package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrOverlap is returned when a requested stay collides with an
	// existing booking for the same property.
	ErrOverlap = errors.New("booking dates overlap an existing reservation")

	// ErrLockHeld is returned when a job lock row is held, unexpired,
	// by another instance.
	ErrLockHeld = errors.New("job lock held by another instance")
)

// isUniqueViolation matches duplicate-key failures across the two
// supported stores. Postgres reports SQLSTATE 23505; the sqlite
// driver only gives us the message text.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key")
}
