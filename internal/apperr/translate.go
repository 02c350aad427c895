package apperr

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres error codes the original backend distinguished.
const (
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
)

// FromStore maps a raw persistence error to the taxonomy. A foreign key
// violation on the session reference means the session is gone; a not-null
// violation is a validation bug caught late. Everything else is a StoreError.
func FromStore(op string, sessionId uuid.UUID, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return &InvalidSessionError{SessionId: sessionId}
		case pgNotNullViolation:
			return &ValidationError{Field: pgErr.ColumnName}
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &InvalidSessionError{SessionId: sessionId}
	}

	return &StoreError{Op: op, Err: err}
}
