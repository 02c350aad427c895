package apperr

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestFromStore(t *testing.T) {
	sessionId := uuid.New()

	t.Run("nil error passes through", func(t *testing.T) {
		assert.NoError(t, FromStore("insert", sessionId, nil))
	})

	t.Run("foreign key violation means the session is gone", func(t *testing.T) {
		err := FromStore("insert", sessionId, &pgconn.PgError{Code: "23503"})

		var invalid *InvalidSessionError
		assert.True(t, errors.As(err, &invalid))
		assert.Equal(t, sessionId, invalid.SessionId)
	})

	t.Run("not null violation carries the column", func(t *testing.T) {
		err := FromStore("insert", sessionId, &pgconn.PgError{Code: "23502", ColumnName: "message"})

		var validation *ValidationError
		assert.True(t, errors.As(err, &validation))
		assert.Equal(t, "message", validation.Field)
	})

	t.Run("record not found maps to invalid session", func(t *testing.T) {
		err := FromStore("find", sessionId, gorm.ErrRecordNotFound)
		assert.True(t, IsInvalidSession(err))
	})

	t.Run("anything else is a store error", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := FromStore("insert", sessionId, cause)

		var storeErr *StoreError
		assert.True(t, errors.As(err, &storeErr))
		assert.Equal(t, "insert", storeErr.Op)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("wrapped pg errors are still recognized", func(t *testing.T) {
		wrapped := &StoreError{Op: "insert", Err: &pgconn.PgError{Code: "23503"}}
		err := FromStore("insert", sessionId, wrapped)
		assert.True(t, IsInvalidSession(err))
	})
}

func TestKindHelpers(t *testing.T) {
	assert.True(t, IsValidation(&ValidationError{Field: "message"}))
	assert.True(t, IsModelConfig(&ModelConfigError{Err: errors.New("bad key")}))
	assert.True(t, IsStore(&StoreError{Op: "x", Err: errors.New("y")}))
	assert.False(t, IsValidation(errors.New("other")))
	assert.False(t, IsInvalidSession(ErrSendInFlight))
}
