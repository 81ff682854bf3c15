package errorutil

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorTranslatesStorageErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"no rows", pgx.ErrNoRows, CodeNotFound, http.StatusNotFound},
		{"wrapped no rows", fmt.Errorf("get user: %w", pgx.ErrNoRows), CodeNotFound, http.StatusNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "uq_users_email"}, CodeConflict, http.StatusConflict},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, CodeNotFound, http.StatusNotFound},
		{"check violation", &pgconn.PgError{Code: "23514"}, CodeValidation, http.StatusBadRequest},
		{"other pg error", &pgconn.PgError{Code: "57P01"}, CodeStorage, http.StatusInternalServerError},
		{"context deadline", context.DeadlineExceeded, CodeStorage, http.StatusInternalServerError},
		{"fiber bad request", fiber.NewError(http.StatusBadRequest, "invalid payload"), CodeValidation, http.StatusBadRequest},
		{"fiber not found", fiber.ErrNotFound, CodeNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			require.NotNil(t, de)
			assert.Equal(t, tt.code, de.Code)
			assert.Equal(t, tt.status, de.HTTPStatus)
		})
	}
}

func TestUniqueViolationKeepsConstraint(t *testing.T) {
	de := ToDomainError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_departments_name"})
	assert.Equal(t, "uq_departments_name", de.Details["constraint"])
	assert.True(t, IsConflict(de))
}

func TestDomainErrorsPassThrough(t *testing.T) {
	original := NewNotFound("user", map[string]any{"id": int64(4)})
	wrapped := fmt.Errorf("lookup: %w", original)

	assert.Same(t, original, ToDomainError(wrapped))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsConflict(wrapped))
	assert.Equal(t, "user not found", original.Error())
}

func TestStorageErrorHidesCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	de := ToDomainError(cause)
	assert.Equal(t, "storage error", de.Message)
	assert.ErrorIs(t, de, cause)
	assert.True(t, IsStorage(de))
}

func TestMapErrorNil(t *testing.T) {
	assert.NoError(t, MapError(nil))
	assert.Nil(t, ToDomainError(nil))
}
