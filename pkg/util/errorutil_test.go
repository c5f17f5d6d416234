package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})

	t.Run("wrapped domain error is unwrapped", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", NewForbidden("access denied"))
		de := ToDomainError(err)
		require.NotNil(t, de)
		assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
		assert.Equal(t, "FORBIDDEN", de.Code)
	})

	t.Run("fiber error keeps its status", func(t *testing.T) {
		de := ToDomainError(fiber.ErrNotFound)
		assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
		assert.Equal(t, "NOT_FOUND", de.Code)
		assert.Equal(t, "Not Found", de.Message)
	})

	t.Run("unknown error hides its message", func(t *testing.T) {
		de := ToDomainError(errors.New("dial tcp: connection refused"))
		assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
		assert.Equal(t, "internal server error", de.Message)
		assert.ErrorContains(t, de, "connection refused")
	})
}

func TestDomainErrorBody(t *testing.T) {
	err := NewValidationError("validation failed", map[string]any{
		"validateErrors": []string{"userName 'alice' is exist"},
		"error":          "ignored",
	})
	de := ToDomainError(err)

	body := de.Body()
	assert.Equal(t, "validation failed", body["error"])
	assert.Equal(t, []string{"userName 'alice' is exist"}, body["validateErrors"])
	assert.Equal(t, fiber.Map{"error": "access denied"}, ToDomainError(NewForbidden("access denied")).Body())
}
