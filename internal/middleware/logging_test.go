package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"

	"blogicum/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_AddsContextValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "production", "debug")

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, uint(9))
	logger.With(slog.String("component", "test")).DebugContext(ctx, "hello")

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"user_id":9`)
	assert.Contains(t, out, `"component":"test"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, fiber.StatusForbidden, errorStatus(fiber.ErrForbidden))
	assert.Equal(t, fiber.StatusNotFound, errorStatus(models.NewNotFoundError("post", 1)))
	assert.Equal(t, fiber.StatusInternalServerError, errorStatus(errors.New("boom")))
}

// Not parallel: swaps the package logger.
func TestStructuredLogger_LogsErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger
	Logger = NewLogger(&buf, "production", "info")
	t.Cleanup(func() { Logger = prev })

	app := fiber.New()
	app.Use(StructuredLogger())
	app.Get("/missing", func(c *fiber.Ctx) error { return models.NewNotFoundError("post", 7) })
	app.Get("/csrf", func(c *fiber.Ctx) error { return fiber.ErrForbidden })
	app.Get("/broken", func(c *fiber.Ctx) error { return errors.New("boom") })

	for _, path := range []string{"/missing", "/csrf", "/broken"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	out := buf.String()
	assert.Contains(t, out, `"msg":"request rejected","status":404`)
	assert.Contains(t, out, `"msg":"request rejected","status":403`)
	assert.Contains(t, out, `"msg":"request failed","status":500`)
	assert.NotContains(t, out, `"status":200`)
}
