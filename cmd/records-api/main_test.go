package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupLogger(t *testing.T) {
	ctx := context.Background()

	t.Run("Dev", func(t *testing.T) {
		log := setupLogger("dev")
		assert.IsType(t, &slog.TextHandler{}, log.Handler())
		assert.True(t, log.Enabled(ctx, slog.LevelDebug))
	})

	t.Run("Staging", func(t *testing.T) {
		log := setupLogger("staging")
		assert.IsType(t, &slog.JSONHandler{}, log.Handler())
		assert.True(t, log.Enabled(ctx, slog.LevelDebug))
	})

	t.Run("Prod", func(t *testing.T) {
		log := setupLogger("prod")
		assert.IsType(t, &slog.JSONHandler{}, log.Handler())
		assert.False(t, log.Enabled(ctx, slog.LevelDebug))
		assert.True(t, log.Enabled(ctx, slog.LevelInfo))
	})
}
