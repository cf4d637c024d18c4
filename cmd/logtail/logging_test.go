package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/waldb/logtail/config"
)

func TestZerologHandler_RespectsLevel(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "warn"
	h := newZerologHandler(cfg)

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestZerologHandler_HandleWritesMessage(t *testing.T) {
	cfg := config.Default()
	cfg.LogFormat = "json"
	h := newZerologHandler(cfg).(*zerologHandler)

	var buf bytes.Buffer
	h.logger = h.logger.Output(&buf)

	logger := slog.New(h).With("segment", uint64(7))
	logger.Info("opened segment")

	assert.Contains(t, buf.String(), "opened segment")
	assert.Contains(t, buf.String(), "\"segment\":7")
}
