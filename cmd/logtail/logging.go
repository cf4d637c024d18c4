package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/waldb/logtail/config"
)

// zerologHandler adapts a zerolog.Logger into an slog.Handler so the CLI
// can give the user zerolog's console/JSON output while every library
// package (tailscan, recovery, config) stays slog-only, as the teacher's
// packages do with *slog.Logger fields.
type zerologHandler struct {
	logger zerolog.Logger
	attrs  []slog.Attr
	group  string
}

// newZerologHandler builds the CLI's root handler from cfg's log
// level/format, mirroring the teacher's pkg/log.NewZerologAdapter
// console writer for "console" and a bare zerolog.New for "json".
func newZerologHandler(cfg config.Config) slog.Handler {
	var logger zerolog.Logger
	switch cfg.LogFormat {
	case "json":
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	default:
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}
	logger = logger.Level(levelToZerolog(cfg.Level()))
	return &zerologHandler{logger: logger}
}

func levelToZerolog(l slog.Level) zerolog.Level {
	switch {
	case l < slog.LevelInfo:
		return zerolog.DebugLevel
	case l < slog.LevelWarn:
		return zerolog.InfoLevel
	case l < slog.LevelError:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

func (h *zerologHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.GetLevel() <= levelToZerolog(level)
}

func (h *zerologHandler) Handle(_ context.Context, r slog.Record) error {
	var event *zerolog.Event
	switch {
	case r.Level >= slog.LevelError:
		event = h.logger.Error()
	case r.Level >= slog.LevelWarn:
		event = h.logger.Warn()
	case r.Level >= slog.LevelInfo:
		event = h.logger.Info()
	default:
		event = h.logger.Debug()
	}
	if h.group != "" {
		event = event.Str("group", h.group)
	}
	for _, a := range h.attrs {
		event = addAttr(event, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		event = addAttr(event, a)
		return true
	})
	event.Msg(r.Message)
	return nil
}

func addAttr(event *zerolog.Event, a slog.Attr) *zerolog.Event {
	switch a.Value.Kind() {
	case slog.KindString:
		return event.Str(a.Key, a.Value.String())
	case slog.KindInt64:
		return event.Int64(a.Key, a.Value.Int64())
	case slog.KindUint64:
		return event.Uint64(a.Key, a.Value.Uint64())
	case slog.KindFloat64:
		return event.Float64(a.Key, a.Value.Float64())
	case slog.KindBool:
		return event.Bool(a.Key, a.Value.Bool())
	case slog.KindDuration:
		return event.Dur(a.Key, a.Value.Duration())
	default:
		return event.Interface(a.Key, a.Value.Any())
	}
}

func (h *zerologHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

func (h *zerologHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.group = name
	return &next
}

var _ slog.Handler = (*zerologHandler)(nil)
