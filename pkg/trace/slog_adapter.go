package trace

import (
	"context"
	"log/slog"

	"github.com/Mkozlowsk/bare-metal-iot-weather-node/pkg/status"
)

// SlogAdapter writes clock events to an slog.Logger.
// Useful for development when you want to watch the clock tree live.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. Failures log at Warn level,
// successes at Debug.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("op", event.Op.String()),
		slog.String("target", event.Target),
		slog.String("status", status.Code(event.Status).String()),
	}

	if event.Session != "" {
		attrs = append(attrs, slog.String("session", event.Session))
	}
	if event.FreqHz != 0 {
		attrs = append(attrs, slog.Uint64("freq_hz", uint64(event.FreqHz)))
	}
	if event.Usage != nil {
		attrs = append(attrs, slog.Uint64("usage", uint64(*event.Usage)))
	}
	if event.Detail != "" {
		attrs = append(attrs, slog.String("detail", event.Detail))
	}

	level := slog.LevelDebug
	if status.Code(event.Status).IsError() {
		level = slog.LevelWarn
	}

	a.logger.LogAttrs(context.Background(), level, "clock", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
