package bus

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
)

// levelTrace sits below slog.LevelDebug; watermill traces every message.
const levelTrace = slog.LevelDebug - 4

// SlogAdapter routes watermill logs to slog.
type SlogAdapter struct {
	l *slog.Logger
}

func NewSlogAdapter(l *slog.Logger) *SlogAdapter {
	return &SlogAdapter{l: l.With("component", "watermill")}
}

func (a *SlogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.l.Error(msg, append(attrs(fields), "err", err)...)
}

func (a *SlogAdapter) Info(msg string, fields watermill.LogFields) {
	a.l.Info(msg, attrs(fields)...)
}

func (a *SlogAdapter) Debug(msg string, fields watermill.LogFields) {
	a.l.Debug(msg, attrs(fields)...)
}

func (a *SlogAdapter) Trace(msg string, fields watermill.LogFields) {
	a.l.Log(context.Background(), levelTrace, msg, attrs(fields)...)
}

func (a *SlogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &SlogAdapter{l: a.l.With(attrs(fields)...)}
}

func attrs(fields watermill.LogFields) []any {
	out := make([]any, 0, 2*len(fields))
	for k, v := range fields {
		out = append(out, k, v)
	}
	return out
}
