// Package logging adapts log/slog to the runtime.Logger interface used across
// the module, so the same code logs inside a Nakama host and standalone.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/heroiclabs/nakama-common/runtime"
)

type slogLogger struct {
	l      *slog.Logger
	fields map[string]interface{}
}

// NewSlogLogger wraps l. A nil l uses slog.Default().
func NewSlogLogger(l *slog.Logger) runtime.Logger {
	if l == nil {
		l = slog.Default()
	}
	return &slogLogger{l: l, fields: map[string]interface{}{}}
}

func (s *slogLogger) log(level slog.Level, format string, v ...interface{}) {
	ctx := context.Background()
	if !s.l.Enabled(ctx, level) {
		return
	}
	s.l.Log(ctx, level, fmt.Sprintf(format, v...))
}

func (s *slogLogger) Debug(format string, v ...interface{}) { s.log(slog.LevelDebug, format, v...) }
func (s *slogLogger) Info(format string, v ...interface{})  { s.log(slog.LevelInfo, format, v...) }
func (s *slogLogger) Warn(format string, v ...interface{})  { s.log(slog.LevelWarn, format, v...) }
func (s *slogLogger) Error(format string, v ...interface{}) { s.log(slog.LevelError, format, v...) }

func (s *slogLogger) WithField(key string, v interface{}) runtime.Logger {
	return s.WithFields(map[string]interface{}{key: v})
}

func (s *slogLogger) WithFields(fields map[string]interface{}) runtime.Logger {
	merged := maps.Clone(s.fields)
	args := make([]any, 0, 2*len(fields))
	for k, v := range fields {
		merged[k] = v
		args = append(args, k, v)
	}
	return &slogLogger{l: s.l.With(args...), fields: merged}
}

func (s *slogLogger) Fields() map[string]interface{} {
	return maps.Clone(s.fields)
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

type nopLogger struct{}

// Nop returns a logger that discards everything.
func Nop() runtime.Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...interface{})                     {}
func (nopLogger) Info(string, ...interface{})                      {}
func (nopLogger) Warn(string, ...interface{})                      {}
func (nopLogger) Error(string, ...interface{})                     {}
func (nopLogger) WithField(string, interface{}) runtime.Logger     { return nopLogger{} }
func (nopLogger) WithFields(map[string]interface{}) runtime.Logger { return nopLogger{} }
func (nopLogger) Fields() map[string]interface{}                   { return nil }
