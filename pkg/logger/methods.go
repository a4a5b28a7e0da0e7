package logger

import (
	"context"
	"fmt"
	"log/slog"
)

// logPlain renders args the way fmt.Sprint would, for callers porting
// over Printf-style call sites instead of structured key/value pairs.
func (l *Logger) logPlain(level slog.Level, args ...any) {
	l.Logger.Log(defaultContext(), level, fmt.Sprint(args...))
}

// logWith emits msg with its structured keysAndValues under ctx.
func (l *Logger) logWith(ctx context.Context, level slog.Level, msg string, keysAndValues ...any) {
	l.Logger.Log(ctx, level, msg, keysAndValues...)
}

// Info logs a message at info level.
func (l *Logger) Info(args ...any) { l.logPlain(slog.LevelInfo, args...) }

// Infow logs a structured message at info level.
func (l *Logger) Infow(msg string, keysAndValues ...any) {
	l.logWith(defaultContext(), slog.LevelInfo, msg, keysAndValues...)
}

// InfoContext logs a context-aware structured message at info level.
func (l *Logger) InfoContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.logWith(ctx, slog.LevelInfo, msg, keysAndValues...)
}

// Debug logs a message at debug level.
func (l *Logger) Debug(args ...any) { l.logPlain(slog.LevelDebug, args...) }

// Debugw logs a structured message at debug level.
func (l *Logger) Debugw(msg string, keysAndValues ...any) {
	l.logWith(defaultContext(), slog.LevelDebug, msg, keysAndValues...)
}

// DebugContext logs a context-aware structured message at debug level.
func (l *Logger) DebugContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.logWith(ctx, slog.LevelDebug, msg, keysAndValues...)
}

// Warn logs a message at warn level.
func (l *Logger) Warn(args ...any) { l.logPlain(slog.LevelWarn, args...) }

// Warnw logs a structured message at warn level.
func (l *Logger) Warnw(msg string, keysAndValues ...any) {
	l.logWith(defaultContext(), slog.LevelWarn, msg, keysAndValues...)
}

// WarnContext logs a context-aware structured message at warn level.
func (l *Logger) WarnContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.logWith(ctx, slog.LevelWarn, msg, keysAndValues...)
}

// Error logs a message at error level.
func (l *Logger) Error(args ...any) { l.logPlain(slog.LevelError, args...) }

// Errorw logs a structured message at error level.
func (l *Logger) Errorw(msg string, keysAndValues ...any) {
	l.logWith(defaultContext(), slog.LevelError, msg, keysAndValues...)
}

// ErrorContext logs a context-aware structured message at error level.
func (l *Logger) ErrorContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.logWith(ctx, slog.LevelError, msg, keysAndValues...)
}
