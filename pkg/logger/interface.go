package logger

import "context"

// ILogger is the logging surface ringway's pipeline stages and CLI
// code depend on. *Logger, which Channel(name) returns, satisfies it;
// the package-level global behind GetLogger is a plain *slog.Logger
// and does not.
type ILogger interface {
	Info(args ...any)
	Infow(msg string, keysAndValues ...any)
	InfoContext(ctx context.Context, msg string, keysAndValues ...any)

	Debug(args ...any)
	Debugw(msg string, keysAndValues ...any)
	DebugContext(ctx context.Context, msg string, keysAndValues ...any)

	Warn(args ...any)
	Warnw(msg string, keysAndValues ...any)
	WarnContext(ctx context.Context, msg string, keysAndValues ...any)

	Error(args ...any)
	Errorw(msg string, keysAndValues ...any)
	ErrorContext(ctx context.Context, msg string, keysAndValues ...any)
}
