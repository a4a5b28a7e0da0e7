package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/wire"
)

var (
	mu     sync.RWMutex
	global *slog.Logger
	once   sync.Once
)

// ProviderSet is the Wire provider set for a single, unchanneled
// logger. cmd/ringwayd itself wires logger.ManagerProviderSet instead,
// since it wants one named channel per pipeline stage; ProviderSet
// stays available for a simpler caller that only ever needs one.
var ProviderSet = wire.NewSet(ProvideLogger)

// Conf configures where one logger writes (stdout, or a rotating file
// via lumberjack) and at what level. KeepHours is plumbed straight
// into lumberjack.Logger.MaxAge, which lumberjack interprets as days
// despite the name here; ringwayd's defaults keep the two numerically
// close enough (7) that this has never mattered in practice.
type Conf struct {
	Output     string
	Path       string
	Filename   string
	Level      string
	KeepHours  int
	RotateSize int
	RotateNum  int
}

// Logger wraps slog.Logger so dependency-injected call sites get a
// concrete type rather than the stdlib's interface-shaped *slog.Logger.
type Logger struct {
	*slog.Logger
}

// ProvideLogger adapts New for Wire.
func ProvideLogger(conf *Conf) (*Logger, error) {
	l, err := New(conf)
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: l}, nil
}

// SetDefaults returns ringwayd's default logger configuration: plain
// text to stdout at info level.
func SetDefaults() *Conf {
	return &Conf{
		Output:     "stdout",
		Path:       "./logs",
		Filename:   "ringwayd.log",
		Level:      "INFO",
		KeepHours:  7,
		RotateSize: 100,
		RotateNum:  10,
	}
}

// Validate fills in zero-valued fields with their defaults and
// rejects file output with no destination path.
func (c *Conf) Validate() error {
	if c == nil {
		return fmt.Errorf("logger config is nil")
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	if c.Level == "" {
		c.Level = "INFO"
	}
	if c.Output == "file" {
		if c.Path == "" {
			return fmt.Errorf("log path is required when output is 'file'")
		}
		if c.Filename == "" {
			c.Filename = "ringwayd.log"
		}
		if c.RotateSize <= 0 {
			c.RotateSize = 100
		}
		if c.RotateNum <= 0 {
			c.RotateNum = 10
		}
		if c.KeepHours <= 0 {
			c.KeepHours = 7
		}
	}
	return nil
}

// New installs conf as the process's default logger channel, with no
// additional named channels, and returns it. It is sugar for InitMulti
// with only a Default config; call InitMulti directly to also stand
// up per-stage channels reachable through Channel.
func New(conf *Conf) (*slog.Logger, error) {
	if conf == nil {
		conf = SetDefaults()
	}
	if err := InitMulti(&MultiConf{Default: conf}); err != nil {
		return nil, err
	}
	return GetLogger(), nil
}

// NewWithCategory builds a standalone logger tagged with category. It
// is not installed as the process-level default and is not reachable
// through Channel; it's for a caller that wants its own one-off
// logger rather than a registered channel.
func NewWithCategory(conf *Conf, category string) (*slog.Logger, error) {
	return buildLogger(conf, category)
}

// buildLogger turns conf into a slog.Logger whose text handler tags
// every record with category (when non-empty) and runs through
// logTrace for otel trace/span correlation.
func buildLogger(conf *Conf, category string) (*slog.Logger, error) {
	if conf == nil {
		conf = SetDefaults()
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger config: %w", err)
	}

	output, err := buildOutputWriter(conf)
	if err != nil {
		return nil, err
	}

	handlerOptions := &slog.HandlerOptions{
		Level: parseLogLevel(conf.Level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(slog.TimeKey, t.Format("2006-01-02 15:04:05"))
				}
			}
			return a
		},
	}

	base := slog.NewTextHandler(output, handlerOptions)
	l := slog.New(newLogTrace(base))
	if strings.TrimSpace(category) != "" {
		l = l.With("category", strings.TrimSpace(category))
	}
	return l, nil
}

// Init installs conf as the process-level default logger.
func Init(conf *Conf) error {
	_, err := New(conf)
	return err
}

// MustInit panics if Init fails; for use during process startup only.
func MustInit(conf *Conf) {
	if err := Init(conf); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

// GetLogger returns the process-level default logger, lazily building
// one from SetDefaults the first time it's reached with nothing
// having called New/InitMulti yet.
func GetLogger() *slog.Logger {
	ensureLogger()
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// GetLevel reports the lowest level the default logger currently emits.
func GetLevel() slog.Level {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		return slog.LevelInfo
	}
	ctx := context.Background()
	switch {
	case global.Enabled(ctx, slog.LevelDebug):
		return slog.LevelDebug
	case global.Enabled(ctx, slog.LevelInfo):
		return slog.LevelInfo
	case global.Enabled(ctx, slog.LevelWarn):
		return slog.LevelWarn
	case global.Enabled(ctx, slog.LevelError):
		return slog.LevelError
	default:
		return slog.LevelError + 4
	}
}

// Sync is a no-op kept for API parity with loggers that buffer writes.
func Sync() error {
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildOutputWriter(conf *Conf) (io.Writer, error) {
	switch conf.Output {
	case "stdout":
		return os.Stdout, nil
	case "file":
		return getFileLogWriter(conf)
	default:
		return os.Stdout, nil
	}
}

// ensureLogger lazily stands up a default-config logger and manager
// the first time GetLogger or Channel is reached without an explicit
// New/InitMulti call having run first.
func ensureLogger() {
	mu.RLock()
	initialized := global != nil
	mu.RUnlock()
	if initialized {
		return
	}

	once.Do(func() {
		if err := InitMulti(&MultiConf{Default: SetDefaults()}); err != nil {
			fallback := slog.New(newLogTrace(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
			mu.Lock()
			global = fallback
			mu.Unlock()
			setGlobalManager(&manager{
				defaultLogger: &Logger{Logger: fallback.With("category", "default")},
				channels:      map[string]*Logger{},
			})
		}
	})
}
