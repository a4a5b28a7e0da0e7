package logger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/wire"
)

var (
	managerMu     sync.RWMutex
	globalManager IManager
)

// ManagerProviderSet is the Wire provider set for the per-stage
// logger manager; cmd/ringwayd's injector wires this rather than
// logger.ProviderSet so it gets one channel per pipeline stage.
var ManagerProviderSet = wire.NewSet(ProvideManager)

// IManager looks up a named logger channel, falling back to the
// default logger (tagged with the requested name instead) when the
// name isn't registered. ringwayd registers one channel per pipeline
// stage - "validate" and "record" - so each stage's log lines, and
// any fault it forwards to its ExceptionHandler, carry their own
// category without the stages sharing a single handler.
type IManager interface {
	Get(name string) *Logger
	Names() []string
}

// MultiConf configures a default logger plus any number of named
// channel loggers; a channel with a zero-valued field inherits it
// from Default.
type MultiConf struct {
	Default  *Conf
	Channels map[string]*Conf
}

// SetDefaults fills in a nil Default/Channels so Validate can operate
// on a MultiConf built with only some fields set.
func (c *MultiConf) SetDefaults() {
	if c.Default == nil {
		c.Default = SetDefaults()
	}
	if c.Channels == nil {
		c.Channels = map[string]*Conf{}
	}
}

// Validate normalizes Default and every channel conf, rejecting an
// empty channel name.
func (c *MultiConf) Validate() error {
	if c == nil {
		return fmt.Errorf("multi logger config is nil")
	}
	c.SetDefaults()
	if err := c.Default.Validate(); err != nil {
		return fmt.Errorf("invalid default logger config: %w", err)
	}
	for name, conf := range c.Channels {
		n := strings.TrimSpace(name)
		if n == "" {
			return fmt.Errorf("logger channel name cannot be empty")
		}
		if conf == nil {
			conf = cloneConf(c.Default)
			c.Channels[name] = conf
		}
		inheritConf(conf, c.Default)
		if err := conf.Validate(); err != nil {
			return fmt.Errorf("invalid logger config for channel %q: %w", name, err)
		}
	}
	return nil
}

type manager struct {
	defaultLogger *Logger
	channels      map[string]*Logger
}

// NewManager builds the default logger plus one logger per channel in
// conf, each tagged with its channel name via a "category" attribute.
func NewManager(conf *MultiConf) (IManager, error) {
	if conf == nil {
		conf = &MultiConf{}
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	defaultSlog, err := buildLogger(conf.Default, "")
	if err != nil {
		return nil, err
	}
	m := &manager{
		defaultLogger: &Logger{Logger: defaultSlog.With("category", "default")},
		channels:      make(map[string]*Logger, len(conf.Channels)),
	}
	for name, channelConf := range conf.Channels {
		channelName := strings.TrimSpace(name)
		channelLogger, channelErr := buildLogger(channelConf, channelName)
		if channelErr != nil {
			return nil, channelErr
		}
		m.channels[channelName] = &Logger{Logger: channelLogger}
	}
	return m, nil
}

// ProvideManager adapts NewManager for Wire.
func ProvideManager(conf *MultiConf) (IManager, error) {
	return NewManager(conf)
}

// InitMulti builds a manager from conf and installs it as the
// process-level manager, also pointing the package-level global
// logger (the one behind GetLogger and the free Info/Error/...
// functions) at the default channel.
func InitMulti(conf *MultiConf) error {
	m, err := NewManager(conf)
	if err != nil {
		return err
	}
	setGlobalManager(m)

	defaultLogger := m.Get("").Logger
	mu.Lock()
	global = defaultLogger
	mu.Unlock()

	defaultLogger.Log(context.Background(), slog.LevelDebug, "logger initialized", "channels", m.Names())
	return nil
}

// MustInitMulti panics if InitMulti fails; for use during process
// startup only.
func MustInitMulti(conf *MultiConf) {
	if err := InitMulti(conf); err != nil {
		panic(fmt.Sprintf("failed to initialize multi logger: %v", err))
	}
}

// Channel returns the named channel logger from the process-level
// manager, e.g. Channel("validate") for the validate pipeline stage.
func Channel(name string) *Logger {
	return GetManager().Get(name)
}

// GetManager returns the process-level logger manager, building a
// default-config one (via ensureLogger) if neither InitMulti nor New
// has run yet.
func GetManager() IManager {
	managerMu.RLock()
	if globalManager != nil {
		defer managerMu.RUnlock()
		return globalManager
	}
	managerMu.RUnlock()

	ensureLogger()

	managerMu.RLock()
	defer managerMu.RUnlock()
	return globalManager
}

// Get returns the logger registered for name, or the default logger
// (tagged with a "channel" attribute for name) when nothing is
// registered under it.
func (m *manager) Get(name string) *Logger {
	if m == nil || m.defaultLogger == nil {
		return &Logger{Logger: GetLogger()}
	}
	channelName := strings.TrimSpace(name)
	if channelName == "" || strings.EqualFold(channelName, "default") {
		return m.defaultLogger
	}
	if l, ok := m.channels[channelName]; ok {
		return l
	}
	return &Logger{Logger: m.defaultLogger.With("channel", channelName)}
}

// Names returns "default" plus every registered channel name, sorted.
func (m *manager) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.channels)+1)
	names = append(names, "default")
	for channelName := range m.channels {
		names = append(names, channelName)
	}
	sort.Strings(names)
	return names
}

// setGlobalManager installs the process-level logger manager.
func setGlobalManager(m IManager) {
	managerMu.Lock()
	defer managerMu.Unlock()
	globalManager = m
}

func cloneConf(src *Conf) *Conf {
	if src == nil {
		return SetDefaults()
	}
	copied := *src
	return &copied
}

func inheritConf(dst, fallback *Conf) {
	if dst == nil || fallback == nil {
		return
	}
	if dst.Output == "" {
		dst.Output = fallback.Output
	}
	if dst.Path == "" {
		dst.Path = fallback.Path
	}
	if dst.Filename == "" {
		dst.Filename = fallback.Filename
	}
	if dst.Level == "" {
		dst.Level = fallback.Level
	}
	if dst.KeepHours <= 0 {
		dst.KeepHours = fallback.KeepHours
	}
	if dst.RotateSize <= 0 {
		dst.RotateSize = fallback.RotateSize
	}
	if dst.RotateNum <= 0 {
		dst.RotateNum = fallback.RotateNum
	}
}
