package notify

import (
	"context"
	"log/slog"
	"sync"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a short, user-facing message; the UI decides how to show it.
type Notice struct {
	Level   Level
	Code    string
	Message string
}

type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

type Func func(ctx context.Context, n Notice)

func (f Func) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// Discard drops every notice.
var Discard Notifier = Func(func(context.Context, Notice) {})

type Logger struct {
	log *slog.Logger
}

func NewLogger(log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{log: log}
}

func (l *Logger) Notify(ctx context.Context, n Notice) {
	level := slog.LevelInfo
	switch n.Level {
	case LevelWarning:
		level = slog.LevelWarn
	case LevelError:
		level = slog.LevelError
	}
	l.log.Log(ctx, level, n.Message, slog.String("code", n.Code), slog.String("notice", string(n.Level)))
}

// Collector keeps notices in memory. The CLI drains it after each command.
type Collector struct {
	mu      sync.Mutex
	notices []Notice
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Notify(_ context.Context, n Notice) {
	c.mu.Lock()
	c.notices = append(c.notices, n)
	c.mu.Unlock()
}

func (c *Collector) Drain() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notices
	c.notices = nil
	return out
}

func (c *Collector) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notice, len(c.notices))
	copy(out, c.notices)
	return out
}

// Multi fans a notice out to several notifiers in order.
func Multi(ns ...Notifier) Notifier {
	return Func(func(ctx context.Context, n Notice) {
		for _, x := range ns {
			if x != nil {
				x.Notify(ctx, n)
			}
		}
	})
}
