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
)

type Config struct {
	Level  string
	Format string // "text", "json", "console"
	Output io.Writer
}

var (
	once  sync.Once
	lg    *slog.Logger
	level slog.LevelVar
)

func Init(cfg Config) {
	once.Do(func() {
		if cfg.Output == nil {
			cfg.Output = os.Stdout
		}
		level.Set(parseLevel(cfg.Level))
		lg = slog.New(newHandler(cfg.Format, cfg.Output, &level))
		slog.SetDefault(lg)
	})
}

func newHandler(format string, w io.Writer, lv slog.Leveler) slog.Handler {
	switch format {
	case "json":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv})
	case "text":
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv})
	default:
		return &consoleHandler{w: w, level: lv}
	}
}

func L() *slog.Logger {
	if lg == nil {
		Init(Config{Level: "debug", Format: "console"})
	}
	return lg
}

// With returns a child of the default logger tagged with component.
func With(component string) *slog.Logger {
	return L().With("component", component)
}

// SetLevel changes the level of the initialised logger in place, so a
// reloaded config takes effect without rebuilding handlers.
func SetLevel(levelStr string) {
	level.Set(parseLevel(levelStr))
}

func Level() slog.Level {
	return level.Level()
}

func parseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// consoleHandler outputs human-friendly log lines:
//
//	12:00:00 INFO  Rig params applied  tick=120
type consoleHandler struct {
	w     io.Writer
	level slog.Leveler
	attrs []slog.Attr
	group string
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time.Format(time.TimeOnly) // "15:04:05"
	lvl := levelTag(r.Level)

	line := fmt.Sprintf("%s %s %s", ts, lvl, r.Message)

	// pre-attached attrs (from WithAttrs)
	for _, a := range h.attrs {
		line += formatAttr(h.group, a)
	}
	// per-record attrs
	r.Attrs(func(a slog.Attr) bool {
		line += formatAttr(h.group, a)
		return true
	})

	line += "\n"
	_, err := fmt.Fprint(h.w, line)
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &consoleHandler{
		w:     h.w,
		level: h.level,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
		group: h.group,
	}
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	prefix := name
	if h.group != "" {
		prefix = h.group + "." + name
	}
	return &consoleHandler{
		w:     h.w,
		level: h.level,
		attrs: append([]slog.Attr{}, h.attrs...),
		group: prefix,
	}
}

func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN "
	case l >= slog.LevelInfo:
		return "INFO "
	default:
		return "DEBUG"
	}
}

func formatAttr(group string, a slog.Attr) string {
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	return fmt.Sprintf("  %s=%v", key, a.Value)
}
