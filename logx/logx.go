// Package logx sets up the process-wide slog logger: a verbosity level
// chosen from command-line flags or configuration, and a compact
// handler that colors the level when writing to a terminal.
package logx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/muesli/termenv"
)

// UserLevel is the lowest level SetDefaultLogger lets through.
var UserLevel = slog.LevelWarn

// LevelFromFlags maps tkdemo's -vv, -v and -q flags to a level, in the
// manner of cogentcore's grog package. The most verbose flag set wins;
// with none set the result is warn.
func LevelFromFlags(vv, v, q bool) slog.Level {
	if vv {
		return slog.LevelDebug
	}
	if v {
		return slog.LevelInfo
	}
	if q {
		return slog.LevelError
	}
	return slog.LevelWarn
}

// ParseLevel parses "debug", "info", "warn" or "error". An empty
// string is [slog.LevelWarn].
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelWarn, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelWarn, fmt.Errorf("logx: %w", err)
	}
	return l, nil
}

// SetDefaultLogger installs a Handler writing to stderr at UserLevel
// as the slog default.
func SetDefaultLogger() {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, UserLevel)))
}

// Handler writes one line per record: LEVEL message key=value ...
type Handler struct {
	mu    *sync.Mutex
	out   *termenv.Output
	w     io.Writer
	level slog.Leveler
	attrs []slog.Attr
	group string
}

// NewHandler returns a Handler writing to w. Level colors are used only
// when w is a terminal that supports them.
func NewHandler(w io.Writer, level slog.Leveler) *Handler {
	return &Handler{
		mu:    &sync.Mutex{},
		out:   termenv.NewOutput(w),
		w:     w,
		level: level,
	}
}

func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(h.levelString(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		writeAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.group, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *Handler) levelString(l slog.Level) string {
	s := fmt.Sprintf("%-5s", l.String())
	var c termenv.Color
	switch {
	case l >= slog.LevelError:
		c = h.out.Color("1")
	case l >= slog.LevelWarn:
		c = h.out.Color("3")
	case l >= slog.LevelInfo:
		c = h.out.Color("4")
	default:
		c = h.out.Color("8")
	}
	return h.out.String(s).Foreground(c).Bold().String()
}

func writeAttr(b *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(b, key, ga)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte('=')
	v := a.Value.String()
	if strings.ContainsAny(v, " \t\"=") {
		v = fmt.Sprintf("%q", v)
	}
	b.WriteString(v)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	if h.group != "" {
		name = h.group + "." + name
	}
	h2.group = name
	return &h2
}
