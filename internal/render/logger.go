// Package render provides terminal output for the molt CLI: a leveled slog
// handler with color, and a document tree printer.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ErrUnknownFormat is returned when an unrecognized log format is requested.
var ErrUnknownFormat = errors.New("unknown log format")

// Compile-time interface check.
var _ slog.Handler = (*ColorHandler)(nil)

var (
	_errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
	_warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
	_dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // dim
	_keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // cyan
	_nullStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	_titleStyle = lipgloss.NewStyle().Bold(true)
)

// ColorHandler writes one colored line per record: the message styled by
// level, followed by the record's attributes rendered dim as key=value.
// Group names accumulate as a dotted key prefix.
type ColorHandler struct {
	out    io.Writer
	level  slog.Leveler
	mu     *sync.Mutex
	prefix string // accumulated group prefix, e.g. "watch."
	attrs  []slog.Attr
}

// NewColorHandler returns a ColorHandler writing to out at the given level.
func NewColorHandler(out io.Writer, level slog.Leveler) *ColorHandler {
	return &ColorHandler{out: out, level: level, mu: &sync.Mutex{}}
}

// Enabled reports whether records at the given level are handled.
func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes the record as a single styled line.
func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	line := h.styleMessage(r)

	for _, a := range h.attrs {
		line += " " + _dimStyle.Render(h.prefix+a.Key+"="+a.Value.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		line += " " + _dimStyle.Render(h.prefix+a.Key+"="+a.Value.String())
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line+"\n")
	return err
}

func (h *ColorHandler) styleMessage(r slog.Record) string {
	switch {
	case r.Level >= slog.LevelError:
		return _errStyle.Render(r.Message)
	case r.Level >= slog.LevelWarn:
		return _warnStyle.Render(r.Message)
	case r.Level < slog.LevelInfo:
		return _dimStyle.Render(r.Message)
	default:
		return r.Message
	}
}

// WithAttrs returns a handler that appends the given attributes to every record.
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &ColorHandler{out: h.out, level: h.level, mu: h.mu, prefix: h.prefix, attrs: merged}
}

// WithGroup returns a handler that prefixes attribute keys with the group name.
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ColorHandler{out: h.out, level: h.level, mu: h.mu, prefix: h.prefix + name + ".", attrs: h.attrs}
}

// NewLogger creates a logger for the given format and level.
// Supported formats: "pretty", "json", "text".
func NewLogger(out io.Writer, format string, level slog.Level) (*slog.Logger, error) {
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	case "pretty":
		handler = NewColorHandler(out, level)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return slog.New(handler), nil
}
