// Package log provides structured logging (slog) for the native library.
// The host process owns stdout, so records go to stderr, one per line.
package log

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Handler implements slog.Handler, writing each record as one line of text
// or, with WithJSON, one LogMessageWire JSON object.
type Handler struct {
	opts   handlerConfig
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	groups []string
}

// HandlerOption configures the Handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Leveler
	addSource bool
	json      bool
	prefix    string
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level:  slog.LevelInfo,
		prefix: "dsd-ghidra",
	}
}

// WithLevel sets the minimum log level to report.
func WithLevel(level slog.Leveler) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithJSON switches the output to JSON lines.
func WithJSON(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.json = enabled
	}
}

// WithPrefix sets the tag that starts every text line.
func WithPrefix(prefix string) HandlerOption {
	return func(c *handlerConfig) {
		c.prefix = prefix
	}
}

// NewHandler creates a new Handler writing to w. A nil w means os.Stderr.
func NewHandler(w io.Writer, opts ...HandlerOption) *Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if w == nil {
		w = os.Stderr
	}
	return &Handler{opts: cfg, mu: &sync.Mutex{}, w: w}
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

// WithAttrs returns a new Handler that includes the given attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := h.clone()
	for _, a := range attrs {
		h2.attrs = append(h2.attrs, h2.qualify(a))
	}
	return h2
}

// WithGroup returns a new Handler with the given group name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := h.clone()
	h2.groups = append(h2.groups, name)
	return h2
}

func (h *Handler) clone() *Handler {
	h2 := *h
	h2.attrs = append([]slog.Attr(nil), h.attrs...)
	h2.groups = append([]string(nil), h.groups...)
	return &h2
}

// qualify prefixes the attribute key with the open groups.
func (h *Handler) qualify(a slog.Attr) slog.Attr {
	if len(h.groups) > 0 {
		a.Key = strings.Join(h.groups, ".") + "." + a.Key
	}
	return a
}

// Handle formats the record and writes it in a single call.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	msg := LogMessageWire{
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}
	for _, a := range h.attrs {
		msg.Attrs = appendAttrWire(msg.Attrs, "", a)
	}
	record.Attrs(func(a slog.Attr) bool {
		msg.Attrs = appendAttrWire(msg.Attrs, "", h.qualify(a))
		return true
	})
	if h.opts.addSource && record.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{record.PC})
		f, _ := frames.Next()
		msg.Source = fmt.Sprintf("%s:%d", f.File, f.Line)
	}

	var line []byte
	if h.opts.json {
		b, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal log message: %w", err)
		}
		line = append(b, '\n')
	} else {
		line = []byte(h.formatText(msg))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(line)
	return err
}

func (h *Handler) formatText(msg LogMessageWire) string {
	var b strings.Builder
	if h.opts.prefix != "" {
		b.WriteString(h.opts.prefix)
		b.WriteString(": ")
	}
	if !msg.Timestamp.IsZero() {
		b.WriteString(msg.Timestamp.Format(time.RFC3339))
		b.WriteByte(' ')
	}
	b.WriteString(msg.Level)
	b.WriteByte(' ')
	b.WriteString(msg.Message)
	for _, a := range msg.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteByte('=')
		if strings.ContainsAny(a.Value, " \t\n\"=") || a.Value == "" {
			b.WriteString(fmt.Sprintf("%q", a.Value))
		} else {
			b.WriteString(a.Value)
		}
	}
	if msg.Source != "" {
		b.WriteString(" source=")
		b.WriteString(msg.Source)
	}
	b.WriteByte('\n')
	return b.String()
}
