// Package logging integrates log/slog with context-scoped attributes.
package logging

import (
	"context"
	"fmt"
	"log/slog"
)

type contextKey string

const attrsKey contextKey = "loggingAttrs"

// ContextHandler is a slog.Handler middleware that appends attributes stored
// in the context with [WithAttrs] to every record it handles.
type ContextHandler struct {
	inner slog.Handler
}

// NewContextHandler wraps h so that records pick up context-scoped attributes.
func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{inner: h}
}

// Enabled delegates to the wrapped handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle appends the attributes carried by ctx before delegating.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(attrsKey).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	if err := h.inner.Handle(ctx, r); err != nil {
		return fmt.Errorf("handle log record: %w", err)
	}
	return nil
}

// WithAttrs returns a ContextHandler wrapping the result of calling WithAttrs
// on the inner handler.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs)}
}

// WithGroup returns a ContextHandler wrapping the result of calling WithGroup
// on the inner handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name)}
}

// WithAttrs stores attrs in the context so that [ContextHandler] attaches them
// to every log record emitted with that context.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	if existing, ok := ctx.Value(attrsKey).([]slog.Attr); ok {
		merged := make([]slog.Attr, 0, len(existing)+len(attrs))
		merged = append(merged, existing...)
		merged = append(merged, attrs...)
		return context.WithValue(ctx, attrsKey, merged)
	}
	return context.WithValue(ctx, attrsKey, attrs)
}
