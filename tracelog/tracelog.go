// Package tracelog carries slog attributes in a context, so every record
// logged below a call site is tagged with the run's identifiers.
//
// Logging itself happens via log/slog; this package only augments handlers.
package tracelog

import (
	"context"
	"log/slog"
	"slices"
)

type attrsKey struct{}

// ContextWithAttr returns a context whose log records carry the given
// attributes in addition to any inherited ones.
func ContextWithAttr(ctx context.Context, add ...slog.Attr) context.Context {
	attrs := slices.Clone(Attrs(ctx))
	attrs = append(attrs, add...)
	return context.WithValue(ctx, attrsKey{}, attrs)
}

// Attrs returns the attributes attached to ctx.
func Attrs(ctx context.Context) []slog.Attr {
	attrs, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	return attrs
}

// AttrsWrap returns a handler that adds the context's attributes to every
// record before delegating to h.
func AttrsWrap(h slog.Handler) slog.Handler {
	return &augmentHandler{Handler: h}
}

type augmentHandler struct {
	slog.Handler
}

func (h *augmentHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(Attrs(ctx)...)
	return h.Handler.Handle(ctx, r)
}
