package logging

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// MultiHandler sends each record to every sink that wants its level: the
// log file or console, Graylog and the OTel bridge.
type MultiHandler struct {
	sinks []slog.Handler
}

// NewMultiHandler drops nil sinks so optional outputs can be passed unconditionally.
func NewMultiHandler(sinks ...slog.Handler) *MultiHandler {
	m := &MultiHandler{sinks: make([]slog.Handler, 0, len(sinks))}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range m.sinks {
		if s.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle delivers r to every enabled sink. A failing sink does not stop the
// others; all failures are returned together.
func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, s := range m.sinks {
		if !s.Enabled(ctx, r.Level) {
			continue
		}
		if err := s.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.derive(func(s slog.Handler) slog.Handler { return s.WithAttrs(attrs) })
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return m
	}
	return m.derive(func(s slog.Handler) slog.Handler { return s.WithGroup(name) })
}

func (m *MultiHandler) derive(fn func(slog.Handler) slog.Handler) *MultiHandler {
	sinks := make([]slog.Handler, len(m.sinks))
	for i, s := range m.sinks {
		sinks[i] = fn(s)
	}
	return &MultiHandler{sinks: sinks}
}

// ContextProvider returns attributes describing what is running right now.
type ContextProvider func() []slog.Attr

// ContextHandler stamps records with the attributes of the running match.
// Stamped attributes always sit at the top level, also for loggers derived
// with WithGroup. A key the caller already logged explicitly at the top
// level is not stamped again, so a record about round 7 written during
// round 8 keeps round=7.
type ContextHandler struct {
	// root is next before its first group was opened.
	root slog.Handler
	next slog.Handler
	// scoped replays on root what was derived after the first group.
	scoped   []func(slog.Handler) slog.Handler
	provider ContextProvider
}

// NewContextHandler wraps next.
func NewContextHandler(next slog.Handler, provider ContextProvider) *ContextHandler {
	return &ContextHandler{root: next, next: next, provider: provider}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.provider == nil {
		return h.next.Handle(ctx, r)
	}
	stamps := h.provider()

	if len(h.scoped) > 0 {
		target := h.root.WithAttrs(stamps)
		for _, derive := range h.scoped {
			target = derive(target)
		}
		return target.Handle(ctx, r)
	}

	present := make(map[string]bool, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		present[a.Key] = true
		return true
	})
	for _, a := range stamps {
		if !present[a.Key] {
			r.AddAttrs(a)
		}
	}
	return h.next.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(h.scoped) == 0 {
		return &ContextHandler{root: h.root.WithAttrs(attrs), next: h.next.WithAttrs(attrs), provider: h.provider}
	}
	return h.derive(func(s slog.Handler) slog.Handler { return s.WithAttrs(attrs) })
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.derive(func(s slog.Handler) slog.Handler { return s.WithGroup(name) })
}

func (h *ContextHandler) derive(fn func(slog.Handler) slog.Handler) *ContextHandler {
	return &ContextHandler{
		root:     h.root,
		next:     fn(h.next),
		scoped:   append(slices.Clip(h.scoped), fn),
		provider: h.provider,
	}
}
