package logging

import (
	"context"
	"log/slog"
)

// LevelHandler filters records below a component-specific minimum level
// before handing them to the shared handler.
type LevelHandler struct {
	handler slog.Handler
	level   slog.Level
}

// NewLevelHandler creates a new level handler with the given minimum level
func NewLevelHandler(handler slog.Handler, level slog.Level) *LevelHandler {
	// Avoid stacking level handlers when a logger is derived twice.
	if lh, ok := handler.(*LevelHandler); ok {
		handler = lh.handler
	}
	return &LevelHandler{
		handler: handler,
		level:   level,
	}
}

// Enabled implements slog.Handler
func (lh *LevelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= lh.level
}

// Handle implements slog.Handler
func (lh *LevelHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < lh.level {
		return nil
	}
	return lh.handler.Handle(ctx, record)
}

// WithAttrs implements slog.Handler
func (lh *LevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LevelHandler{handler: lh.handler.WithAttrs(attrs), level: lh.level}
}

// WithGroup implements slog.Handler
func (lh *LevelHandler) WithGroup(name string) slog.Handler {
	return &LevelHandler{handler: lh.handler.WithGroup(name), level: lh.level}
}

// Level returns the minimum level of the handler
func (lh *LevelHandler) Level() slog.Level {
	return lh.level
}
