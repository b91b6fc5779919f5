package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Factory creates and manages loggers for different components
type Factory struct {
	config  *Config
	loggers map[string]*slog.Logger
	mu      sync.RWMutex

	writer  io.Writer
	handler slog.Handler
}

// NewFactory creates a new logger factory
func NewFactory(config *Config) (*Factory, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logging config: %w", err)
	}

	f := &Factory{
		config:  config,
		loggers: make(map[string]*slog.Logger),
	}

	if err := f.initializeHandler(); err != nil {
		return nil, fmt.Errorf("failed to initialize handler: %w", err)
	}

	return f, nil
}

// NewFactoryWithWriter creates a factory that writes to w regardless of the
// configured output. Used by tests to capture log lines.
func NewFactoryWithWriter(config *Config, w io.Writer) (*Factory, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logging config: %w", err)
	}

	f := &Factory{
		config:  config,
		loggers: make(map[string]*slog.Logger),
		writer:  w,
	}
	f.handler = f.newHandler(w)
	return f, nil
}

// initializeHandler creates the base slog handler
func (f *Factory) initializeHandler() error {
	var writer io.Writer

	switch f.config.Output {
	case LogOutputStdout:
		writer = os.Stdout
	case LogOutputStderr:
		writer = os.Stderr
	case LogOutputFile:
		file, err := os.OpenFile(f.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		writer = file
	default:
		writer = os.Stderr
	}

	f.writer = writer
	f.handler = f.newHandler(writer)
	return nil
}

func (f *Factory) newHandler(writer io.Writer) slog.Handler {
	// The base handler accepts everything; LevelHandler applies the
	// global or per-component minimum.
	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: f.config.EnableCaller,
	}

	switch f.config.Format {
	case LogFormatText:
		return slog.NewTextHandler(writer, opts)
	default:
		return slog.NewJSONHandler(writer, opts)
	}
}

// GetLogger returns a logger for a specific component
func (f *Factory) GetLogger(component string) *slog.Logger {
	f.mu.RLock()
	if logger, exists := f.loggers[component]; exists {
		f.mu.RUnlock()
		return logger
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	// Double-check after acquiring write lock
	if logger, exists := f.loggers[component]; exists {
		return logger
	}

	level := f.config.GetLevelForComponent(component)
	handler := NewLevelHandler(f.handler, f.slogLevel(level))

	logger := slog.New(handler).With(
		slog.String("component", component),
	)

	f.loggers[component] = logger
	return logger
}

// WithContext creates a logger carrying the request metadata found in ctx
func (f *Factory) WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = f.GetLogger("default")
	}
	if !f.config.EnableRequestID {
		return logger
	}

	args := make([]any, 0, 4)
	if reqID := GetRequestID(ctx); reqID != "" {
		args = append(args, slog.String("request_id", reqID))
	}
	if operation := GetOperation(ctx); operation != "" {
		args = append(args, slog.String("operation", operation))
	}

	if len(args) > 0 {
		return logger.With(args...)
	}
	return logger
}

// slogLevel converts our LogLevel to slog.Level
func (f *Factory) slogLevel(level LogLevel) slog.Level {
	switch level {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Close closes the log file, if any
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if file, ok := f.writer.(*os.File); ok && file != os.Stdout && file != os.Stderr {
		if err := file.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
	}
	return nil
}

// Global factory instance
var (
	globalFactory *Factory
	globalMu      sync.RWMutex
)

// Initialize sets up the global logger factory
func Initialize(config *Config) error {
	factory, err := NewFactory(config)
	if err != nil {
		return err
	}
	return setGlobal(factory)
}

// InitializeWithWriter sets up the global logger factory writing to w
func InitializeWithWriter(config *Config, w io.Writer) error {
	factory, err := NewFactoryWithWriter(config, w)
	if err != nil {
		return err
	}
	return setGlobal(factory)
}

func setGlobal(factory *Factory) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalFactory != nil {
		if err := globalFactory.Close(); err != nil {
			return fmt.Errorf("failed to close existing factory: %w", err)
		}
	}

	globalFactory = factory
	return nil
}

// GetGlobalLogger returns a logger from the global factory
func GetGlobalLogger(component string) *slog.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()

	if globalFactory == nil {
		// Return default logger if not initialized
		return slog.Default().With(slog.String("component", component))
	}

	return globalFactory.GetLogger(component)
}

// Shutdown gracefully shuts down the global logging factory
func Shutdown() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalFactory == nil {
		return nil
	}

	err := globalFactory.Close()
	globalFactory = nil
	return err
}
