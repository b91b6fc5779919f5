package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JamesPrial/text2graph/internal/extract"
	"github.com/JamesPrial/text2graph/internal/knowledge"
	"github.com/JamesPrial/text2graph/internal/parser"
	"github.com/JamesPrial/text2graph/internal/storage"
	"github.com/JamesPrial/text2graph/pkg/config"
	"github.com/JamesPrial/text2graph/pkg/logging"
)

// app holds the components shared by the serve and extract commands
type app struct {
	cfg      *config.Settings
	pipeline *extract.Pipeline
	backend  storage.Backend
	manager  *knowledge.Manager
	logger   *slog.Logger
}

// loadSettings reads the config file and sets up global logging. debug
// swaps in the development logging config but keeps the configured output.
func loadSettings(path string, debug bool) (*config.Settings, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if debug {
		dev := logging.DevelopmentConfig()
		dev.Output = cfg.Logging.Output
		dev.FilePath = cfg.Logging.FilePath
		dev.ComponentLevels = cfg.Logging.ComponentLevels
		cfg.Logging = *dev
	}
	if err := logging.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return cfg, nil
}

// newPipeline picks the extractor once, probing the parser service
func newPipeline(ctx context.Context, cfg *config.Settings) *extract.Pipeline {
	p := parser.NewHTTPParser(cfg.Parser, nil)
	return extract.NewPipeline(extract.Select(ctx, p))
}

// newApp builds the pipeline and, when withStorage is set, the graph backend
func newApp(ctx context.Context, cfg *config.Settings, withStorage bool) (*app, error) {
	a := &app{
		cfg:      cfg,
		pipeline: newPipeline(ctx, cfg),
		logger:   logging.GetGlobalLogger("main"),
	}

	if withStorage {
		backend, err := storage.NewBackend(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage backend: %w", err)
		}
		a.backend = backend
	}

	a.manager = knowledge.NewManager(a.pipeline, a.backend)
	return a, nil
}

func (a *app) Close() error {
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			return err
		}
	}
	return logging.Shutdown()
}

func (a *app) toolNames() []string {
	tools := a.manager.HandleListTools()
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	return names
}
