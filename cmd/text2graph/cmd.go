package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JamesPrial/text2graph/internal/transport"
	"github.com/JamesPrial/text2graph/pkg/errors"
	"github.com/JamesPrial/text2graph/pkg/logging"
	"github.com/JamesPrial/text2graph/pkg/schema"
)

var version = "dev"

// rootOptions holds the persistent flags shared by all subcommands
type rootOptions struct {
	cfgFile string
	debug   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "text2graph",
		Short:        "text2graph extracts entity types and relationships from text to bootstrap a knowledge graph",
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default: built-in defaults)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "debug-level text logging with caller info")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newExtractCmd(opts))
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tools over the configured transport",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, err := loadSettings(opts.cfgFile, opts.debug)
	if err != nil {
		return err
	}
	if cfg.Transport.Type == "stdio" && cfg.Logging.Output == logging.LogOutputStdout {
		return errors.New(errors.ErrCodeConfiguration, "logging output cannot be stdout with the stdio transport")
	}

	a, err := newApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	health := func() map[string]interface{} {
		return map[string]interface{}{
			"extraction_method": a.manager.ExtractionMethod(),
			"tools":             a.toolNames(),
		}
	}
	tr, err := transport.NewFactory(health).CreateTransport(cfg)
	if err != nil {
		return err
	}

	a.logger.InfoContext(ctx, "text2graph server starting",
		slog.String("version", version),
		slog.String("transport", tr.Name()),
		slog.String("storage", cfg.Storage.Type),
		slog.String("extraction_method", a.manager.ExtractionMethod()),
		slog.Any("tools", a.toolNames()),
	)

	server := NewServer(a.manager)
	if err := tr.Start(ctx, server.HandleRequest); err != nil && err != context.Canceled {
		return fmt.Errorf("transport error: %w", err)
	}
	return nil
}

func newExtractCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Extract a schema from a file or stdin and print the JSON result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := "-"
			if len(args) == 1 {
				source = args[0]
			}
			return runExtract(cmd.Context(), opts, source, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func readSource(source string, stdin io.Reader) (string, error) {
	if source == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", source, err)
	}
	return string(data), nil
}

// runExtract prints the result or error envelope. An error envelope also
// makes the command fail.
func runExtract(ctx context.Context, opts *rootOptions, source string, stdin io.Reader, stdout io.Writer) error {
	cfg, err := loadSettings(opts.cfgFile, opts.debug)
	if err != nil {
		return err
	}

	text, err := readSource(source, stdin)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	result, runErr := a.pipeline.Run(ctx, text)

	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(schema.Envelope(result, runErr)); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return runErr
}
