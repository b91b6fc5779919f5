package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/JamesPrial/text2graph/pkg/errors"
	"github.com/JamesPrial/text2graph/pkg/logging"
)

// maxLineSize bounds one request line; extraction input can be long.
const maxLineSize = 10 * 1024 * 1024

// StdioTransport serves line-delimited JSON-RPC over a reader and writer
type StdioTransport struct {
	in      io.Reader
	out     io.Writer
	writeMu sync.Mutex
	stopped chan struct{}
	once    sync.Once
	logger  *slog.Logger
}

// NewStdioTransport creates a transport on os.Stdin and os.Stdout
func NewStdioTransport() *StdioTransport {
	return NewStdioTransportWithIO(os.Stdin, os.Stdout)
}

// NewStdioTransportWithIO creates a transport on the given streams
func NewStdioTransportWithIO(in io.Reader, out io.Writer) *StdioTransport {
	return &StdioTransport{
		in:      in,
		out:     out,
		stopped: make(chan struct{}),
		logger:  logging.GetGlobalLogger("transport.stdio"),
	}
}

// Start reads requests until the input ends, ctx is canceled or Stop is called
func (t *StdioTransport) Start(ctx context.Context, handler RequestHandler) error {
	t.logger.InfoContext(ctx, "StdIO transport starting",
		slog.String("transport", "stdio"),
	)

	scanner := bufio.NewScanner(t.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			t.logger.InfoContext(ctx, "StdIO transport context cancelled")
			return ctx.Err()
		case <-t.stopped:
			t.logger.InfoContext(ctx, "StdIO transport stopped")
			return nil
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		requestCtx := logging.NewRequestContext(ctx, "HandleStdIORequest")

		req, err := ParseRequest([]byte(line))
		if err != nil {
			t.logger.ErrorContext(requestCtx, "Failed to parse JSON-RPC request",
				slog.String("error", err.Error()),
				slog.Int("line_size", len(line)),
			)
			parseErr := errors.Wrap(err, errors.ErrCodeTransportInvalidJSON, "Invalid JSON format")
			t.sendResponse(requestCtx, ToJSONRPCResponse(nil, parseErr))
			continue
		}

		t.logger.InfoContext(requestCtx, "Processing JSON-RPC request",
			slog.String("method", req.Method),
			slog.Any("id", req.ID),
		)

		startTime := time.Now()
		resp := handler(requestCtx, req)
		duration := time.Since(startTime)

		if resp == nil {
			t.logger.DebugContext(requestCtx, "Notification handled",
				slog.String("method", req.Method),
				slog.Duration("duration", duration),
			)
			continue
		}

		if resp.Error != nil {
			t.logger.WarnContext(requestCtx, "Request completed with error",
				slog.String("method", req.Method),
				slog.Any("id", req.ID),
				slog.Duration("duration", duration),
				slog.String("error", resp.Error.Message),
			)
		} else {
			t.logger.InfoContext(requestCtx, "Request completed successfully",
				slog.String("method", req.Method),
				slog.Any("id", req.ID),
				slog.Duration("duration", duration),
			)
		}

		t.sendResponse(requestCtx, resp)
	}

	if err := scanner.Err(); err != nil {
		t.logger.ErrorContext(ctx, "Error reading from stdin",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("error reading from stdin: %w", err)
	}

	t.logger.InfoContext(ctx, "StdIO transport reached end of input")
	return nil
}

// Stop makes Start return before handling the next line
func (t *StdioTransport) Stop(ctx context.Context) error {
	t.logger.InfoContext(ctx, "StdIO transport stopping")
	t.once.Do(func() { close(t.stopped) })
	return nil
}

func (t *StdioTransport) Name() string {
	return "stdio"
}

// sendResponse writes one response line
func (t *StdioTransport) sendResponse(ctx context.Context, resp *JSONRPCResponse) {
	respBytes, err := SerializeResponse(resp)
	if err != nil {
		t.logger.ErrorContext(ctx, "Failed to marshal response",
			slog.Any("response_id", resp.ID),
			slog.String("error", err.Error()),
		)

		marshalErr := errors.Wrap(err, errors.ErrCodeTransportMarshal, "Failed to serialize response")
		respBytes, err = json.Marshal(ToJSONRPCResponse(resp.ID, marshalErr))
		if err != nil {
			// The ID itself may be unserializable.
			respBytes, _ = json.Marshal(CreateFallbackErrorResponse(nil, "Critical serialization error"))
		}
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := fmt.Fprintln(t.out, string(respBytes)); err != nil {
		t.logger.ErrorContext(ctx, "Failed to write response",
			slog.String("error", err.Error()),
		)
		return
	}

	t.logger.DebugContext(ctx, "Response sent successfully",
		slog.Any("response_id", resp.ID),
		slog.Int("response_size", len(respBytes)),
	)
}
