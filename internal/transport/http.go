package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JamesPrial/text2graph/pkg/config"
	"github.com/JamesPrial/text2graph/pkg/logging"
)

const (
	maxBodySize       = 10 * 1024 * 1024
	readHeaderTimeout = 5 * time.Second
)

// HealthFunc returns extra fields merged into the /health response
type HealthFunc func() map[string]interface{}

// HTTPTransport serves JSON-RPC on POST /rpc and a health check on GET /health
type HTTPTransport struct {
	config      *config.TransportSettings
	health      HealthFunc
	server      *http.Server
	handler     RequestHandler
	logger      *slog.Logger
	interceptor *logging.RequestInterceptor
	mu          sync.RWMutex
}

// NewHTTPTransport creates a new HTTP transport. health may be nil.
func NewHTTPTransport(cfg *config.TransportSettings, health HealthFunc) *HTTPTransport {
	logger := logging.GetGlobalLogger("transport.http")
	return &HTTPTransport{
		config:      cfg,
		health:      health,
		logger:      logger,
		interceptor: logging.NewRequestInterceptor(logger),
	}
}

// Router builds the chi router that dispatches to handler
func (t *HTTPTransport) Router(handler RequestHandler) http.Handler {
	t.mu.Lock()
	t.handler = handler
	t.mu.Unlock()

	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(t.interceptor.HTTPMiddleware)
	if t.config.EnableCORS {
		router.Use(t.corsMiddleware)
	}

	router.Post("/rpc", t.handleRPC)
	router.Get("/health", t.handleHealth)
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		t.logger.WarnContext(r.Context(), "Invalid HTTP method",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		t.sendJSONResponseWithStatus(w, CreateFallbackErrorResponse(nil, "Method not allowed"), http.StatusMethodNotAllowed)
	})

	return router
}

// Start listens on the configured address until ctx is canceled
func (t *HTTPTransport) Start(ctx context.Context, handler RequestHandler) error {
	addr := net.JoinHostPort(t.config.Host, fmt.Sprintf("%d", t.config.Port))

	t.logger.InfoContext(ctx, "HTTP transport starting",
		slog.String("transport", "http"),
		slog.String("address", addr),
	)

	server := &http.Server{
		Addr:              addr,
		Handler:           t.Router(handler),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       t.config.ReadTimeout,
		WriteTimeout:      t.config.WriteTimeout,
	}
	t.mu.Lock()
	t.server = server
	t.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.logger.ErrorContext(ctx, "HTTP server error",
				slog.String("error", err.Error()),
			)
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		t.logger.InfoContext(ctx, "HTTP transport context cancelled")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return t.Stop(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Stop gracefully shuts down the HTTP server
func (t *HTTPTransport) Stop(ctx context.Context) error {
	t.mu.RLock()
	server := t.server
	t.mu.RUnlock()

	if server == nil {
		return nil
	}

	t.logger.InfoContext(ctx, "HTTP transport stopping")
	if err := server.Shutdown(ctx); err != nil {
		t.logger.ErrorContext(ctx, "Error during HTTP server shutdown",
			slog.String("error", err.Error()),
		)
		return err
	}
	t.logger.InfoContext(ctx, "HTTP transport stopped successfully")
	return nil
}

func (t *HTTPTransport) Name() string {
	return "http"
}

func validContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || mediaType == "application/json-rpc"
}

// handleRPC handles JSON-RPC requests
func (t *HTTPTransport) handleRPC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !validContentType(r.Header.Get("Content-Type")) {
		t.logger.WarnContext(ctx, "Invalid content type for RPC",
			slog.String("content_type", r.Header.Get("Content-Type")),
		)
		respErr := CreateFallbackErrorResponse(nil, "Content-Type must be application/json or application/json-rpc")
		t.sendJSONResponseWithStatus(w, respErr, http.StatusUnsupportedMediaType)
		return
	}

	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		t.logger.WarnContext(ctx, "Failed to read request body",
			slog.String("error", err.Error()),
		)
		respErr := CreateFallbackErrorResponse(nil, "Failed to read request body")
		t.sendJSONResponseWithStatus(w, respErr, http.StatusRequestEntityTooLarge)
		return
	}

	req, err := ParseRequest(body)
	if err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		t.logger.WarnContext(ctx, "Failed to parse JSON-RPC request",
			slog.String("error", err.Error()),
			slog.String("body_preview", bodyPreview),
		)
		// JSON-RPC parse errors are reported with HTTP 200
		t.sendJSONResponseWithStatus(w, NewParseError(), http.StatusOK)
		return
	}

	t.mu.RLock()
	handler := t.handler
	t.mu.RUnlock()

	t.logger.InfoContext(ctx, "Processing JSON-RPC request",
		slog.String("method", req.Method),
		slog.Any("id", req.ID),
	)

	startTime := time.Now()
	resp := handler(ctx, req)
	duration := time.Since(startTime)

	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if resp.Error != nil {
		t.logger.WarnContext(ctx, "JSON-RPC request completed with error",
			slog.String("method", req.Method),
			slog.Any("id", req.ID),
			slog.Duration("duration", duration),
			slog.String("error", resp.Error.Message),
		)
	} else {
		t.logger.InfoContext(ctx, "JSON-RPC request completed successfully",
			slog.String("method", req.Method),
			slog.Any("id", req.ID),
			slog.Duration("duration", duration),
		)
	}

	t.sendJSONResponseWithStatus(w, resp, statusForResponse(resp))
}

// handleHealth reports liveness plus whatever the HealthFunc adds
func (t *HTTPTransport) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"transport": "http",
		"timestamp": time.Now().Unix(),
	}
	if t.health != nil {
		for k, v := range t.health() {
			health[k] = v
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(health); err != nil {
		t.logger.ErrorContext(r.Context(), "Failed to encode health response",
			slog.String("error", err.Error()),
		)
	}
}

// allowedOrigin returns the Access-Control-Allow-Origin value for origin,
// or "" when the origin is not allowed.
func (t *HTTPTransport) allowedOrigin(origin string) string {
	for _, allowed := range t.config.AllowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// corsMiddleware adds CORS headers to responses
func (t *HTTPTransport) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if allow := t.allowedOrigin(r.Header.Get("Origin")); allow != "" {
			w.Header().Set("Access-Control-Allow-Origin", allow)
			if allow != "*" {
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
			w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// sendJSONResponseWithStatus writes resp as JSON with the given status
func (t *HTTPTransport) sendJSONResponseWithStatus(w http.ResponseWriter, resp *JSONRPCResponse, statusCode int) {
	body, err := SerializeResponse(resp)
	if err != nil {
		t.logger.Error("Failed to encode response",
			slog.String("error", err.Error()),
		)
		body, _ = json.Marshal(CreateFallbackErrorResponse(nil, "Failed to encode response"))
		statusCode = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		t.logger.Warn("Failed to write response",
			slog.String("error", err.Error()),
		)
	}
}
