package logging

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"
)

// RequestInterceptor provides request lifecycle logging capabilities
type RequestInterceptor struct {
	logger *slog.Logger
}

// NewRequestInterceptor creates a new request interceptor with the specified logger
func NewRequestInterceptor(logger *slog.Logger) *RequestInterceptor {
	return &RequestInterceptor{
		logger: logger,
	}
}

// HTTPMiddleware returns an HTTP middleware that logs request lifecycle
func (r *RequestInterceptor) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		startTime := time.Now()

		ctx := req.Context()
		operation := fmt.Sprintf("%s %s", req.Method, req.URL.Path)
		ctx = NewRequestContext(ctx, operation)
		req = req.WithContext(ctx)

		requestID := GetRequestID(ctx)
		w.Header().Set("X-Request-ID", requestID)

		r.logger.DebugContext(ctx, "HTTP request started",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.String("remote_addr", req.RemoteAddr),
			slog.String("request_id", requestID),
		)

		wrappedWriter := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		defer func() {
			if recovered := recover(); recovered != nil {
				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)

				r.logger.ErrorContext(ctx, "HTTP request panicked",
					slog.String("method", req.Method),
					slog.String("path", req.URL.Path),
					slog.String("request_id", requestID),
					slog.Duration("duration", time.Since(startTime)),
					slog.Any("panic", recovered),
					slog.String("stack_trace", string(buf[:n])),
				)

				if !wrappedWriter.headerWritten {
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}
		}()

		next.ServeHTTP(wrappedWriter, req)

		duration := time.Since(startTime)
		statusCode := wrappedWriter.statusCode
		if statusCode >= 400 {
			r.logger.WarnContext(ctx, "HTTP request completed with error",
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.String("request_id", requestID),
				slog.Int("status_code", statusCode),
				slog.Duration("duration", duration),
			)
		} else {
			r.logger.InfoContext(ctx, "HTTP request completed",
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.String("request_id", requestID),
				slog.Int("status_code", statusCode),
				slog.Duration("duration", duration),
			)
		}
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.headerWritten = true
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.headerWritten = true
	return rw.ResponseWriter.Write(b)
}

// OperationTimer helps track operation latencies. The start time lives in
// its context.
type OperationTimer struct {
	logger    *slog.Logger
	operation string
	ctx       context.Context
}

// StartTimer creates a new operation timer
func StartTimer(ctx context.Context, logger *slog.Logger, operation string) *OperationTimer {
	if GetRequestID(ctx) == "" {
		ctx = NewRequestContext(ctx, operation)
	} else {
		ctx = WithStartTime(ctx, time.Now())
	}

	logger.DebugContext(ctx, "Operation started",
		slog.String("operation", operation),
		slog.String("request_id", GetRequestID(ctx)),
	)

	return &OperationTimer{
		logger:    logger,
		operation: operation,
		ctx:       ctx,
	}
}

// End completes the timer and logs the duration
func (t *OperationTimer) End() time.Duration {
	return t.EndWithError(nil)
}

// EndWithError completes the timer and logs the duration with an error
func (t *OperationTimer) EndWithError(err error) time.Duration {
	duration := GetDuration(t.ctx)
	requestID := GetRequestID(t.ctx)

	if err != nil {
		t.logger.ErrorContext(t.ctx, "Operation failed",
			slog.String("operation", t.operation),
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		)
	} else {
		t.logger.DebugContext(t.ctx, "Operation completed",
			slog.String("operation", t.operation),
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
		)
	}

	return duration
}
