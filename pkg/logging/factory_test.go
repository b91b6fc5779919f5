package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestNewFactory(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		expectErr bool
	}{
		{name: "nil config uses default", config: nil},
		{name: "default config", config: DefaultConfig()},
		{name: "development config", config: DevelopmentConfig()},
		{
			name:      "invalid config",
			config:    &Config{Level: "invalid", Format: LogFormatJSON, Output: LogOutputStdout},
			expectErr: true,
		},
		{
			name: "file output",
			config: &Config{
				Level:    LogLevelInfo,
				Format:   LogFormatJSON,
				Output:   LogOutputFile,
				FilePath: filepath.Join(t.TempDir(), "test.log"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory, err := NewFactory(tt.config)
			if tt.expectErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), "invalid logging config") {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := factory.Close(); err != nil {
				t.Errorf("close failed: %v", err)
			}
		})
	}
}

func TestFactoryGetLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	factory, err := NewFactoryWithWriter(DefaultConfig(), &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger := factory.GetLogger("parser")
	logger.Info("probe finished", "available", true)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["component"] != "parser" {
		t.Errorf("expected component parser, got %v", entry["component"])
	}
	if entry["msg"] != "probe finished" {
		t.Errorf("unexpected msg %v", entry["msg"])
	}

	if factory.GetLogger("parser") != logger {
		t.Error("expected cached logger to be returned")
	}
}

func TestFactoryComponentLevels(t *testing.T) {
	var buf bytes.Buffer
	config := DefaultConfig()
	config.Level = LogLevelWarn
	config.ComponentLevels = map[string]LogLevel{"extract": LogLevelDebug}

	factory, err := NewFactoryWithWriter(config, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	factory.GetLogger("storage").Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered, got %q", buf.String())
	}

	factory.GetLogger("extract").Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("expected debug line for extract, got %q", buf.String())
	}
}

func TestFactoryWithContext(t *testing.T) {
	var buf bytes.Buffer
	factory, err := NewFactoryWithWriter(DefaultConfig(), &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := WithOperation(WithRequestID(context.Background(), "req-42"), "graph__bootstrap")
	factory.WithContext(ctx, nil).Info("handled")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-42"`) {
		t.Errorf("expected request_id in %q", out)
	}
	if !strings.Contains(out, `"operation":"graph__bootstrap"`) {
		t.Errorf("expected operation in %q", out)
	}
}

func TestFactoryTextFormat(t *testing.T) {
	var buf bytes.Buffer
	factory, err := NewFactoryWithWriter(DevelopmentConfig(), &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	factory.GetLogger("cli").Debug("text line")
	if !strings.Contains(buf.String(), "component=cli") {
		t.Errorf("expected text handler output, got %q", buf.String())
	}
}

func TestFactoryFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	config := DefaultConfig()
	config.Output = LogOutputFile
	config.FilePath = path

	factory, err := NewFactory(config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	factory.GetLogger("storage").Info("written to file")
	if err := factory.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("expected log line in file, got %q", string(data))
	}
}

func TestGlobalLogger(t *testing.T) {
	defer func() { _ = Shutdown() }()

	// Before initialization a usable default logger is returned.
	if GetGlobalLogger("early") == nil {
		t.Fatal("expected default logger")
	}

	var buf bytes.Buffer
	if err := InitializeWithWriter(DefaultConfig(), &buf); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	GetGlobalLogger("knowledge").Info("global line")
	if !strings.Contains(buf.String(), `"component":"knowledge"`) {
		t.Errorf("expected global logger output, got %q", buf.String())
	}

	if err := Shutdown(); err != nil {
		t.Errorf("shutdown failed: %v", err)
	}
	if err := Shutdown(); err != nil {
		t.Errorf("second shutdown should be a no-op: %v", err)
	}
}

func TestFactoryConcurrentGetLogger(t *testing.T) {
	var buf bytes.Buffer
	factory, err := NewFactoryWithWriter(DefaultConfig(), &syncWriter{w: &buf})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			factory.GetLogger("shared").Info("concurrent")
		}()
	}
	wg.Wait()

	if got := strings.Count(buf.String(), "concurrent"); got != 20 {
		t.Errorf("expected 20 lines, got %d", got)
	}
}

type syncWriter struct {
	mu sync.Mutex
	w  *bytes.Buffer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
