package logging

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Level != LogLevelInfo {
		t.Errorf("expected level info, got %s", config.Level)
	}
	if config.Format != LogFormatJSON {
		t.Errorf("expected json format, got %s", config.Format)
	}
	if config.Output != LogOutputStderr {
		t.Errorf("expected stderr output, got %s", config.Output)
	}
	if !config.EnableRequestID {
		t.Error("expected request IDs to be enabled")
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestDevelopmentConfig(t *testing.T) {
	config := DevelopmentConfig()

	if config.Level != LogLevelDebug {
		t.Errorf("expected level debug, got %s", config.Level)
	}
	if config.Format != LogFormatText {
		t.Errorf("expected text format, got %s", config.Format)
	}
	if !config.EnableCaller {
		t.Error("expected caller to be enabled")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "invalid level",
			mutate:  func(c *Config) { c.Level = "verbose" },
			wantErr: "invalid log level",
		},
		{
			name:    "invalid component level",
			mutate:  func(c *Config) { c.ComponentLevels = map[string]LogLevel{"extract": "loud"} },
			wantErr: "invalid log level for component extract",
		},
		{
			name:    "invalid format",
			mutate:  func(c *Config) { c.Format = "xml" },
			wantErr: "invalid log format",
		},
		{
			name:    "invalid output",
			mutate:  func(c *Config) { c.Output = "syslog" },
			wantErr: "invalid log output",
		},
		{
			name:    "file output without path",
			mutate:  func(c *Config) { c.Output = LogOutputFile },
			wantErr: "filePath required",
		},
		{
			name: "file output with path",
			mutate: func(c *Config) {
				c.Output = LogOutputFile
				c.FilePath = "/tmp/text2graph.log"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestGetLevelForComponent(t *testing.T) {
	config := DefaultConfig()
	config.ComponentLevels = map[string]LogLevel{"parser": LogLevelDebug}

	if got := config.GetLevelForComponent("parser"); got != LogLevelDebug {
		t.Errorf("expected debug for parser, got %s", got)
	}
	if got := config.GetLevelForComponent("storage"); got != LogLevelInfo {
		t.Errorf("expected info for storage, got %s", got)
	}
}
