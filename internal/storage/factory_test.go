package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesPrial/text2graph/pkg/config"
)

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name      string
		storage   config.StorageSettings
		wantType  interface{}
		expectErr string
	}{
		{name: "memory", storage: config.StorageSettings{Type: "memory"}, wantType: &MemoryBackend{}},
		{name: "empty defaults to memory", storage: config.StorageSettings{}, wantType: &MemoryBackend{}},
		{name: "sqlite", storage: config.StorageSettings{Type: "sqlite", Path: "PLACEHOLDER"}, wantType: &SqliteBackend{}},
		{name: "sqlite without path", storage: config.StorageSettings{Type: "sqlite"}, expectErr: "storage path is required"},
		{name: "unsupported", storage: config.StorageSettings{Type: "postgres"}, expectErr: "unsupported storage type: postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Storage = tt.storage
			if cfg.Storage.Path == "PLACEHOLDER" {
				cfg.Storage.Path = filepath.Join(t.TempDir(), "graph.db")
			}

			backend, err := NewBackend(cfg)

			if tt.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectErr)
				assert.Nil(t, backend)
				return
			}
			require.NoError(t, err)
			defer backend.Close()
			assert.IsType(t, tt.wantType, backend)
		})
	}
}

func TestNewBackend_NilConfig(t *testing.T) {
	backend, err := NewBackend(nil)
	assert.Error(t, err)
	assert.Nil(t, backend)
}
