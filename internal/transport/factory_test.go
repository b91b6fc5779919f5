package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesPrial/text2graph/pkg/config"
)

func TestFactory_CreateTransport(t *testing.T) {
	factory := NewFactory(nil)

	tests := []struct {
		transportType string
		expectedName  string
		expectErr     bool
	}{
		{transportType: "", expectedName: "stdio"},
		{transportType: "stdio", expectedName: "stdio"},
		{transportType: "http", expectedName: "http"},
		{transportType: "sse", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.transportType, func(t *testing.T) {
			cfg := config.Default()
			cfg.Transport.Type = tt.transportType

			tr, err := factory.CreateTransport(cfg)
			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, tr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedName, tr.Name())
		})
	}
}
