package transport

import (
	"fmt"

	"github.com/JamesPrial/text2graph/pkg/config"
)

// Factory creates transport instances based on configuration
type Factory struct {
	health HealthFunc
}

// NewFactory creates a transport factory. health is passed to HTTP transports.
func NewFactory(health HealthFunc) *Factory {
	return &Factory{health: health}
}

// CreateTransport creates a transport instance based on the configuration
func (f *Factory) CreateTransport(cfg *config.Settings) (Transport, error) {
	switch cfg.Transport.Type {
	case "stdio", "":
		return NewStdioTransport(), nil
	case "http":
		return NewHTTPTransport(&cfg.Transport, f.health), nil
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", cfg.Transport.Type)
	}
}
