package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/JamesPrial/text2graph/pkg/logging"
)

var validate = validator.New()

// Settings is the root of the YAML configuration file.
type Settings struct {
	Logging   logging.Config    `yaml:"logging"`
	Storage   StorageSettings   `yaml:"storage"`
	Transport TransportSettings `yaml:"transport"`
	Parser    ParserSettings    `yaml:"parser"`
}

type StorageSettings struct {
	Type   string         `yaml:"type" validate:"oneof=memory sqlite"`
	Path   string         `yaml:"path" validate:"required_if=Type sqlite"`
	Sqlite SqliteSettings `yaml:"sqlite"`
}

type SqliteSettings struct {
	WALMode bool `yaml:"walMode"`
}

type TransportSettings struct {
	Type           string        `yaml:"type" validate:"oneof=stdio http"`
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout    time.Duration `yaml:"readTimeout" validate:"gte=0"`
	WriteTimeout   time.Duration `yaml:"writeTimeout" validate:"gte=0"`
	EnableCORS     bool          `yaml:"enableCors"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
}

// ParserSettings points at the annotation service. An empty endpoint
// means no parser is configured and the heuristic extractor is used.
type ParserSettings struct {
	Endpoint   string        `yaml:"endpoint" validate:"omitempty,url"`
	ParsePath  string        `yaml:"parsePath"`
	HealthPath string        `yaml:"healthPath"`
	Timeout    time.Duration `yaml:"timeout" validate:"gte=0"`
}

// Default returns the settings used when no config file is given.
func Default() *Settings {
	return &Settings{
		Logging: *logging.DefaultConfig(),
		Storage: StorageSettings{
			Type: "memory",
		},
		Transport: TransportSettings{
			Type:           "stdio",
			Host:           "localhost",
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			EnableCORS:     true,
			AllowedOrigins: []string{"*"},
		},
		Parser: ParserSettings{
			ParsePath:  "/parse",
			HealthPath: "/health",
			Timeout:    10 * time.Second,
		},
	}
}

// Validate normalizes enum-like fields and checks the settings
func (s *Settings) Validate() error {
	s.Storage.Type = strings.ToLower(strings.TrimSpace(s.Storage.Type))
	if s.Storage.Type == "" {
		s.Storage.Type = "memory"
	}
	s.Transport.Type = strings.ToLower(strings.TrimSpace(s.Transport.Type))
	if s.Transport.Type == "" {
		s.Transport.Type = "stdio"
	}
	s.Logging.Level = logging.LogLevel(strings.ToLower(string(s.Logging.Level)))
	s.Parser.Endpoint = strings.TrimRight(strings.TrimSpace(s.Parser.Endpoint), "/")
	s.Parser.ParsePath = normalizePath(s.Parser.ParsePath)
	s.Parser.HealthPath = normalizePath(s.Parser.HealthPath)

	if err := validate.Struct(s); err != nil {
		return describeValidationError(err)
	}

	if err := s.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	return nil
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p != "" && !strings.HasPrefix(p, "/") {
		return "/" + p
	}
	return p
}

// describeValidationError turns validator output into one readable line per field.
func describeValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		field := strings.TrimPrefix(fe.Namespace(), "Settings.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed '%s=%s' (got '%v')", field, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed '%s' (got '%v')", field, fe.Tag(), fe.Value()))
		}
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

// Load reads settings from a YAML file. An empty path returns the defaults.
// Keys absent from the file keep their default values.
func Load(path string) (*Settings, error) {
	settings := Default()
	if path == "" {
		return settings, nil
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(bytes, settings); err != nil {
		return nil, err
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}
