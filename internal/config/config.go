// Package config loads the service configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

type Config struct {
	Env          string `yaml:"env"`
	BaseURL      string `yaml:"base_url"`
	HTTPServer   `yaml:"http_server"`
	Shortener    `yaml:"shortener"`
	RemoteLogger `yaml:"remote_logger"`
}

type HTTPServer struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	CertFile       string        `yaml:"cert_file"`
	KeyFile        string        `yaml:"key_file"`
}

var defaultHTTPServer = HTTPServer{
	Port:           8080,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type Shortener struct {
	ShortCodeLength int           `yaml:"short_code_length"`
	DefaultValidity time.Duration `yaml:"default_validity"`
}

var defaultShortener = Shortener{
	ShortCodeLength: 6,
	DefaultValidity: 30 * time.Minute,
}

// RemoteLogger configures the best-effort remote log sink. An empty URL
// disables it.
type RemoteLogger struct {
	URL        string        `yaml:"url"`
	Stack      string        `yaml:"stack"`
	Timeout    time.Duration `yaml:"timeout"`
	BufferSize int           `yaml:"buffer_size"`
}

var defaultRemoteLogger = RemoteLogger{
	Stack:      "backend",
	Timeout:    10 * time.Second,
	BufferSize: 256,
}

func Load(path string) (*Config, error) {
	const op = "config.Load"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
	}
	defer f.Close()

	var cfg Config
	setDefaults(&cfg)

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.BaseURL = "http://localhost:8080"
	cfg.HTTPServer = defaultHTTPServer
	cfg.Shortener = defaultShortener
	cfg.RemoteLogger = defaultRemoteLogger
}
