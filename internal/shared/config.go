package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Processing ProcessingConfig `toml:"processing"`
	Fetch      FetchConfig      `toml:"fetch"`
	Database   DatabaseConfig   `toml:"database"`
	Log        LogConfig        `toml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host                  string  `toml:"host"`
	Port                  int     `toml:"port"`
	PublicDir             string  `toml:"public_dir"`
	PublicURL             string  `toml:"public_url"`
	RateLimit             float64 `toml:"rate_limit"`
	RateBurst             int     `toml:"rate_burst"`
	MaxConcurrent         int     `toml:"max_concurrent"`
	RequestTimeoutSeconds int     `toml:"request_timeout_seconds"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RequestTimeout is zero when no per-request deadline is imposed.
func (s ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// ProcessingConfig contains transcoding settings.
type ProcessingConfig struct {
	FFmpegPath      string `toml:"ffmpeg_path"`
	WorkDir         string `toml:"work_dir"`
	OutputExtension string `toml:"output_extension"`
}

// FetchConfig contains source download settings.
type FetchConfig struct {
	TimeoutSeconds int   `toml:"timeout_seconds"`
	MaxBytes       int64 `toml:"max_bytes"`
}

// Timeout returns the download timeout as a [time.Duration].
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads a TOML configuration file from the specified path and overlays it on [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port < 1 || c.Server.Port > 65535:
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	case c.Server.RateLimit < 0:
		return fmt.Errorf("%w: server.rate_limit must not be negative", ErrInvalidConfig)
	case c.Server.RateBurst < 0:
		return fmt.Errorf("%w: server.rate_burst must not be negative", ErrInvalidConfig)
	case c.Server.MaxConcurrent < 0:
		return fmt.Errorf("%w: server.max_concurrent must not be negative", ErrInvalidConfig)
	case c.Server.RequestTimeoutSeconds < 0:
		return fmt.Errorf("%w: server.request_timeout_seconds must not be negative", ErrInvalidConfig)
	case strings.TrimSpace(c.Processing.FFmpegPath) == "":
		return fmt.Errorf("%w: processing.ffmpeg_path is empty", ErrInvalidConfig)
	case c.Processing.OutputExtension != "" && !strings.HasPrefix(c.Processing.OutputExtension, "."):
		return fmt.Errorf("%w: processing.output_extension must start with a dot", ErrInvalidConfig)
	case c.Fetch.TimeoutSeconds < 0 || c.Fetch.MaxBytes < 0:
		return fmt.Errorf("%w: fetch limits must not be negative", ErrInvalidConfig)
	}

	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}
