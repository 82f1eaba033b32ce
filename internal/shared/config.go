package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Values from the file are layered over the embedded defaults and then over
// WTX_* environment variables.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	Storage StorageConfig `toml:"storage"`
	Notify  NotifyConfig  `toml:"notify"`
	Plex    PlexConfig    `toml:"plex"`
	Log     LogConfig     `toml:"log"`
}

// BackendConfig contains settings for the watchlist server API.
type BackendConfig struct {
	BaseURL        string  `toml:"base_url" env:"WTX_BASE_URL"`
	TimeoutSeconds int     `toml:"timeout_seconds" env:"WTX_TIMEOUT_SECONDS"`
	RateLimit      float64 `toml:"rate_limit" env:"WTX_RATE_LIMIT"`
	Burst          int     `toml:"burst"`
	Retries        uint    `toml:"retries" env:"WTX_RETRIES"`
}

// StorageConfig selects and configures durable client storage.
type StorageConfig struct {
	Driver       string `toml:"driver" env:"WTX_STORAGE_DRIVER"`
	Path         string `toml:"path" env:"WTX_STORAGE_PATH"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// NotifyConfig contains notification center settings.
type NotifyConfig struct {
	TimeoutMS int `toml:"timeout_ms" env:"WTX_NOTIFY_TIMEOUT_MS"`
}

// PlexConfig contains the headers sent to plex.tv and the pin poll interval.
type PlexConfig struct {
	PollIntervalMS  int    `toml:"poll_interval_ms"`
	Product         string `toml:"product"`
	Device          string `toml:"device"`
	DeviceName      string `toml:"device_name"`
	Platform        string `toml:"platform"`
	PlatformVersion string `toml:"platform_version"`
}

// LogConfig contains logger level and rotation settings.
type LogConfig struct {
	Level      string `toml:"level" env:"WTX_LOG_LEVEL"`
	File       string `toml:"file" env:"WTX_LOG_FILE"`
	MaxSize    int    `toml:"max_size"`
	MaxBackups int    `toml:"max_backups"`
	MaxAge     int    `toml:"max_age"`
	Compress   bool   `toml:"compress"`
}

// Timeout returns the backend request timeout.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// Delay returns the notification auto-removal delay.
func (n NotifyConfig) Delay() time.Duration {
	return time.Duration(n.TimeoutMS) * time.Millisecond
}

// PollInterval returns the plex pin poll interval.
func (p PlexConfig) PollInterval() time.Duration {
	return time.Duration(p.PollIntervalMS) * time.Millisecond
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("%w: failed to read env: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// LoadConfigOrDefault loads the config at path, falling back to the defaults
// (still honoring environment overrides) when the file does not exist.
func LoadConfigOrDefault(path string) (*Config, error) {
	config, err := LoadConfig(path)
	if err == nil {
		return config, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	config = DefaultConfig()
	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("%w: failed to read env: %v", ErrInvalidConfig, err)
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
