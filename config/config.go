package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API       APIConfig       `yaml:"api"`
	Storage   StorageConfig   `yaml:"storage"`
	Pushover  PushoverConfig  `yaml:"pushover"`
	DevServer DevServerConfig `yaml:"devserver"`
	Log       LogConfig       `yaml:"log"`
}

type APIConfig struct {
	BaseURL     string `yaml:"base_url" validate:"required,url"`
	Timeout     string `yaml:"timeout"`
	MaxAttempts int    `yaml:"max_attempts" validate:"gte=1,lte=10"`
}

type StorageConfig struct {
	Path        string `yaml:"path" validate:"required"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout" validate:"gte=0"`
}

type PushoverConfig struct {
	Token   string `yaml:"token" validate:"required_if=Enabled true"`
	UserKey string `yaml:"user_key" validate:"required_if=Enabled true"`
	Enabled bool   `yaml:"enabled"`
}

type DevServerConfig struct {
	Addr       string `yaml:"addr"`
	RateLimit  int    `yaml:"rate_limit" validate:"gte=0"`
	RateWindow string `yaml:"rate_window"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
	Output string `yaml:"output" validate:"oneof=stdout stderr"`
}

// Load reads a YAML config file. Variables from a .env file in the working
// directory are loaded first so the file can reference them as ${VAR}.
// A missing config file yields the defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	if _, err := time.ParseDuration(c.API.Timeout); err != nil {
		return fmt.Errorf("validating config: api.timeout: %w", err)
	}
	return nil
}

// RequestTimeout is the parsed api.timeout.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// DevServerRateWindow is the parsed devserver.rate_window.
func (c *Config) DevServerRateWindow() time.Duration {
	d, err := time.ParseDuration(c.DevServer.RateWindow)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

func (c *Config) setDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = os.Getenv("THINGIES_API_URL")
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8000"
	}
	if c.API.Timeout == "" {
		c.API.Timeout = "15s"
	}
	if c.API.MaxAttempts == 0 {
		c.API.MaxAttempts = 1
	}
	if c.Storage.Path == "" {
		c.Storage.Path = defaultStoragePath()
	}
	if c.Storage.BusyTimeout == 0 {
		c.Storage.BusyTimeout = 5
	}
	if c.DevServer.Addr == "" {
		c.DevServer.Addr = ":8000"
	}
	if c.DevServer.RateLimit == 0 {
		c.DevServer.RateLimit = 120
	}
	if c.DevServer.RateWindow == "" {
		c.DevServer.RateWindow = "1m"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stderr"
	}
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".smartthingies", "state.db")
	}
	return filepath.Join(home, ".smartthingies", "state.db")
}
