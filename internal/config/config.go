package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvAPIKey overrides the configured model credential.
const EnvAPIKey = "SCRIBBLE_API_KEY"

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DriverFile   = "file"
	DriverSQLite = "sqlite"

	defaultTimeout = 30 * time.Second
)

var validate = validator.New()

// Config holds CLI configuration stored at ~/.scribble/config.
type Config struct {
	APIKey         string  `yaml:"api_key,omitempty"`
	Provider       string  `yaml:"provider,omitempty" validate:"omitempty,oneof=gemini openai"`
	Model          string  `yaml:"model,omitempty"`
	BaseURL        string  `yaml:"base_url,omitempty" validate:"omitempty,url"`
	TimeoutSeconds int     `yaml:"timeout_seconds,omitempty" validate:"gte=0,lte=600"`
	LogLevel       string  `yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	Storage        Storage `yaml:"storage,omitempty"`
}

// Storage selects the persistence slot backend.
type Storage struct {
	Driver string `yaml:"driver,omitempty" validate:"omitempty,oneof=file sqlite"`
	Dir    string `yaml:"dir,omitempty"`
}

// Dir returns the scribble home directory.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".scribble")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(Dir(), "config")
}

// LogPath is where the TUI writes its log.
func LogPath() string {
	return filepath.Join(Dir(), "scribble.log")
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Provider: ProviderGemini,
		LogLevel: "info",
		Storage:  Storage{Driver: DriverFile},
	}
}

// Load reads and parses the config file. A missing file returns defaults
// together with an error wrapping os.ErrNotExist.
func Load() (*Config, error) {
	path := Path()

	info, err := os.Stat(path)
	if err != nil {
		return Default(), fmt.Errorf("config not found: %w", err)
	}

	perm := info.Mode().Perm()
	if perm != 0600 {
		return nil, fmt.Errorf("config permissions too open: %04o (want 0600)", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Resolve loads the config, tolerating a missing file, then applies .env
// and environment overrides.
func Resolve() (*Config, error) {
	cfg, err := Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv loads ./.env when present and lets SCRIBBLE_API_KEY override the
// stored key.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		c.APIKey = key
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes the config to disk with secure permissions.
func (c *Config) Save() error {
	path := Path()
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(path, 0600)
}

// Timeout is the model HTTP timeout.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StorageDir is where the note slot lives.
func (c *Config) StorageDir() string {
	if c.Storage.Dir != "" {
		return c.Storage.Dir
	}
	return Dir()
}

// Level maps LogLevel to slog.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
