package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultModel is the Gemini model used when nothing else is configured.
const DefaultModel = "gemini-2.5-flash"

const (
	configFile = "config.yaml"
	logFile    = "nanogen.log"
)

// Config holds the CLI configuration.
type Config struct {
	// Home is the state directory (~/.nanogen by default). Not persisted.
	Home string `yaml:"-"`

	// Model is the Gemini model identifier.
	Model string `yaml:"model"`

	// SecretBackend is one of auto, keychain, file.
	SecretBackend string `yaml:"secret_backend"`

	// LogLevel is a zap level name (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// LogFile is where developer diagnostics are written. Relative paths
	// resolve against Home.
	LogFile string `yaml:"log_file"`

	// APIKeyOverride comes from GEMINI_API_KEY. It applies to the current
	// session only and is never written back.
	APIKeyOverride string `yaml:"-"`
}

// DefaultConfig returns the built-in defaults rooted at home.
func DefaultConfig(home string) *Config {
	return &Config{
		Home:          home,
		Model:         DefaultModel,
		SecretBackend: "auto",
		LogLevel:      "info",
		LogFile:       logFile,
	}
}

// DefaultHome returns NANOGEN_HOME, or ~/.nanogen.
func DefaultHome() (string, error) {
	if h := os.Getenv("NANOGEN_HOME"); h != "" {
		return h, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".nanogen"), nil
}

// Load reads config.yaml under home (DefaultHome when empty), applying
// defaults for missing fields and environment overrides on top.
// A missing file is not an error.
func Load(home string) (*Config, error) {
	if home == "" {
		h, err := DefaultHome()
		if err != nil {
			return nil, err
		}
		home = h
	}
	if err := os.MkdirAll(home, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", home, err)
	}

	cfg := DefaultConfig(home)
	data, err := os.ReadFile(cfg.Path())
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", cfg.Path(), err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the persisted fields back to config.yaml.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(c.Home, 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", c.Home, err)
	}
	return os.WriteFile(c.Path(), data, 0o600)
}

// Path returns the config file location.
func (c *Config) Path() string {
	return filepath.Join(c.Home, configFile)
}

// LogPath returns the absolute log file location.
func (c *Config) LogPath() string {
	if filepath.IsAbs(c.LogFile) {
		return c.LogFile
	}
	return filepath.Join(c.Home, c.LogFile)
}

func (c *Config) applyDefaults() {
	d := DefaultConfig(c.Home)
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.SecretBackend == "" {
		c.SecretBackend = d.SecretBackend
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.LogFile == "" {
		c.LogFile = d.LogFile
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NANOGEN_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("NANOGEN_SECRET_BACKEND"); v != "" {
		c.SecretBackend = v
	}
	if v := os.Getenv("NANOGEN_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.APIKeyOverride = v
	}
}
