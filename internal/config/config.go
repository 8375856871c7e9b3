package config

import (
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v2"
)

const (
	// DefaultBaseURL is the production Atlas Prime API endpoint.
	DefaultBaseURL = "https://api.atlasprimebr.com"

	// DefaultPollInterval is the cadence of the usage telemetry poller. It is
	// a tunable, not a correctness-bearing value.
	DefaultPollInterval = 5 * time.Second

	// DefaultPageLimit bounds transcript and session list fetches.
	DefaultPageLimit = 100
)

// Config holds the client configuration persisted at ~/.atlas/config.yaml.
type Config struct {
	BaseURL          string `yaml:"base_url"`
	PollIntervalSecs int    `yaml:"poll_interval_seconds"`
	PageLimit        int    `yaml:"page_limit"`
}

// Dir returns the atlas state directory (~/.atlas), creating it if needed.
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv("HOME")
		if homeDir == "" {
			homeDir = "."
		}
	}
	dir := filepath.Join(homeDir, ".atlas")
	_ = os.MkdirAll(dir, 0755)
	return dir
}

// ConfigPath returns the yaml config file location.
func ConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// CredentialsPath returns the persisted credential file location.
func CredentialsPath() string {
	return filepath.Join(Dir(), "credentials.json")
}

// LogPath returns the file the TUI logs to.
func LogPath() string {
	return filepath.Join(Dir(), "atlas.log")
}

// Load reads the config file, applies defaults for missing fields and the
// ATLAS_API_URL environment override. A missing file yields pure defaults.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads a config from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.applyDefaults()

	if url := os.Getenv("ATLAS_API_URL"); url != "" {
		cfg.BaseURL = url
	}
	return cfg, nil
}

// Save writes the config back to its default location.
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes the config to an explicit path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// PollInterval returns the telemetry poll cadence as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSecs) * time.Second
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.PollIntervalSecs <= 0 {
		c.PollIntervalSecs = int(DefaultPollInterval / time.Second)
	}
	if c.PageLimit <= 0 {
		c.PageLimit = DefaultPageLimit
	}
}
