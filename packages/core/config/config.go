package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the contractcheck configuration
type Config struct {
	BaseURL   string            `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
	Timeout   int               `json:"timeout,omitempty" yaml:"timeout,omitempty"` // milliseconds
	Retries   int               `json:"retries,omitempty" yaml:"retries,omitempty"`
	RateLimit float64           `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"` // requests per second, 0 = unlimited
	Headers   map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Fixtures  string            `json:"fixtures,omitempty" yaml:"fixtures,omitempty"` // path to fixture file
	Reporters []string          `json:"reporters,omitempty" yaml:"reporters,omitempty"`
	OutputDir string            `json:"outputDir,omitempty" yaml:"outputDir,omitempty"`
	Bail      *bool             `json:"bail,omitempty" yaml:"bail,omitempty"`
	Verbose   *bool             `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	NoColor   *bool             `json:"noColor,omitempty" yaml:"noColor,omitempty"`
	Insecure  *bool             `json:"insecure,omitempty" yaml:"insecure,omitempty"` // skip TLS verification
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

func (c *Config) GetBail() bool {
	return getBool(c.Bail, false)
}

func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

func (c *Config) GetInsecure() bool {
	return getBool(c.Insecure, false)
}

// TimeoutDuration returns Timeout as a duration.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// ConfigFilenames contains the possible config file names, in search order
var ConfigFilenames = []string{
	".contractcheck.json",
	"contractcheck.json",
	".contractcheck.yaml",
	".contractcheck.yml",
	"contractcheck.yaml",
	"contractcheck.yml",
}

// LoadConfig loads configuration from the specified path or searches the
// current directory for one of ConfigFilenames.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in dir. Defaults are
// returned when none exists.
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}
	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fileConfig := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fileConfig)
	default:
		err = json.Unmarshal(data, fileConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg := DefaultConfig().Merge(fileConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports values no run could use.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("baseUrl must not be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rateLimit must not be negative")
	}
	return nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.BaseURL != "" {
		result.BaseURL = other.BaseURL
	}
	if other.Timeout != 0 {
		result.Timeout = other.Timeout
	}
	if other.Retries != 0 {
		result.Retries = other.Retries
	}
	if other.RateLimit != 0 {
		result.RateLimit = other.RateLimit
	}
	if other.Fixtures != "" {
		result.Fixtures = other.Fixtures
	}
	if other.OutputDir != "" {
		result.OutputDir = other.OutputDir
	}

	// Boolean flags - only override if explicitly set in other config
	if other.Bail != nil {
		result.Bail = other.Bail
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}
	if other.Insecure != nil {
		result.Insecure = other.Insecure
	}

	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(c.Headers)+len(other.Headers))
		for k, v := range c.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	if len(other.Reporters) > 0 {
		result.Reporters = other.Reporters
	}

	return &result
}

// SaveConfig writes the configuration as JSON, or YAML when path ends in
// .yaml or .yml.
func (c *Config) SaveConfig(path string) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
