package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/yahsan2/backlog-import/pkg/backlog"
	"github.com/yahsan2/backlog-import/pkg/template"
)

const ConfigFileName = ".backlog-import.yml"

// Environment variables that override the config file
const (
	EnvAPIKey  = "BACKLOG_API_KEY"
	EnvSpace   = "BACKLOG_SPACE"
	EnvProject = "BACKLOG_PROJECT"
)

const filePerms = 0600

// Config represents the import configuration
type Config struct {
	Space    SpaceConfig    `yaml:"space"`
	Project  ProjectConfig  `yaml:"project"`
	Template TemplateConfig `yaml:"template"`
	Defaults DefaultsConfig `yaml:"defaults"`

	path string
}

// SpaceConfig represents the Backlog space settings
type SpaceConfig struct {
	Domain string `yaml:"domain"`
	APIKey string `yaml:"api_key,omitempty"`
}

// ProjectConfig represents project settings
type ProjectConfig struct {
	Key string `yaml:"key"`
}

// TemplateConfig represents template parsing settings
type TemplateConfig struct {
	ParentToken   string `yaml:"parent_token"`
	ListSeparator string `yaml:"list_separator"`
}

// DefaultsConfig represents default values for rows
type DefaultsConfig struct {
	Priority string `yaml:"priority,omitempty"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Template: TemplateConfig{
			ParentToken:   template.ParentShorthand,
			ListSeparator: template.DefaultListSeparator,
		},
	}
}

// Load finds the configuration file in the current or parent directories and applies
// environment overrides. A missing file yields the defaults plus the environment.
func Load() (*Config, error) {
	loadDotEnv()

	configPath := findConfigFile()
	if configPath == "" {
		cfg := DefaultConfig()
		cfg.applyEnv()
		return cfg, nil
	}
	return LoadFrom(configPath)
}

// LoadFrom loads configuration from a specific file and applies environment overrides
func LoadFrom(path string) (*Config, error) {
	loadDotEnv()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.path = path
	cfg.applyDefaults()
	cfg.applyEnv()

	return cfg, nil
}

// Save writes the configuration atomically
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// atomic.WriteFile keeps the mode of an existing file only
	if err := os.Chmod(path, filePerms); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	c.path = path
	return nil
}

// Path returns the file the configuration was loaded from, if any
func (c *Config) Path() string {
	return c.path
}

// Validate checks that the space, API key and project are set
func (c *Config) Validate() error {
	if c.Space.Domain == "" {
		return backlog.NewConfigurationError(
			fmt.Sprintf("space domain is not set (space.domain or %s)", EnvSpace), nil)
	}
	if strings.Contains(c.Space.Domain, "/") {
		return backlog.NewConfigurationError(
			fmt.Sprintf("space domain %q must be a host name such as example.backlog.com", c.Space.Domain), nil)
	}
	if c.Space.APIKey == "" {
		return backlog.NewConfigurationError(
			fmt.Sprintf("API key is not set (%s or space.api_key)", EnvAPIKey), nil)
	}
	if c.Project.Key == "" {
		return backlog.NewConfigurationError(
			fmt.Sprintf("project key is not set (project.key, %s or --project)", EnvProject), nil)
	}
	return nil
}

// ClientOptions returns the Backlog client settings for this configuration
func (c *Config) ClientOptions() backlog.ClientOptions {
	return backlog.ClientOptions{
		Space:  c.Space.Domain,
		APIKey: c.Space.APIKey,
	}
}

// ReaderOptions returns the template reader settings for this configuration
func (c *Config) ReaderOptions() []template.Option {
	return []template.Option{template.WithListSeparator(c.Template.ListSeparator)}
}

// loadDotEnv reads .env from the working directory. Variables already set win.
func loadDotEnv() {
	// .env is optional
	_ = godotenv.Load()
}

func (c *Config) applyDefaults() {
	if c.Template.ParentToken == "" {
		c.Template.ParentToken = template.ParentShorthand
	}
	if c.Template.ListSeparator == "" {
		c.Template.ListSeparator = template.DefaultListSeparator
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvSpace); v != "" {
		c.Space.Domain = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Space.APIKey = v
	}
	if v := os.Getenv(EnvProject); v != "" {
		c.Project.Key = v
	}
	c.Space.Domain = normalizeDomain(c.Space.Domain)
}

func normalizeDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	return strings.TrimRight(domain, "/")
}

// findConfigFile searches for config file in current and parent directories
func findConfigFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// Exists checks if configuration file exists
func Exists() bool {
	return findConfigFile() != ""
}

// FindConfigPath returns the path to the configuration file
func FindConfigPath() string {
	return findConfigFile()
}
