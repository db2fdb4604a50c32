// Package config loads the orchestrator's YAML configuration with sane
// defaults for every field, so a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = ".dossier/config.yaml"

// Duration wraps time.Duration so YAML values like "30s" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// Endpoint configures one HTTP-backed lookup agent. Agents with no endpoint
// configured stay unregistered and their tasks settle as failed.
type Endpoint struct {
	BaseURL    string `yaml:"baseUrl"`
	Path       string `yaml:"path"`
	QueryParam string `yaml:"queryParam"`
	APIKey     string `yaml:"apiKey"`
}

// Browser configures the chromedp-backed web-search agent.
type Browser struct {
	Enabled    bool   `yaml:"enabled"`
	SearchURL  string `yaml:"searchUrl"`
	MaxResults int    `yaml:"maxResults"`
	Headless   bool   `yaml:"headless"`
}

// Config is the full orchestrator configuration.
type Config struct {
	DBPath      string              `yaml:"dbPath"`
	LogLevel    string              `yaml:"logLevel"`
	LogFormat   string              `yaml:"logFormat"`
	Parallelism int                 `yaml:"parallelism"`
	TaskTimeout Duration            `yaml:"taskTimeout"`
	TopQueries  int                 `yaml:"topQueries"`
	Browser     Browser             `yaml:"browser"`
	Endpoints   map[string]Endpoint `yaml:"endpoints"` // keyed by agent type name
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath:      ".dossier/dossier.db",
		LogLevel:    "info",
		LogFormat:   "text",
		Parallelism: 4,
		TaskTimeout: Duration(30 * time.Second),
		TopQueries:  4,
		Browser: Browser{
			SearchURL:  "https://html.duckduckgo.com/html/?q=%s",
			MaxResults: 10,
			Headless:   true,
		},
		Endpoints: map[string]Endpoint{},
	}
}

// Load reads path (DefaultPath when empty), overlays it on the defaults, and
// applies environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays DOSSIER_* environment variables on the loaded values.
func (c *Config) applyEnv() {
	if v := os.Getenv("DOSSIER_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("DOSSIER_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("DOSSIER_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("DOSSIER_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Parallelism = n
		}
	}
	if v := os.Getenv("DOSSIER_TASK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.TaskTimeout = Duration(d)
		}
	}
}

func (c *Config) validate() error {
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism)
	}
	if c.TaskTimeout <= 0 {
		return fmt.Errorf("taskTimeout must be positive, got %s", c.TaskTimeout)
	}
	if c.TopQueries < 1 {
		return fmt.Errorf("topQueries must be at least 1, got %d", c.TopQueries)
	}
	// The browser invoker substitutes the escaped query into the template.
	if c.Browser.SearchURL != "" && !strings.Contains(c.Browser.SearchURL, "%s") {
		return fmt.Errorf("browser.searchUrl must contain a %%s query placeholder, got %q", c.Browser.SearchURL)
	}
	return nil
}
