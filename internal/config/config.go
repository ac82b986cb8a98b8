// Package config loads the mathspan YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/mathspan/internal/foundation/errors"
	"git.home.luguber.info/inful/mathspan/internal/render"
	"git.home.luguber.info/inful/mathspan/internal/retry"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "mathspan.yaml"

// Config is the root configuration document.
type Config struct {
	Math     MathConfig     `yaml:"math"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Watch    WatchConfig    `yaml:"watch"`
	History  HistoryConfig  `yaml:"history"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// MathConfig configures span rendering.
type MathConfig struct {
	GlobalStyle  string `yaml:"global_style"`
	ThrowOnError bool   `yaml:"throw_on_error"`
	// Options are forwarded to the expression renderer untouched.
	Options map[string]any `yaml:"options,omitempty"`
}

// MarkdownConfig configures the Markdown dialect.
type MarkdownConfig struct {
	GFM bool `yaml:"gfm"`
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"`     // Remove the output directory before a full conversion
	Extension string `yaml:"extension"` // File extension of generated pages
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint served while watching.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// WatchConfig tunes the file watcher.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	// Rescan forces a full conversion at this interval. Zero disables it.
	Rescan time.Duration `yaml:"rescan"`
}

// HistoryConfig locates the conversion run journal. An empty path disables it.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// NotifyConfig configures NATS event publication. An empty URL disables it.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
	// MaxRetries bounds publish retries; Backoff is fixed, linear or exponential.
	MaxRetries int    `yaml:"max_retries"`
	Backoff    string `yaml:"backoff,omitempty"`
}

// RetryPolicy returns the publish retry policy.
func (n NotifyConfig) RetryPolicy() retry.Policy {
	mode, _ := retry.ParseMode(n.Backoff)
	return retry.NewPolicy(mode, 0, 0, n.MaxRetries)
}

// RenderOptions returns the render configuration for the math extension.
func (c *Config) RenderOptions() render.Options {
	return render.Options{
		GlobalStyle:  c.Math.GlobalStyle,
		ThrowOnError: c.Math.ThrowOnError,
		Passthrough:  c.Math.Options,
	}
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	_ = NewDefaultApplier().ApplyDefaults(cfg)
	return cfg
}

// Load reads the configuration file at configPath after loading .env files.
// ${VAR} references in the file are expanded from the environment.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ferrors.NotFoundError("configuration file not found").
			WithContext("path", configPath).
			Build()
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}

	return Parse([]byte(os.ExpandEnv(string(data))))
}

// Parse decodes YAML configuration, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}
	if err := NewDefaultApplier().ApplyDefaults(&cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to apply defaults").Fatal().Build()
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ValidationError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).Build()
	}

	example := Default()
	example.Math.GlobalStyle = "normal"
	example.Math.Options = map[string]any{"class": "tex"}
	example.Markdown.GFM = true
	example.History.Path = ".mathspan/history.db"

	data, err := yaml.Marshal(example)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal config").Build()
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
