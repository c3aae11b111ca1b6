// Package config provides configuration types and defaults for genelink.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"genelink/internal/log"
)

// Config holds all configuration options for genelink.
type Config struct {
	// Manifest is the path to the dataset manifest (manifest.yaml).
	Manifest string `mapstructure:"manifest"`

	// Dataset names the manifest entry to open by default.
	Dataset string `mapstructure:"dataset"`

	// AutoReload re-loads the dataset when its file changes on disk.
	AutoReload bool `mapstructure:"auto_reload"`

	UI      UIConfig      `mapstructure:"ui"`
	Server  ServerConfig  `mapstructure:"server"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// UIConfig holds terminal interface options.
type UIConfig struct {
	// ShowCounts shows sample/mutation counts in pane headers.
	ShowCounts bool `mapstructure:"show_counts"`

	// ShowStatusBar shows the status bar at the bottom.
	ShowStatusBar bool `mapstructure:"show_status_bar"`

	// MarkdownStyle is the glamour render style: "dark" (default) or "light".
	MarkdownStyle string `mapstructure:"markdown_style"`
}

// ServerConfig holds the dataset server options.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8480".
	Addr string `mapstructure:"addr"`

	// DBPath is the SQLite database file.
	DBPath string `mapstructure:"db_path"`

	// JWTSecret signs login tokens. Required to run the server.
	JWTSecret string `mapstructure:"jwt_secret"`

	// TokenTTLMinutes bounds token lifetime.
	TokenTTLMinutes int `mapstructure:"token_ttl_minutes"`
}

// TracingConfig holds trace export configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active. Default: false.
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the backend: "none", "file", "stdout", "otlp".
	// Default: "file".
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for the "file" exporter.
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for the "otlp" exporter.
	// Default: "localhost:4317".
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling, 0.0 to 1.0. Default: 1.0.
	SampleRate float64 `mapstructure:"sample_rate"`
}

// DefaultTracesFilePath returns ~/.config/genelink/traces/traces.jsonl, or
// empty when the home dir is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "genelink", "traces", "traces.jsonl")
}

// DefaultDBPath returns ~/.local/share/genelink/genelink.db, or empty when
// the home dir is unavailable.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "genelink", "genelink.db")
}

// Validate checks the whole configuration. Empty values fall back to
// defaults and are not errors.
func (c Config) Validate() error {
	if err := ValidateUI(c.UI); err != nil {
		return err
	}
	if err := ValidateServer(c.Server); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ValidateUI checks UI options.
func ValidateUI(ui UIConfig) error {
	switch ui.MarkdownStyle {
	case "", "dark", "light":
		return nil
	default:
		return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", ui.MarkdownStyle)
	}
}

// ValidateServer checks server options.
func ValidateServer(s ServerConfig) error {
	if s.TokenTTLMinutes < 0 {
		return fmt.Errorf("server.token_ttl_minutes must not be negative, got %d", s.TokenTTLMinutes)
	}
	return nil
}

// ValidateTracing checks tracing options.
func ValidateTracing(t TracingConfig) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}

	switch t.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
	}

	if t.Enabled {
		if t.Exporter == "file" && t.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if t.Exporter == "otlp" && t.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		AutoReload: true,
		UI: UIConfig{
			ShowCounts:    true,
			ShowStatusBar: true,
			MarkdownStyle: "dark",
		},
		Server: ServerConfig{
			Addr:            ":8480",
			DBPath:          DefaultDBPath(),
			TokenTTLMinutes: 60,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // derived from the config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with
// comments.
func DefaultConfigTemplate() string {
	return `# Genelink Configuration

# Dataset manifest listing the cohorts this installation knows about
# manifest: ~/.config/genelink/manifest.yaml

# Manifest entry to open by default
# dataset: tcga-lung

# Re-load the dataset when its file changes on disk
auto_reload: true

# UI settings
ui:
  show_counts: true       # Show sample/mutation counts in pane headers
  show_status_bar: true   # Show status bar at bottom
  # markdown_style: dark  # Markdown rendering style: "dark" (default) or "light"

# Dataset server settings (used by 'genelink serve')
server:
  addr: ":8480"
  # db_path: ~/.local/share/genelink/genelink.db
  # jwt_secret: change-me          # Required; tokens are signed with this
  token_ttl_minutes: 60

# Trace export configuration
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/genelink/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
