package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the emberctl configuration.
type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Setup  SetupConfig  `mapstructure:"setup"`
	Log    LogConfig    `mapstructure:"log"`
	Output OutputConfig `mapstructure:"output"`
}

// APIConfig holds panel backend connection settings.
type APIConfig struct {
	// BaseURL is the panel backend base URL.
	BaseURL string `mapstructure:"base_url"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `mapstructure:"timeout"`

	// UserAgent overrides the request User-Agent header.
	UserAgent string `mapstructure:"user_agent"`
}

// SetupConfig holds wizard behavior settings.
type SetupConfig struct {
	// StateDir is where the wizard session files live.
	// If empty, defaults to ~/.local/state/emberctl.
	StateDir string `mapstructure:"state_dir"`

	// CallbackAddr is the loopback address for the OAuth redirect
	// listener. Empty means an ephemeral port on 127.0.0.1.
	CallbackAddr string `mapstructure:"callback_addr"`

	// DashboardURL is where the wizard points the operator after
	// completion. If empty, the web domain entered during setup is used.
	DashboardURL string `mapstructure:"dashboard_url"`

	// RedirectDelay is how long the completion message is shown before
	// the dashboard redirect fires.
	RedirectDelay time.Duration `mapstructure:"redirect_delay"`

	// NoBrowser disables opening the authorization URL in a browser.
	NoBrowser bool `mapstructure:"no_browser"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level           string   `mapstructure:"level"`              // debug, info, warn, error
	Format          string   `mapstructure:"format"`             // text, json, pretty
	Output          string   `mapstructure:"output"`             // stdout, stderr, or file path
	FilePath        string   `mapstructure:"file_path"`          // path to log file (in addition to output)
	MaxSizeMB       int      `mapstructure:"max_size_mb"`        // max size in MB before rotation
	MaxBackups      int      `mapstructure:"max_backups"`        // max number of old log files to keep
	MaxAgeDays      int      `mapstructure:"max_age_days"`       // max days to retain old log files
	EnableCaller    bool     `mapstructure:"enable_caller"`      // include source file/line in logs
	NoColor         bool     `mapstructure:"no_color"`           // disable colored output (pretty format only)
	AuditPath       string   `mapstructure:"audit_path"`         // path to audit log file
	AuditMaxAgeDays int      `mapstructure:"audit_max_age_days"` // max days to retain audit logs
	RedactFields    []string `mapstructure:"redact_fields"`      // field names to redact from logs
}

// OutputConfig holds output formatting options.
type OutputConfig struct {
	Format string `mapstructure:"format"` // text, json
	Color  bool   `mapstructure:"color"`
}

// DefaultConfig returns the default emberctl configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Timeout:   30 * time.Second,
			UserAgent: "emberctl",
		},
		Setup: SetupConfig{
			RedirectDelay: 3 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "pretty",
			Output: "stderr",
			// The session token and OAuth code never belong in logs.
			RedactFields: []string{"session_token", "token", "code"},
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.API.BaseURL != "" {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("api.base_url must use http or https, got %q", u.Scheme)
		}
	}

	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}

	if c.Setup.RedirectDelay < 0 {
		return fmt.Errorf("setup.redirect_delay must not be negative")
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}

	switch c.Log.Format {
	case "", "text", "json", "pretty":
	default:
		return fmt.Errorf("log.format must be one of text, json, pretty; got %q", c.Log.Format)
	}

	switch c.Output.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("output.format must be text or json; got %q", c.Output.Format)
	}

	return nil
}
