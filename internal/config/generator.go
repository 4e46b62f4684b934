package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// GenerateConfigIfNotExists writes a default config file on first run.
// Returns the path and whether a new file was created.
func GenerateConfigIfNotExists() (string, bool, error) {
	configDir, err := UserConfigDir()
	if err != nil {
		return "", false, err
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return configPath, false, nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	setViperValues(v, DefaultConfig())
	v.SetConfigType("yaml")

	if err := v.WriteConfigAs(configPath); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}

	return configPath, true, nil
}

// setViperValues populates a viper instance with values from a config
// struct, for serialization.
func setViperValues(v *viper.Viper, c *Config) {
	v.Set("api.base_url", c.API.BaseURL)
	v.Set("api.timeout", c.API.Timeout.String())
	v.Set("api.user_agent", c.API.UserAgent)
	v.Set("setup.state_dir", c.Setup.StateDir)
	v.Set("setup.callback_addr", c.Setup.CallbackAddr)
	v.Set("setup.dashboard_url", c.Setup.DashboardURL)
	v.Set("setup.redirect_delay", c.Setup.RedirectDelay.String())
	v.Set("setup.no_browser", c.Setup.NoBrowser)
	v.Set("log.level", c.Log.Level)
	v.Set("log.format", c.Log.Format)
	v.Set("log.output", c.Log.Output)
	v.Set("log.redact_fields", c.Log.RedactFields)
	v.Set("output.format", c.Output.Format)
	v.Set("output.color", c.Output.Color)
}
