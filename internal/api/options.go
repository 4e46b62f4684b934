package api

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Default client settings.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "emberctl"
)

// Options configures the setup API client.
type Options struct {
	// BaseURL is the panel backend base URL (scheme + host, no trailing path).
	BaseURL string

	// Timeout is the per-request timeout. Zero means DefaultTimeout.
	Timeout time.Duration

	// UserAgent overrides the User-Agent header.
	UserAgent string

	// HTTPClient overrides the underlying HTTP client. Its Timeout is
	// left alone; per-request deadlines still apply via context.
	HTTPClient *http.Client
}

// Validate checks that the options are usable.
func (o *Options) Validate() error {
	if o.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}

	u, err := url.Parse(o.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL must be absolute http(s), got %q", o.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base URL has no host: %q", o.BaseURL)
	}

	if o.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	return nil
}

// withDefaults returns a copy of the options with zero values filled in.
func (o Options) withDefaults() Options {
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	return o
}
