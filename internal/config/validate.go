package config

import (
	"fmt"
	"net/url"
	"strings"
)

const maxPageSize = 100 // listNotifications limit imposed by the AppView

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := validateHTTPURL(c.Bluesky.ServiceURL); err != nil {
		return fmt.Errorf("bluesky.service_url: %w", err)
	}
	if strings.TrimSpace(c.Bluesky.Identifier) == "" {
		return fmt.Errorf("bluesky.identifier must not be blank")
	}

	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be > 0 (got %v)", c.Poll.Interval)
	}
	if c.Poll.MaxPages <= 0 {
		return fmt.Errorf("poll.max_pages must be > 0 (got %d)", c.Poll.MaxPages)
	}
	if c.Poll.PageSize <= 0 || c.Poll.PageSize > maxPageSize {
		return fmt.Errorf("poll.page_size must be in 1..%d (got %d)", maxPageSize, c.Poll.PageSize)
	}

	if c.Jetstream.Enabled {
		u, err := url.Parse(c.Jetstream.URL)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
			return fmt.Errorf("jetstream.url must be a ws:// or wss:// URL (got %q)", c.Jetstream.URL)
		}
	}

	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be an http(s) URL (got %q)", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}
