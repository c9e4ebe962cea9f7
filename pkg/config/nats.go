package config

import (
	"fmt"
	"net/url"
	"time"
)

// NATSConfig configures the outbound event publisher. When disabled, events are dropped.
type NATSConfig struct {
	Enabled bool          `koanf:"enabled"`
	Url     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	// Stream is created on startup when missing and bound to the critical comment subject.
	Stream string `koanf:"stream"`
}

func (c *NATSConfig) String() string {
	return section("NATS",
		"enabled", c.Enabled,
		"url", MaskURL(c.Url),
		"timeout", c.Timeout,
		"stream", c.Stream,
	)
}

func (c *NATSConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	u, err := url.Parse(c.Url)
	if err != nil || (u.Scheme != "nats" && u.Scheme != "tls") || u.Host == "" {
		return fmt.Errorf("invalid NATS URL: %q", MaskURL(c.Url))
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("nats dial timeout must be greater than 0")
	}
	if c.Stream == "" {
		return fmt.Errorf("nats stream is not configured")
	}
	return nil
}
