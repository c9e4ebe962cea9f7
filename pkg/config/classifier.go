package config

import (
	"fmt"
	"net/url"
	"time"
)

// ClassifierConfig points at the external sentiment classification service.
type ClassifierConfig struct {
	URL            string        `koanf:"url"`
	ConnectTimeout time.Duration `koanf:"connecttimeout"`
	ReadTimeout    time.Duration `koanf:"readtimeout"`
	HealthCacheTTL time.Duration `koanf:"healthcachettl"`
}

func (c *ClassifierConfig) String() string {
	return section("Classifier",
		"url", c.URL,
		"connecttimeout", c.ConnectTimeout,
		"readtimeout", c.ReadTimeout,
		"healthcachettl", c.HealthCacheTTL,
	)
}

func (c *ClassifierConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("classifier URL is not configured")
	}
	if u, err := url.Parse(c.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("classifier URL is invalid: %s", c.URL)
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("classifier connect timeout must be greater than 0")
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("classifier read timeout must be greater than 0")
	}
	if c.HealthCacheTTL < 0 {
		return fmt.Errorf("classifier health cache ttl must not be negative")
	}
	return nil
}
