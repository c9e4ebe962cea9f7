package config

import (
	"errors"
	"time"
)

// ResilienceConfig guards outbound calls to the classifier.
type ResilienceConfig struct {
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

// CircuitBreakerConfig trips the breaker after ConsecutiveFailures failures in a row, or when
// ErrorRatePercent of at least MinRequests calls fail within one Interval.
// An open breaker lets HalfOpenRequests probes through after OpenTimeout.
type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	ErrorRatePercent    int           `koanf:"errorratepercent"`
	MinRequests         uint32        `koanf:"minrequests"`
	Interval            time.Duration `koanf:"interval"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
	HalfOpenRequests    uint32        `koanf:"halfopenrequests"`
}

func (c *ResilienceConfig) String() string {
	cb := c.CircuitBreaker
	return section("Circuit Breaker",
		"consecutivefailures", cb.ConsecutiveFailures,
		"errorratepercent", cb.ErrorRatePercent,
		"minrequests", cb.MinRequests,
		"interval", cb.Interval,
		"opentimeout", cb.OpenTimeout,
		"halfopenrequests", cb.HalfOpenRequests,
	)
}

func (c *ResilienceConfig) Validate() error {
	cb := c.CircuitBreaker
	switch {
	case cb.ConsecutiveFailures == 0:
		return errors.New("circuitbreaker.consecutivefailures must be greater than 0")
	case cb.ErrorRatePercent < 0 || cb.ErrorRatePercent > 100:
		return errors.New("circuitbreaker.errorratepercent must be between 0 and 100")
	case cb.Interval < 0:
		return errors.New("circuitbreaker.interval must not be negative")
	case cb.OpenTimeout <= 0:
		return errors.New("circuitbreaker.opentimeout must be greater than 0")
	}
	return nil
}
