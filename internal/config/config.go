// Package config defines the sentiment backend configuration.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hackathonone/sentiment-backend/pkg/config"
	"github.com/hackathonone/sentiment-backend/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Nats       config.NATSConfig       `koanf:"nats"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
	Classifier config.ClassifierConfig `koanf:"classifier"`
	Sentiment  SentimentConfig         `koanf:"sentiment"`
}

// SentimentConfig tunes the analysis rules.
type SentimentConfig struct {
	CriticalThreshold float64 `koanf:"criticalthreshold"`
	BatchMaxItems     int     `koanf:"batchmaxitems"`
	BatchConcurrency  int     `koanf:"batchconcurrency"`
}

const (
	DefaultBatchMaxItems    = 100
	DefaultBatchConcurrency = 4
)

func (c *SentimentConfig) Validate() error {
	if c.CriticalThreshold <= 0 || c.CriticalThreshold > 1 {
		return fmt.Errorf("sentiment.criticalthreshold must be in (0, 1], got %v", c.CriticalThreshold)
	}
	if c.BatchMaxItems < 0 || c.BatchMaxItems > DefaultBatchMaxItems {
		return fmt.Errorf("sentiment.batchmaxitems must be between 1 and %d", DefaultBatchMaxItems)
	}
	if c.BatchMaxItems == 0 {
		c.BatchMaxItems = DefaultBatchMaxItems
	}
	if c.BatchConcurrency < 0 {
		return errors.New("sentiment.batchconcurrency must not be negative")
	}
	if c.BatchConcurrency == 0 {
		c.BatchConcurrency = DefaultBatchConcurrency
	}
	return nil
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.GRPC.String())
	b.WriteString(c.Database.String())
	b.WriteString(c.Classifier.String())
	b.WriteString(c.Resilience.String())
	b.WriteString(c.Nats.String())

	b.WriteString("\n--- Sentiment ---\n")
	b.WriteString(fmt.Sprintf("  criticalthreshold: %v\n", c.Sentiment.CriticalThreshold))
	b.WriteString(fmt.Sprintf("  batchmaxitems: %d\n", c.Sentiment.BatchMaxItems))
	b.WriteString(fmt.Sprintf("  batchconcurrency: %d\n", c.Sentiment.BatchConcurrency))

	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Shutdown.String())

	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.HTTPServer,
		&c.Database,
		&c.Log,
		&c.PProf,
		&c.Nats,
		&c.Shutdown,
		&c.GRPC,
		&c.Telemetry,
		&c.Resilience,
		&c.Classifier,
		&c.Sentiment,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
