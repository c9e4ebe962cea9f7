package config

import (
	"fmt"
	"net"
	"slices"
	"strings"
	"time"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "text"}
)

// LogConfig selects the slog level and handler. Empty values mean info and json.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func (c *LogConfig) String() string {
	return section("Log",
		"level", c.Level,
		"format", c.Format,
	)
}

func (c *LogConfig) Validate() error {
	if c.Level != "" && !slices.Contains(logLevels, strings.ToLower(c.Level)) {
		return fmt.Errorf("log level %q is not one of %v", c.Level, logLevels)
	}
	if c.Format != "" && !slices.Contains(logFormats, strings.ToLower(c.Format)) {
		return fmt.Errorf("log format %q is not one of %v", c.Format, logFormats)
	}
	return nil
}

// PProfConfig enables the net/http/pprof endpoints on a separate listener.
type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func (c *PProfConfig) String() string {
	return section("PProf",
		"enabled", c.Enabled,
		"addr", c.Addr,
	)
}

func (c *PProfConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("pprof address %q: %w", c.Addr, err)
	}
	return nil
}

// ShutdownConfig bounds how long each server may take to drain on exit.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) String() string {
	return section("Shutdown", "timeout", c.Timeout)
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("shutdown timeout must be greater than 0, got %s", c.Timeout)
	}
	return nil
}

// section renders a titled block of key/value pairs for the startup log.
func section(title string, kv ...any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n--- %s ---\n", title)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, "  %v: %v\n", kv[i], kv[i+1])
	}
	return b.String()
}
