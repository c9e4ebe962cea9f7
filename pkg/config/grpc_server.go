package config

import (
	"fmt"
	"strconv"
)

// GrpcServerConfig configures the listener serving grpc.health.v1.
type GrpcServerConfig struct {
	Port              string `koanf:"port"`
	ReflectionEnabled bool   `koanf:"reflection"`
}

func (c *GrpcServerConfig) String() string {
	return section("gRPC Server",
		"port", c.Port,
		"reflection", c.ReflectionEnabled,
	)
}

func (c *GrpcServerConfig) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid gRPC port: %q", c.Port)
	}
	return nil
}
