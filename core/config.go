package core

import (
	"fmt"
	"strings"
	"time"
)

type SessionConfig struct {
	TTL             time.Duration `koanf:"ttl" mapstructure:"ttl"`
	CleanupInterval time.Duration `koanf:"cleanup_interval" mapstructure:"cleanup_interval"`
}

type Config struct {
	ServiceName string        `koanf:"service_name" mapstructure:"service_name"`
	Session     SessionConfig `koanf:"session" mapstructure:"session"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "auth",
		Session: SessionConfig{
			TTL:             7 * 24 * time.Hour,
			CleanupInterval: time.Hour,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Session.TTL < 0 {
		return fmt.Errorf("core: session ttl must not be negative")
	}
	if c.Session.CleanupInterval < 0 {
		return fmt.Errorf("core: session cleanup_interval must not be negative")
	}
	return nil
}
