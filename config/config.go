package config

import (
	"fmt"
	"time"
)

// Server dialects the client can speak.
const (
	DialectREST     = "rest"
	DialectSubsonic = "subsonic"
)

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Client ClientConfig `mapstructure:"client"`
	Store  StoreConfig  `mapstructure:"store"`
}

// ServerConfig contains media server connection settings
type ServerConfig struct {
	// URL fixes the server address at deploy time. Leave empty to use the
	// address from a remembered login instead; a fixed address is never
	// persisted.
	URL     string `mapstructure:"url"`
	Dialect string `mapstructure:"dialect"`
}

// ClientConfig contains API client settings
type ClientConfig struct {
	ID          string `mapstructure:"id"`
	APIVersion  string `mapstructure:"api_version"`
	HTTPTimeout int    `mapstructure:"http_timeout"` // in seconds
	PageSize    int    `mapstructure:"page_size"`
}

// StoreConfig contains session persistence settings
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// GetHTTPTimeout returns the HTTP timeout as a time.Duration
func (c *ClientConfig) GetHTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

// Validate checks if all required configuration values are set
func (c *Config) Validate() error {
	switch c.Server.Dialect {
	case DialectREST, DialectSubsonic:
		return nil
	default:
		return fmt.Errorf("unknown server dialect %q", c.Server.Dialect)
	}
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Dialect: DialectSubsonic,
		},
		Client: ClientConfig{
			ID:          "melodex",
			APIVersion:  "1.16.1",
			HTTPTimeout: 30,
			PageSize:    20,
		},
		Store: StoreConfig{
			Path: "session.toml",
		},
	}
}
