package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load reads the configuration from config.toml and returns a Config
// struct. A missing file is fine; defaults apply and the session store
// supplies the server address.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath("$HOME/.config/melodex/")
	v.AddConfigPath(".")

	// Set defaults from DefaultConfig
	defaults := DefaultConfig()
	v.SetDefault("server.dialect", defaults.Server.Dialect)
	v.SetDefault("client.id", defaults.Client.ID)
	v.SetDefault("client.api_version", defaults.Client.APIVersion)
	v.SetDefault("client.http_timeout", defaults.Client.HTTPTimeout)
	v.SetDefault("client.page_size", defaults.Client.PageSize)
	v.SetDefault("store.path", defaults.Store.Path)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
