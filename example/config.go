package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is read from party.yaml and PARTY_* environment variables.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Barn   BarnConfig   `mapstructure:"barn"`
}

type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	Endpoint    string `mapstructure:"endpoint"`
	Playground  bool   `mapstructure:"playground"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type BarnConfig struct {
	Color string `mapstructure:"color"`
}

// Load reads the configuration. An empty path searches the working directory
// for party.yaml; a missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.endpoint", "/graphql")
	v.SetDefault("server.playground", true)
	v.SetDefault("server.metrics_path", "/metrics")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("barn.color", "brown")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("party")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PARTY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
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

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if !strings.HasPrefix(c.Server.Endpoint, "/") {
		return fmt.Errorf("server.endpoint must start with '/', got: %s", c.Server.Endpoint)
	}
	if !strings.HasPrefix(c.Server.MetricsPath, "/") {
		return fmt.Errorf("server.metrics_path must start with '/', got: %s", c.Server.MetricsPath)
	}
	if c.Server.MetricsPath == c.Server.Endpoint {
		return fmt.Errorf("server.metrics_path and server.endpoint must differ")
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// NewLogger builds a production or development zap logger at the configured level.
func (c LogConfig) NewLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}
