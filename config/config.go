/*
Package config loads application configuration for the finance ledger.

Sources, highest precedence first:
 1. environment variables with the FINLEDGER_ prefix
    (FINLEDGER_DATABASE_PATH, FINLEDGER_LOG_LEVEL, FINLEDGER_USER_ID)
 2. a YAML config file (./finledger.yaml by default)
 3. built-in defaults

A missing config file is not an error; defaults and environment
variables are enough to run.
*/
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type UserConfig struct {
	ID string `mapstructure:"id"`
}

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	User     UserConfig     `mapstructure:"user"`
}

// Load reads configuration from path (empty means ./finledger.yaml,
// optional) plus FINLEDGER_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("database.path", "finledger.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("user.id", "")

	if path == "" {
		v.SetConfigName("finledger")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. FINLEDGER_DATABASE_PATH=/var/lib/ledger.db
	v.SetEnvPrefix("FINLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// only the default path is optional; an explicit path must exist
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
