// Package config loads named database connections from quarry.yaml, .env
// overlays and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the filesystem used for existence checks; tests swap it for a
// memory-backed one.
var AppFs = afero.NewOsFs()

// Connection describes one named database connection.
type Connection struct {
	Dialect string `mapstructure:"dialect"`
	DSN     string `mapstructure:"dsn"`
}

// Config holds the connection registry configuration.
type Config struct {
	Default     string                `mapstructure:"default"`
	Connections map[string]Connection `mapstructure:"connections"`
	Debug       bool                  `mapstructure:"debug"`
}

// Load reads configuration. Without an explicit file it searches the
// working directory, the home directory and ~/.config/quarry for
// quarry.yaml, loads .env / .env.local overlays, and honors QUARRY_*
// environment variables. DATABASE_URL, when set, registers a "default"
// postgres connection if none is configured.
func Load(file ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if len(file) > 0 && file[0] != "" {
		v.SetConfigFile(file[0])
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName("quarry")
		v.AddConfigPath(".")
		v.AddConfigPath(home)
		v.AddConfigPath(filepath.Join(home, ".config", "quarry"))
	}

	v.SetEnvPrefix("QUARRY")
	v.AutomaticEnv()
	v.SetDefault("default", "default")
	v.SetDefault("debug", false)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; a malformed one is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && len(file) > 0 {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if _, err := AppFs.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Connections == nil {
		cfg.Connections = make(map[string]Connection)
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		if _, ok := cfg.Connections[cfg.Default]; !ok {
			cfg.Connections[cfg.Default] = Connection{Dialect: "postgres", DSN: url}
		}
	}

	return cfg, nil
}

// Validate checks that the default connection exists and every connection
// names a dialect.
func (c *Config) Validate() error {
	if len(c.Connections) == 0 {
		return fmt.Errorf("no connections configured")
	}
	if _, ok := c.Connections[c.Default]; !ok {
		return fmt.Errorf("default connection %q is not configured", c.Default)
	}
	for name, conn := range c.Connections {
		if conn.Dialect == "" {
			return fmt.Errorf("connection %q has no dialect", name)
		}
	}
	return nil
}
