package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Provisioning ProvisioningConfig `mapstructure:"provisioning"`
	Audit        AuditConfig        `mapstructure:"audit"`
}

type ServerConfig struct {
	Address  string `mapstructure:"address"`
	HTTPPort string `mapstructure:"http_port"`
}

type DatabaseConfig struct {
	// Driver: "mysql" | "postgres" | "" (no DB, in-memory store).
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type ProvisioningConfig struct {
	// SharedSecret is the static secret whose SHA-256 digest the devices
	// submit as their token. Fixed at startup, never mutated.
	SharedSecret string `mapstructure:"shared_secret"`
}

type AuditConfig struct {
	// NotifyURLs are shoutrrr URLs that receive ERROR-severity audit entries.
	NotifyURLs []string `mapstructure:"notify_urls"`
}

// Load reads config.yaml (or the explicit path) with env overrides
// (WRTCLOUD_SERVER_HTTP_PORT etc). A missing config file is fine: defaults
// plus env are enough for the in-memory mode.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/wrtcloud")
	}
	v.SetEnvPrefix("wrtcloud")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.http_port", "8000")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	// Empty defaults so env-only overrides reach Unmarshal.
	v.SetDefault("database.driver", "")
	v.SetDefault("database.dsn", "")
	v.SetDefault("provisioning.shared_secret", "")

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
