package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Links    LinksConfig    `mapstructure:"links"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// CatalogConfig points at the components database file
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// LinksConfig holds link generation settings
type LinksConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	SearchPath  string `mapstructure:"search_path"`
	MultiStore  bool   `mapstructure:"multi_store"`
	NamePreview int    `mapstructure:"name_preview"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DatabaseConfig holds the optional link audit database configuration
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// DSN builds the pgx connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// RedisConfig holds the optional run state store connection details
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

// Addr returns host:port for the redis client
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load loads configuration from an optional config.yaml with environment
// variable overrides. Without a config file the defaults are used as is.
func Load(searchPaths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(searchPaths) == 0 {
		searchPaths = []string{"."}
	}
	for _, path := range searchPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if config.Catalog.Path == "" {
		return nil, fmt.Errorf("catalog.path must not be empty")
	}
	if config.Links.NamePreview <= 0 {
		return nil, fmt.Errorf("links.name_preview must be positive, got %d", config.Links.NamePreview)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.path", "data/components.json")

	v.SetDefault("links.base_url", "https://www.amazon.in")
	v.SetDefault("links.search_path", "/s?k=")
	v.SetDefault("links.multi_store", false)
	v.SetDefault("links.name_preview", 50)

	v.SetDefault("log.level", "info")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "pcsense")
	v.SetDefault("database.user", "pcsense_user")
	v.SetDefault("database.password", "pcsense_pass")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
}
