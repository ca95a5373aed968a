package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds the runtime settings of the tracker service.
type Config struct {
	AppPort        string
	APIPrefix      string
	DBDriver       string
	DatabaseDSN    string
	RabbitMQURL    string
	EventsExchange string
	EventsQueue    string
	BcryptCost     int
	AllowBodyToken bool
	StatsCacheTTL  time.Duration
	BodyLimit      int
}

// Drivers accepted in DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// SetDefaults registers every key with its default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "tracker.db")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("EVENTS_EXCHANGE", "tracker.events")
	v.SetDefault("EVENTS_QUEUE", "tracker.audit")
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("AUTH_ALLOW_BODY_TOKEN", false)
	v.SetDefault("STATS_CACHE_TTL", "0s")
	v.SetDefault("BODY_LIMIT", 1024*1024)
}

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment wins over the file.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:        v.GetString("APP_PORT"),
		APIPrefix:      v.GetString("API_PREFIX"),
		DBDriver:       strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		EventsExchange: v.GetString("EVENTS_EXCHANGE"),
		EventsQueue:    v.GetString("EVENTS_QUEUE"),
		BcryptCost:     v.GetInt("BCRYPT_COST"),
		AllowBodyToken: v.GetBool("AUTH_ALLOW_BODY_TOKEN"),
		StatsCacheTTL:  v.GetDuration("STATS_CACHE_TTL"),
		BodyLimit:      v.GetInt("BODY_LIMIT"),
	}

	switch cfg.DBDriver {
	case DriverSQLite, DriverPostgres, DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.BcryptCost < bcrypt.MinCost {
		cfg.BcryptCost = bcrypt.MinCost
	}
	if cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = bcrypt.MaxCost
	}
	if cfg.StatsCacheTTL < 0 {
		cfg.StatsCacheTTL = 0
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = 1024 * 1024
	}
	return cfg, nil
}

// EventsEnabled reports whether a broker URL was configured.
func (c *Config) EventsEnabled() bool {
	return c.RabbitMQURL != ""
}
