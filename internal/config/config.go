package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	BackendPostgres = "postgres"
	BackendLocal    = "local"

	RevenueLedger  = "ledger"
	RevenueDerived = "derived"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Roomboard"`
		Port     int    `envconfig:"PORT" default:"8080"`
		Timezone string `envconfig:"TIMEZONE" default:"Local"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"roomboard"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Store struct {
		Backend   string `envconfig:"STORE_BACKEND" default:"postgres"`
		LocalPath string `envconfig:"LOCAL_STORE_PATH" default:"roomboard.db"`
	}

	Revenue struct {
		Source string `envconfig:"REVENUE_SOURCE" default:"ledger"`
	}

	Feed struct {
		Retry time.Duration `envconfig:"FEED_RETRY" default:"5s"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Location resolves the configured time zone used to date payments and revenue.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.App.Timezone, err)
	}

	return loc, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendPostgres, BackendLocal:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	switch c.Revenue.Source {
	case RevenueLedger, RevenueDerived:
	default:
		return fmt.Errorf("unknown REVENUE_SOURCE %q", c.Revenue.Source)
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
