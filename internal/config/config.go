package config

import (
	"time"

	"github.com/Heidric/guest-self-service/pkg/log"
	"github.com/Heidric/guest-self-service/pkg/pgx"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/vrischmann/envconfig"
)

type Config struct {
	Logger        *log.Config
	DB            *pgx.Config
	ServerAddress string

	// DefaultPhoneRegion is used for guest phone numbers typed without a country prefix.
	DefaultPhoneRegion     string        `envconfig:"optional"`
	DoorCodeTTL            time.Duration `envconfig:"optional"`
	SessionCleanupInterval time.Duration `envconfig:"optional"`
}

func NewConfig() (*Config, error) {
	c := &Config{
		Logger: &log.Config{},
		DB:     &pgx.Config{},
	}

	_ = godotenv.Load()

	if err := envconfig.Init(c); err != nil {
		return nil, errors.Wrap(err, "init config")
	}

	c.SetDefault()

	return c, nil
}

func (c *Config) SetDefault() *Config {
	c.DB.SetDefault()
	c.Logger.SetDefault()

	if c.DefaultPhoneRegion == "" {
		c.DefaultPhoneRegion = "ES"
	}
	if c.DoorCodeTTL <= 0 {
		c.DoorCodeTTL = 24 * time.Hour
	}
	if c.SessionCleanupInterval <= 0 {
		c.SessionCleanupInterval = time.Hour
	}
	return c
}
