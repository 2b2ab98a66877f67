package jwt

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/vrischmann/envconfig"
)

type Config struct {
	Issuer   string
	Audience string
	Secret   string
	// AccessTTL bounds guest access tokens; hosts get a shorter fixed lifetime.
	AccessTTL time.Duration `envconfig:"optional"`
}

func NewConfig() (*Config, error) {
	c := &Config{}

	_ = godotenv.Load()

	if err := envconfig.InitWithPrefix(c, "JWT"); err != nil {
		return nil, errors.Wrap(err, "init config")
	}
	if c.AccessTTL <= 0 {
		c.AccessTTL = 6 * time.Hour
	}

	return c, nil
}
