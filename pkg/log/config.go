package log

import (
	"strings"

	"github.com/rs/zerolog"
)

type Config struct {
	Level   string `envconfig:"optional"`
	Pretty  bool   `envconfig:"optional"`
	Service string `envconfig:"optional"`
}

func (c *Config) SetDefault() *Config {
	if c.Level == "" {
		c.Level = zerolog.InfoLevel.String()
	}
	if c.Service == "" {
		c.Service = "guest-self-service"
	}
	return c
}

// ParseLevel falls back to info for unknown values.
func (c *Config) ParseLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.Level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
