package pgx

import "time"

type Config struct {
	DSN                   string
	Timeout               time.Duration `envconfig:"optional"`
	MaxConnectionLifetime time.Duration `envconfig:"optional"`
	MaxIdleConnections    int           `envconfig:"optional"`
	MaxOpenedConnections  int           `envconfig:"optional"`
	StartWatcher          bool          `envconfig:"optional"`
}

func (c *Config) SetDefault() *Config {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.MaxConnectionLifetime <= 0 {
		c.MaxConnectionLifetime = 30 * time.Minute
	}
	if c.MaxIdleConnections <= 0 {
		c.MaxIdleConnections = 5
	}
	if c.MaxOpenedConnections <= 0 {
		c.MaxOpenedConnections = 20
	}
	return c
}
