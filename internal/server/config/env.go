package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig is an intermediate DTO for environment parsing. Only variables
// actually set in the environment are applied over the defaults.
type envConfig struct {
	DatabaseDSN   string        `env:"DATABASE_DSN"`
	DiscordToken  string        `env:"DISCORD_TOKEN"`
	CommandPrefix string        `env:"COMMAND_PREFIX"`
	SessionTTL    time.Duration `env:"SESSION_DURATION"`
}

func parseEnv(config *Config) error {
	c := envConfig{}
	if err := env.Parse(&c); err != nil {
		return err
	}

	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.DiscordToken != "" {
		config.DiscordToken = c.DiscordToken
	}
	if c.CommandPrefix != "" {
		config.CommandPrefix = c.CommandPrefix
	}
	if c.SessionTTL != 0 {
		config.SessionTTL = c.SessionTTL
	}

	return nil
}
