package config

import (
	"errors"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, read from the environment.
type Config struct {
	DiscordToken         string `env:"DISCORD_TOKEN"`
	HealthCheckChannelID uint64 `env:"HEALTH_CHECK_CHANNEL_ID"`
	LogLevel             string `env:"DISCORDSHIM_LOG_LEVEL" envDefault:"info"`
	LogFormat            string `env:"DISCORDSHIM_LOG_FORMAT" envDefault:"json"`

	// CloudServer reflects whether CLOUD_SERVER is set at all.
	// Its value is ignored.
	CloudServer bool `env:"-"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	_, cfg.CloudServer = os.LookupEnv("CLOUD_SERVER")
	return cfg, nil
}

// Validate checks the fields the bridge cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DiscordToken) == "" {
		return errors.New("DISCORD_TOKEN is not set")
	}
	if c.HealthCheckChannelID == 0 {
		return errors.New("HEALTH_CHECK_CHANNEL_ID is not set")
	}
	return nil
}
