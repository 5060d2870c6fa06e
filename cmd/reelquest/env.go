package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required,notEmpty"`
	DevGuild     string `env:"DEV_GUILD_ID"`
	DBPath       string `env:"DB_PATH" envDefault:"data/reelquest.db"`
	ShardCount   int    `env:"SHARD_COUNT" envDefault:"1"`
	ShardId      int    `env:"SHARD_ID" envDefault:"0"`

	// Optional YAML overrides for the built-in species and gear tables.
	SpeciesPath string `env:"SPECIES_PATH"`
	GearPath    string `env:"GEAR_PATH"`

	CooldownCommandMin     int `env:"COOLDOWN_COMMAND_MIN" envDefault:"1"`
	CooldownCommandMax     int `env:"COOLDOWN_COMMAND_MAX" envDefault:"2"`
	CooldownLeaderboardMin int `env:"COOLDOWN_LEADERBOARD_MIN" envDefault:"30"`
	CooldownLeaderboardMax int `env:"COOLDOWN_LEADERBOARD_MAX" envDefault:"30"`

	HTTPAddr            string `env:"HTTP_ADDR" envDefault:":8080"`
	MaintenanceSchedule string `env:"MAINTENANCE_SCHEDULE" envDefault:"@every 6h"`
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ShardCount < 1 || c.ShardId < 0 || c.ShardId >= c.ShardCount {
		return fmt.Errorf("invalid shard %d of %d", c.ShardId, c.ShardCount)
	}
	if c.CooldownCommandMin < 0 || c.CooldownCommandMax < c.CooldownCommandMin {
		return fmt.Errorf("invalid command cooldown %d-%d", c.CooldownCommandMin, c.CooldownCommandMax)
	}
	if c.CooldownLeaderboardMin < 0 || c.CooldownLeaderboardMax < c.CooldownLeaderboardMin {
		return fmt.Errorf("invalid leaderboard cooldown %d-%d", c.CooldownLeaderboardMin, c.CooldownLeaderboardMax)
	}
	return nil
}
