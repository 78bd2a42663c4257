package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/keshon/dispatchkit/pkg/dispatch"
)

// Config holds everything the bot reads from the environment. A missing
// DISCORD_TOKEN is a fatal setup error surfaced before the dispatcher starts.
type Config struct {
	DiscordToken        string        `env:"DISCORD_TOKEN,required"`
	Prefix              string        `env:"COMMAND_PREFIX" envDefault:"--"`
	EditTimespan        time.Duration `env:"EDIT_TRACK_TIMESPAN" envDefault:"1h"`
	StoragePath         string        `env:"STORAGE_PATH" envDefault:"datastore.json"`
	OwnerIDs            []string      `env:"OWNER_IDS" envSeparator:","`
	SkipChecksForOwners bool          `env:"SKIP_CHECKS_FOR_OWNERS" envDefault:"false"`
}

// Load reads an optional .env file and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, &dispatch.SetupError{Reason: "invalid environment configuration", Cause: err}
	}
	return &cfg, nil
}
