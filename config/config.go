package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	AoC           AoCConfig           `yaml:"aoc"`
	Discord       DiscordConfig       `yaml:"discord"`
	Storage       StorageConfig       `yaml:"storage"`
	Redis         RedisConfig         `yaml:"redis"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// AoCConfig holds the upstream leaderboard settings.
type AoCConfig struct {
	LeaderboardID    string        `yaml:"leaderboard_id"`
	SessionID        string        `yaml:"session_id"`
	Year             int           `yaml:"year"` // 0 = resolve from the calendar
	TotalDays        int           `yaml:"total_days"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	RequireBothStars bool          `yaml:"require_both_stars"`
}

// DiscordConfig holds the webhook and role-grant settings.
type DiscordConfig struct {
	WebhookID      string `yaml:"webhook_id"`
	WebhookToken   string `yaml:"webhook_token"`
	BotToken       string `yaml:"bot_token"`
	GuildID        string `yaml:"guild_id"`
	CompletionRole string `yaml:"completion_role"`
	Username       string `yaml:"username"`
}

// StorageConfig selects the snapshot store backend.
type StorageConfig struct {
	// Driver is "file" or "postgres".
	Driver  string `yaml:"driver"`
	DataDir string `yaml:"data_dir"`
	DSN     string `yaml:"dsn"`
	// LinkFile is the identity mapping file path for the file backend.
	LinkFile string `yaml:"link_file"`
}

// RedisConfig holds the optional Redis link store. An empty address keeps
// the file-backed mapping.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// NATSConfig holds the optional NATS event bus. An empty URL keeps the
// in-process bus.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// HTTPConfig holds the API listener settings.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// ObservabilityConfig holds configuration for observability components.
type ObservabilityConfig struct {
	Environment string `yaml:"environment"`
}

// LoadConfig loads the configuration from a YAML file (absent file is fine),
// applies environment variable overrides, then defaults, then validates.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if v := os.Getenv("AOC_LEADERBOARD_ID"); v != "" {
		cfg.AoC.LeaderboardID = v
	}
	if v := os.Getenv("AOC_SESSION_ID"); v != "" {
		cfg.AoC.SessionID = v
	}
	if v := os.Getenv("AOC_YEAR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AoC.Year = n
		}
	}
	if v := os.Getenv("AOC_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.AoC.PollInterval = d
		}
	}
	if v := os.Getenv("AOC_REQUIRE_BOTH_STARS"); v != "" {
		cfg.AoC.RequireBothStars = v == "true"
	}
	if v := os.Getenv("DISCORD_WEBHOOK_ID"); v != "" {
		cfg.Discord.WebhookID = v
	}
	if v := os.Getenv("DISCORD_WEBHOOK_TOKEN"); v != "" {
		cfg.Discord.WebhookToken = v
	}
	if v := os.Getenv("DISCORD_BOT_TOKEN"); v != "" {
		cfg.Discord.BotToken = v
	}
	if v := os.Getenv("DISCORD_GUILD_ID"); v != "" {
		cfg.Discord.GuildID = v
	}
	if v := os.Getenv("DISCORD_COMPLETION_ROLE"); v != "" {
		cfg.Discord.CompletionRole = v
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.AoC.TotalDays == 0 {
		cfg.AoC.TotalDays = 25
	}
	if cfg.AoC.PollInterval == 0 {
		cfg.AoC.PollInterval = 15 * time.Minute
	}
	if cfg.Discord.Username == "" {
		cfg.Discord.Username = "Advent Bot"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "file"
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Storage.LinkFile == "" {
		cfg.Storage.LinkFile = "data/links.json"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
}

func validate(cfg *Config) error {
	if cfg.AoC.LeaderboardID == "" {
		return fmt.Errorf("aoc.leaderboard_id is required")
	}
	if cfg.AoC.SessionID == "" {
		return fmt.Errorf("aoc.session_id is required")
	}
	if cfg.Storage.Driver != "file" && cfg.Storage.Driver != "postgres" {
		return fmt.Errorf("storage.driver must be file or postgres, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.Driver == "postgres" && cfg.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn is required for the postgres driver")
	}
	return nil
}
