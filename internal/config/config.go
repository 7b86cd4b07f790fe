// Package config loads bot configuration from a .env file, an optional
// config.yaml, and environment variables. Environment variables override
// file values; keys use dots in files and underscores in the environment
// (classifier.mode -> CLASSIFIER_MODE).
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting for the moderation bot.
type Config struct {
	BotToken string

	DatabaseURL string
	RedisAddr   string // empty disables the dedup guard
	NATSURL     string

	// ClassifierMode selects the classification adapter:
	// "lexicon" (in-process), "remote" (HTTP inference server) or "nats".
	ClassifierMode string
	ClassifierURL  string

	// Threshold is the minimum classifier confidence to flag a message.
	Threshold float64
	// WarningCeiling is the warning count at which a user is banned.
	WarningCeiling int
	// ToxicLabels is the set of classifier labels treated as violations.
	ToxicLabels []string

	PollTimeout     time.Duration // long-poll wait on getUpdates
	ClassifyTimeout time.Duration // per-call classification deadline
	NotifyTimeout   time.Duration // per-intent delivery deadline

	MetricsAddr string
}

// Load reads configuration from all sources and returns a validated Config.
func Load() (*Config, error) {
	// .env is optional; its values surface as environment variables.
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env file found, skipping")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("database.url", "postgres://localhost:5432/modbot?sslmode=disable")
	v.SetDefault("redis.addr", "")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("classifier.mode", "lexicon")
	v.SetDefault("classifier.url", "")
	v.SetDefault("moderation.threshold", 0.7)
	v.SetDefault("moderation.ceiling", 5)
	v.SetDefault("moderation.labels", []string{"toxic", "hate"})
	v.SetDefault("poll.timeout", "30s")
	v.SetDefault("classify.timeout", "10s")
	v.SetDefault("notify.timeout", "5s")
	v.SetDefault("metrics.addr", ":9090")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("[config] no config.yaml found, using environment and defaults")
		} else {
			return nil, fmt.Errorf("config: read config.yaml: %w", err)
		}
	}

	cfg := &Config{
		BotToken:        v.GetString("bot.token"),
		DatabaseURL:     v.GetString("database.url"),
		RedisAddr:       v.GetString("redis.addr"),
		NATSURL:         v.GetString("nats.url"),
		ClassifierMode:  v.GetString("classifier.mode"),
		ClassifierURL:   v.GetString("classifier.url"),
		Threshold:       v.GetFloat64("moderation.threshold"),
		WarningCeiling:  v.GetInt("moderation.ceiling"),
		ToxicLabels:     v.GetStringSlice("moderation.labels"),
		PollTimeout:     v.GetDuration("poll.timeout"),
		ClassifyTimeout: v.GetDuration("classify.timeout"),
		NotifyTimeout:   v.GetDuration("notify.timeout"),
		MetricsAddr:     v.GetString("metrics.addr"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("config: BOT_TOKEN is not set")
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("config: moderation threshold %v outside [0,1]", c.Threshold)
	}
	if c.WarningCeiling < 1 {
		return fmt.Errorf("config: warning ceiling %d must be at least 1", c.WarningCeiling)
	}
	switch c.ClassifierMode {
	case "lexicon", "nats":
	case "remote":
		if c.ClassifierURL == "" {
			return fmt.Errorf("config: classifier.url required in remote mode")
		}
	default:
		return fmt.Errorf("config: unknown classifier mode %q", c.ClassifierMode)
	}
	return nil
}
