package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application settings.
type Config struct {
	DatabasePath     string
	CheckInterval    time.Duration
	ItemDelay        time.Duration
	HTTPTimeout      time.Duration
	HTTPAddr         string
	RunOnStart       bool
	LogLevel         string
	TelegramBotToken string
	TelegramChatID   int64
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("DATABASE_PATH", "./alerts.db")
	v.SetDefault("CHECK_INTERVAL", "6h")
	v.SetDefault("ITEM_DELAY", "2s")
	v.SetDefault("HTTP_TIMEOUT", "30s")
	v.SetDefault("HTTP_ADDR", ":3000")
	v.SetDefault("RUN_ON_START", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.SetDefault("TELEGRAM_CHAT_ID", 0)
	return v
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabasePath:     v.GetString("DATABASE_PATH"),
		CheckInterval:    v.GetDuration("CHECK_INTERVAL"),
		ItemDelay:        v.GetDuration("ITEM_DELAY"),
		HTTPTimeout:      v.GetDuration("HTTP_TIMEOUT"),
		HTTPAddr:         v.GetString("HTTP_ADDR"),
		RunOnStart:       v.GetBool("RUN_ON_START"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		TelegramBotToken: v.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   v.GetInt64("TELEGRAM_CHAT_ID"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("DATABASE_PATH must not be empty"))
	}
	if c.CheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("CHECK_INTERVAL must be positive, got %s", c.CheckInterval))
	}
	if c.ItemDelay < 0 {
		errs = append(errs, fmt.Errorf("ITEM_DELAY must not be negative, got %s", c.ItemDelay))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout))
	}
	return errors.Join(errs...)
}
