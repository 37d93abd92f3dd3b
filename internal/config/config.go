package config

import (
	"os"
	"strconv"
	"strings"
)

// Config keeps runtime settings for the service.
type Config struct {
	DatabaseURL     string
	HTTPAddr        string
	TelegramToken   string // empty disables the daily summary push
	SummaryTime     string // HH:MM, wall clock of the daily job
	ExpandAheadDays int    // how many days the nightly job pre-expands
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:     strings.TrimSpace(os.Getenv("LIFEOS_DB")),
		HTTPAddr:        strings.TrimSpace(os.Getenv("LIFEOS_ADDR")),
		TelegramToken:   strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		SummaryTime:     strings.TrimSpace(os.Getenv("SUMMARY_TIME")),
		ExpandAheadDays: parseDays(strings.TrimSpace(os.Getenv("EXPAND_AHEAD_DAYS"))),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "lifeos.db"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.SummaryTime == "" {
		cfg.SummaryTime = "06:30"
	}
	if cfg.ExpandAheadDays <= 0 {
		cfg.ExpandAheadDays = 3
	}

	return cfg, nil
}

func parseDays(raw string) int {
	if raw == "" {
		return 0
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		return 0
	}
	return days
}
