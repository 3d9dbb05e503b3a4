package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvConfigPath = "SECTORCTL_CONFIG_PATH"
	EnvUsername   = "SECTORCTL_USERNAME"
	EnvPassword   = "SECTORCTL_PASSWORD"
	EnvPanelCode  = "SECTORCTL_PANEL_CODE"
	EnvPanelID    = "SECTORCTL_PANEL_ID"
	EnvBaseURL    = "SECTORCTL_BASE_URL"
	EnvTimeout    = "SECTORCTL_TIMEOUT"
	EnvLogLevel   = "SECTORCTL_LOG_LEVEL"
	EnvLogFormat  = "SECTORCTL_LOG_FORMAT"
)

type envOverrides struct {
	Username  string        `env:"SECTORCTL_USERNAME"`
	Password  string        `env:"SECTORCTL_PASSWORD"`
	PanelCode string        `env:"SECTORCTL_PANEL_CODE"`
	PanelID   string        `env:"SECTORCTL_PANEL_ID"`
	BaseURL   string        `env:"SECTORCTL_BASE_URL"`
	Timeout   time.Duration `env:"SECTORCTL_TIMEOUT"`
	LogLevel  string        `env:"SECTORCTL_LOG_LEVEL"`
	LogFormat string        `env:"SECTORCTL_LOG_FORMAT"`
}

// LoadDotEnv loads variables from the given .env files (default: ./.env) without
// overriding variables already set. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overlays SECTORCTL_* variables onto cfg. Unset or empty variables leave the
// file value in place.
func ApplyEnv(cfg Config) (Config, error) {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	overlay := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	overlay(&cfg.Username, o.Username)
	overlay(&cfg.Password, o.Password)
	overlay(&cfg.PanelCode, o.PanelCode)
	overlay(&cfg.PanelID, o.PanelID)
	overlay(&cfg.BaseURL, o.BaseURL)
	overlay(&cfg.Log.Level, o.LogLevel)
	overlay(&cfg.Log.Format, o.LogFormat)
	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}
	return cfg, nil
}
