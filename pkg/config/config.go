// Package config loads service configuration from an optional YAML file,
// with environment variables (SANDBOX_*) taking precedence.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type Config struct {
	Listen            string    `yaml:"listen"`
	DBPath            string    `yaml:"db_path"`
	JWTSecret         string    `yaml:"jwt_secret"`
	JWTExpiresMinutes int       `yaml:"jwt_expires_minutes"`
	BinanceAPIURL     string    `yaml:"binance_api_url"`
	PriceTimeoutSecs  int       `yaml:"price_timeout_seconds"`
	QuoteCacheSecs    int       `yaml:"quote_cache_seconds"`
	Log               LogConfig `yaml:"log"`
}

func defaults() Config {
	return Config{
		Listen:            ":8080",
		DBPath:            "data/sandbox.db",
		JWTSecret:         "change_me",
		JWTExpiresMinutes: 60,
		BinanceAPIURL:     "https://api.binance.com",
		PriceTimeoutSecs:  10,
		QuoteCacheSecs:    3,
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 14,
		},
	}
}

// Load reads path (ignored when empty or missing) and applies env overrides.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("SANDBOX_LISTEN", &cfg.Listen)
	setString("SANDBOX_DB_PATH", &cfg.DBPath)
	setString("SANDBOX_JWT_SECRET", &cfg.JWTSecret)
	setInt("SANDBOX_JWT_EXPIRES_MINUTES", &cfg.JWTExpiresMinutes)
	setString("SANDBOX_BINANCE_API_URL", &cfg.BinanceAPIURL)
	setInt("SANDBOX_PRICE_TIMEOUT_SECONDS", &cfg.PriceTimeoutSecs)
	setInt("SANDBOX_QUOTE_CACHE_SECONDS", &cfg.QuoteCacheSecs)
	setString("SANDBOX_LOG_LEVEL", &cfg.Log.Level)
	setString("SANDBOX_LOG_FILE", &cfg.Log.File)
}
