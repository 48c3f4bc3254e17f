package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port     int            `json:"port"`
	AppURL   string         `json:"app_url"`
	AppKey   string         `json:"app_key"`
	Database DatabaseConfig `json:"database"`
	Mail     MailConfig     `json:"mail"`

	// Lifecycle knobs, all optional.
	VerifyTTLMinutes     int `json:"verify_ttl_minutes"`
	ResetTTLMinutes      int `json:"reset_ttl_minutes"`
	ResetThrottleSeconds int `json:"reset_throttle_seconds"`
	ThrottlePerMinute    int `json:"throttle_per_minute"`

	LogConfig logger.LogConfig `json:"log_config"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type MailConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.AppKey == "" {
		return nil, fmt.Errorf("app_key is required")
	}
	if cfg.AppURL == "" {
		cfg.AppURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.VerifyTTLMinutes == 0 {
		cfg.VerifyTTLMinutes = 60
	}
	if cfg.ResetTTLMinutes == 0 {
		cfg.ResetTTLMinutes = 60
	}
	if cfg.ResetThrottleSeconds == 0 {
		cfg.ResetThrottleSeconds = 60
	}
	if cfg.ThrottlePerMinute == 0 {
		cfg.ThrottlePerMinute = 6
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	return &cfg, nil
}
