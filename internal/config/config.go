package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LinkedIn struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"linkedin"`
	Limits struct {
		DailyConnectionLimit int     `yaml:"daily_connection_limit"`
		DailyFollowLimit     int     `yaml:"daily_follow_limit"`
		DailyMessageLimit    int     `yaml:"daily_message_limit"`
		MinActionDelaySec    int     `yaml:"min_action_delay_sec"`
		MaxActionDelaySec    int     `yaml:"max_action_delay_sec"`
		BatchSize            int     `yaml:"batch_size"`
		MinBatchPauseSec     int     `yaml:"min_batch_pause_sec"`
		MaxBatchPauseSec     int     `yaml:"max_batch_pause_sec"`
		InitialBackoffSec    int     `yaml:"initial_backoff_sec"`
		MaxBackoffSec        int     `yaml:"max_backoff_sec"`
		BackoffMultiplier    float64 `yaml:"backoff_multiplier"`
	} `yaml:"limits"`
	Scrape struct {
		NavDelayMs     int `yaml:"nav_delay_ms"`
		ScrollPauseMs  int `yaml:"scroll_pause_ms"`
		MaxScrolls     int `yaml:"max_scrolls"`
		RetryBackoffMs int `yaml:"retry_backoff_ms"`
		PageTimeoutMs  int `yaml:"page_timeout_ms"`
	} `yaml:"scrape"`
	Browser struct {
		Headless      bool   `yaml:"headless"`
		UserAgent     string `yaml:"user_agent"`
		CookieFile    string `yaml:"cookie_file"`
		ScreenshotDir string `yaml:"screenshot_dir"`
	} `yaml:"browser"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load() // optional
	cfg := defaultConfig()
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnvOverrides(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultConfig() Config {
	var cfg Config
	cfg.LinkedIn.BaseURL = "https://www.linkedin.com/"
	cfg.Limits.DailyConnectionLimit = 30
	cfg.Limits.DailyFollowLimit = 50
	cfg.Limits.DailyMessageLimit = 50
	cfg.Limits.MinActionDelaySec = 30
	cfg.Limits.MaxActionDelaySec = 120
	cfg.Limits.BatchSize = 10
	cfg.Limits.MinBatchPauseSec = 300
	cfg.Limits.MaxBatchPauseSec = 900
	cfg.Limits.InitialBackoffSec = 60
	cfg.Limits.MaxBackoffSec = 3600
	cfg.Limits.BackoffMultiplier = 2.0
	cfg.Scrape.NavDelayMs = 1000
	cfg.Scrape.ScrollPauseMs = 500
	cfg.Scrape.MaxScrolls = 5
	cfg.Scrape.RetryBackoffMs = 5000
	cfg.Scrape.PageTimeoutMs = 30000
	cfg.Browser.Headless = true
	cfg.Browser.CookieFile = "linkscout_cookies.json"
	cfg.Browser.ScreenshotDir = "screenshots"
	cfg.Database.Path = "linkscout.db"
	cfg.Logging.Level = "info"
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LINKSCOUT_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("LINKSCOUT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LINKSCOUT_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	switch os.Getenv("LINKSCOUT_HEADLESS") {
	case "1", "true":
		cfg.Browser.Headless = true
	case "0", "false":
		cfg.Browser.Headless = false
	}
	if v := os.Getenv("LINKSCOUT_COOKIE_FILE"); v != "" {
		cfg.Browser.CookieFile = v
	}
}

func validate(cfg *Config) error {
	if cfg.LinkedIn.BaseURL == "" {
		return errors.New("linkedin.base_url is required")
	}
	if cfg.Limits.DailyConnectionLimit <= 0 {
		return errors.New("limits.daily_connection_limit must be > 0")
	}
	if cfg.Limits.DailyFollowLimit <= 0 {
		return errors.New("limits.daily_follow_limit must be > 0")
	}
	if cfg.Limits.DailyMessageLimit <= 0 {
		return errors.New("limits.daily_message_limit must be > 0")
	}
	if cfg.Limits.MinActionDelaySec > cfg.Limits.MaxActionDelaySec {
		return errors.New("limits.min_action_delay_sec must not exceed limits.max_action_delay_sec")
	}
	if cfg.Limits.MinBatchPauseSec > cfg.Limits.MaxBatchPauseSec {
		return errors.New("limits.min_batch_pause_sec must not exceed limits.max_batch_pause_sec")
	}
	if cfg.Limits.BatchSize <= 0 {
		return errors.New("limits.batch_size must be > 0")
	}
	if cfg.Limits.BackoffMultiplier < 1 {
		return errors.New("limits.backoff_multiplier must be >= 1")
	}
	if cfg.Scrape.MaxScrolls < 0 {
		return errors.New("scrape.max_scrolls must be >= 0")
	}
	if cfg.Scrape.PageTimeoutMs <= 0 {
		return errors.New("scrape.page_timeout_ms must be > 0")
	}
	if cfg.Database.Path == "" {
		return errors.New("database.path is required")
	}
	return nil
}
