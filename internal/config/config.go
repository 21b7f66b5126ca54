package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		Debug    bool   `yaml:"debug"`
	} `yaml:"telegram"`

	Catalog struct {
		Path string `yaml:"path"`
	} `yaml:"catalog"`

	Booking struct {
		MaxRangeDays          int `yaml:"max_range_days"`
		MaxAdvanceDays        int `yaml:"max_advance_days"`
		SessionTimeoutMinutes int `yaml:"session_timeout_minutes"`
		RecentLimit           int `yaml:"recent_limit"`
	} `yaml:"booking"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Demo struct {
		Enabled  bool `yaml:"enabled"`
		Bookings int  `yaml:"bookings"`
	} `yaml:"demo"`

	Managers []int64 `yaml:"managers"`
}

func Load(path string) (*Config, error) {
	// A .env alongside the binary can supply ${...} placeholders.
	_ = godotenv.Load()

	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MaxRangeDays caps the length of a requested date range.
func (c *Config) MaxRangeDays() int {
	if c.Booking.MaxRangeDays <= 0 {
		return 14
	}
	return c.Booking.MaxRangeDays
}

// MaxAdvanceDays caps how far into the future a range may start.
func (c *Config) MaxAdvanceDays() int {
	if c.Booking.MaxAdvanceDays <= 0 {
		return 60
	}
	return c.Booking.MaxAdvanceDays
}

// SessionTimeout is how long an idle session survives.
func (c *Config) SessionTimeout() time.Duration {
	if c.Booking.SessionTimeoutMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Booking.SessionTimeoutMinutes) * time.Minute
}

// RecentLimit is how many bookings the recent list shows.
func (c *Config) RecentLimit() int {
	if c.Booking.RecentLimit <= 0 {
		return 5
	}
	return c.Booking.RecentLimit
}
