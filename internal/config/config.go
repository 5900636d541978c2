package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" env:"FEEDBACKER_PORT"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr" env:"FEEDBACKER_REDIS_ADDR"`
		Password string `yaml:"password" env:"FEEDBACKER_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"FEEDBACKER_REDIS_DB"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" env:"FEEDBACKER_POSTGRES_URL"`
	} `yaml:"postgres"`
	Event struct {
		ID                      string `yaml:"id" env:"FEEDBACKER_EVENT_ID"`
		CarouselIntervalSeconds int    `yaml:"carouselIntervalSeconds" env:"FEEDBACKER_CAROUSEL_INTERVAL_SECONDS"`
	} `yaml:"event"`
	Session struct {
		TTL       string `yaml:"ttl" env:"FEEDBACKER_SESSION_TTL"`
		DeviceTTL string `yaml:"deviceTtl" env:"FEEDBACKER_DEVICE_TTL"`
	} `yaml:"session"`
	Log struct {
		Level  string `yaml:"level" env:"FEEDBACKER_LOG_LEVEL"`
		Format string `yaml:"format" env:"FEEDBACKER_LOG_FORMAT"`
	} `yaml:"log"`
}

// Load reads YAML config from path and applies FEEDBACKER_* environment
// overrides. A missing file leaves only defaults and environment.
func Load(path string) (Config, error) {
	cfg := Config{}
	cfg.Event.ID = "default"
	cfg.Event.CarouselIntervalSeconds = 5
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Event.CarouselIntervalSeconds < 1 {
		cfg.Event.CarouselIntervalSeconds = 1
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
