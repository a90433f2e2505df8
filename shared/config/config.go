package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	WeatherKit WeatherKitConfig `yaml:"weatherkit"`
	Track      TrackConfig      `yaml:"track"`
	Map        MapConfig        `yaml:"map"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Schedule   string           `yaml:"schedule"`
}

type WeatherKitConfig struct {
	Team              string  `yaml:"team" env:"WK_TEAM"`
	Service           string  `yaml:"service" env:"WK_SERVICE"`
	KeyID             string  `yaml:"key_id" env:"WK_KEYID"`
	PrivateKeyPath    string  `yaml:"private_key_path" env:"WK_PATHTOKEY"`
	BaseURL           string  `yaml:"base_url"`
	Language          string  `yaml:"language"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type TrackConfig struct {
	Dir string `yaml:"dir"`
}

type MapConfig struct {
	OutputFile  string `yaml:"output_file"`
	ZoomStart   int    `yaml:"zoom_start"`
	TileURL     string `yaml:"tile_url"`
	Attribution string `yaml:"attribution"`
}

type MonitoringConfig struct {
	HealthPort int `yaml:"health_port"`
}

// Load reads .env, an optional YAML file and the WK_* environment variables.
// CONFIG_FILE must exist when set; the default config.yaml may be absent.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config

	configFile, explicit := os.LookupEnv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
		explicit = false
	}

	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// Environment only
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	if cfg.WeatherKit.Team == "" {
		cfg.WeatherKit.Team = os.Getenv("WK_TEAM")
	}
	if cfg.WeatherKit.Service == "" {
		cfg.WeatherKit.Service = os.Getenv("WK_SERVICE")
	}
	if cfg.WeatherKit.KeyID == "" {
		cfg.WeatherKit.KeyID = os.Getenv("WK_KEYID")
	}
	if cfg.WeatherKit.PrivateKeyPath == "" {
		cfg.WeatherKit.PrivateKeyPath = os.Getenv("WK_PATHTOKEY")
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.WeatherKit.BaseURL == "" {
		c.WeatherKit.BaseURL = "https://weatherkit.apple.com"
	}
	if c.WeatherKit.Language == "" {
		c.WeatherKit.Language = "en"
	}
	if c.WeatherKit.TimeoutSeconds == 0 {
		c.WeatherKit.TimeoutSeconds = 30
	}
	if c.WeatherKit.RequestsPerSecond == 0 {
		c.WeatherKit.RequestsPerSecond = 5
	}
	if c.Track.Dir == "" {
		c.Track.Dir = "."
	}
	if c.Map.OutputFile == "" {
		c.Map.OutputFile = "map_with_weather.html"
	}
	if c.Map.ZoomStart == 0 {
		c.Map.ZoomStart = 10
	}
	if c.Map.TileURL == "" {
		c.Map.TileURL = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	}
	if c.Map.Attribution == "" {
		c.Map.Attribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
	}
	if c.Monitoring.HealthPort == 0 {
		c.Monitoring.HealthPort = 8080
	}
	if c.Schedule == "" {
		c.Schedule = "0 0 21 * * *" // Daily at 9 PM, after the day's rides
	}
}

func (c *Config) validate() error {
	if c.WeatherKit.Team == "" {
		return fmt.Errorf("WeatherKit team ID is required (set WK_TEAM or weatherkit.team)")
	}
	if c.WeatherKit.Service == "" {
		return fmt.Errorf("WeatherKit service ID is required (set WK_SERVICE or weatherkit.service)")
	}
	if c.WeatherKit.KeyID == "" {
		return fmt.Errorf("WeatherKit key ID is required (set WK_KEYID or weatherkit.key_id)")
	}
	if c.WeatherKit.PrivateKeyPath == "" {
		return fmt.Errorf("WeatherKit private key path is required (set WK_PATHTOKEY or weatherkit.private_key_path)")
	}
	if c.WeatherKit.RequestsPerSecond < 0 {
		return fmt.Errorf("weatherkit.requests_per_second must not be negative")
	}
	if c.Map.ZoomStart < 0 || c.Map.ZoomStart > 20 {
		return fmt.Errorf("map.zoom_start must be between 0 and 20, got %d", c.Map.ZoomStart)
	}
	return nil
}
