package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"vigil/internal/store"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Path   string             `yaml:"path"`
		Backup store.BackupConfig `yaml:"backup"`
	} `yaml:"database"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Telegram struct {
		BotToken    string `yaml:"bot_token"`
		AdminChatID int64  `yaml:"admin_chat_id"`
		Debug       bool   `yaml:"debug"`
	} `yaml:"telegram"`

	Schedule struct {
		DefaultStartHour int `yaml:"default_start_hour"`
		DefaultEndHour   int `yaml:"default_end_hour"`
	} `yaml:"schedule"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`
}

func Load(path string) (*Config, error) {
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

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/vigil.db"
	}
	if cfg.Schedule.DefaultStartHour == 0 {
		cfg.Schedule.DefaultStartHour = 6
	}
	if cfg.Schedule.DefaultEndHour == 0 {
		cfg.Schedule.DefaultEndHour = 18
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}
