package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File представляет структуру YAML файла конфигурации.
// Незаданные поля не переопределяют флаги.
type File struct {
	HealthURL    string        `yaml:"healthUrl"`
	Port         int           `yaml:"port"`
	PollInterval time.Duration `yaml:"pollInterval"`
	CheckTimeout time.Duration `yaml:"checkTimeout"`
	Storage      StorageType   `yaml:"storage"`
	SQLitePath   string        `yaml:"sqlitePath"`
	HistoryTTL   time.Duration `yaml:"historyTtl"`
	Log          struct {
		Format string `yaml:"format"`
		Level  string `yaml:"level"`
	} `yaml:"log"`
}

// LoadFile загружает конфигурацию из YAML файла
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if file.Storage != "" && file.Storage != StorageMemory && file.Storage != StorageSQLite {
		return nil, fmt.Errorf("unknown storage %q", file.Storage)
	}

	return &file, nil
}

// Apply переносит заданные в файле значения в cfg
func (f *File) Apply(cfg *Config) {
	if f.HealthURL != "" {
		cfg.HealthURL = f.HealthURL
	}
	if f.Port != 0 {
		cfg.Port = f.Port
	}
	if f.PollInterval != 0 {
		cfg.PollInterval = f.PollInterval
	}
	if f.CheckTimeout != 0 {
		cfg.CheckTimeout = f.CheckTimeout
	}
	if f.Storage != "" {
		cfg.Storage = f.Storage
	}
	if f.SQLitePath != "" {
		cfg.SQLitePath = f.SQLitePath
	}
	if f.HistoryTTL != 0 {
		cfg.HistoryTTL = f.HistoryTTL
	}
	if f.Log.Format != "" {
		cfg.LogFormat = f.Log.Format
	}
	if f.Log.Level != "" {
		cfg.LogLevel = f.Log.Level
	}
}
