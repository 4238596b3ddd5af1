package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"
)

type StorageType string

const (
	StorageMemory StorageType = "memory"
	StorageSQLite StorageType = "sqlite"
)

type Config struct {
	HealthURL    string
	Port         int
	PollInterval time.Duration
	CheckTimeout time.Duration
	Storage      StorageType
	SQLitePath   string
	HistoryTTL   time.Duration
	LogFormat    string
	LogLevel     string
	ConfigFile   string
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		HealthURL:    "http://localhost:3000/api/health",
		Port:         8000,
		PollInterval: 30 * time.Second,
		CheckTimeout: 10 * time.Second,
		Storage:      StorageMemory,
		SQLitePath:   "./status-history.db",
		HistoryTTL:   24 * time.Hour,
		LogFormat:    "text",
		LogLevel:     "info",
	}
}

// Parse разбирает флаги командной строки и, если указан -config, применяет YAML файл
func Parse() (*Config, error) {
	return ParseArgs(flag.CommandLine, nil)
}

// ParseArgs разбирает args в fs; при args == nil используются os.Args
func ParseArgs(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := Default()

	fs.StringVar(&cfg.HealthURL, "health-url", cfg.HealthURL, "Health endpoint URL")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "Web server port")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Health polling interval")
	fs.DurationVar(&cfg.CheckTimeout, "check-timeout", cfg.CheckTimeout, "Health request timeout")

	storageStr := string(cfg.Storage)
	fs.StringVar(&storageStr, "storage", storageStr, "Storage type: memory or sqlite")

	fs.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database path")
	fs.DurationVar(&cfg.HistoryTTL, "history-ttl", cfg.HistoryTTL, "Status history retention time")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.ConfigFile, "config", "", "Path to YAML config file")

	var err error
	if args == nil {
		err = fs.Parse(os.Args[1:])
	} else {
		err = fs.Parse(args)
	}
	if err != nil {
		return nil, err
	}

	cfg.Storage = StorageType(storageStr)

	if cfg.ConfigFile != "" {
		file, err := LoadFile(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		file.Apply(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.HealthURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid health url %q", c.HealthURL))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %s", c.PollInterval))
	}
	if c.CheckTimeout <= 0 {
		errs = append(errs, fmt.Errorf("check timeout must be positive, got %s", c.CheckTimeout))
	}
	if c.Storage != StorageMemory && c.Storage != StorageSQLite {
		errs = append(errs, fmt.Errorf("unknown storage %q", c.Storage))
	}
	if c.HistoryTTL <= 0 {
		errs = append(errs, fmt.Errorf("history ttl must be positive, got %s", c.HistoryTTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
