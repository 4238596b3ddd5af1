package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return tmpFile
}

func TestParseArgsDefaults(t *testing.T) {
	cfg, err := ParseArgs(flag.NewFlagSet("test", flag.ContinueOnError), []string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.PollInterval != 30*time.Second {
		t.Errorf("expected poll interval 30s, got %s", cfg.PollInterval)
	}
	if cfg.HealthURL != "http://localhost:3000/api/health" {
		t.Errorf("unexpected health url %q", cfg.HealthURL)
	}
	if cfg.Storage != StorageMemory {
		t.Errorf("expected memory storage, got %s", cfg.Storage)
	}
}

func TestParseArgsFlags(t *testing.T) {
	cfg, err := ParseArgs(flag.NewFlagSet("test", flag.ContinueOnError), []string{
		"-health-url", "https://lems.example.com/api/health",
		"-poll-interval", "5s",
		"-storage", "sqlite",
		"-port", "9090",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HealthURL != "https://lems.example.com/api/health" {
		t.Errorf("unexpected health url %q", cfg.HealthURL)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("expected 5s, got %s", cfg.PollInterval)
	}
	if cfg.Storage != StorageSQLite {
		t.Errorf("expected sqlite, got %s", cfg.Storage)
	}
	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
}

func TestParseArgsUnknownStorage(t *testing.T) {
	_, err := ParseArgs(flag.NewFlagSet("test", flag.ContinueOnError), []string{"-storage", "redis"})
	if err == nil {
		t.Fatal("expected error for unknown storage flag, got nil")
	}
	if !strings.Contains(err.Error(), `unknown storage "redis"`) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseArgsInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"negative interval", []string{"-poll-interval", "-1s"}},
		{"zero timeout", []string{"-check-timeout", "0s"}},
		{"bad url", []string{"-health-url", "localhost/api/health"}},
		{"bad port", []string{"-port", "70000"}},
		{"unknown flag", []string{"-nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			if _, err := ParseArgs(fs, tt.args); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestParseArgsConfigFileOverrides(t *testing.T) {
	path := writeTempFile(t, `healthUrl: http://backend:5000/api/health
pollInterval: 1m
storage: sqlite
log:
  format: json
`)

	cfg, err := ParseArgs(flag.NewFlagSet("test", flag.ContinueOnError), []string{
		"-config", path,
		"-poll-interval", "5s",
		"-port", "8080",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HealthURL != "http://backend:5000/api/health" {
		t.Errorf("expected url from file, got %q", cfg.HealthURL)
	}
	if cfg.PollInterval != time.Minute {
		t.Errorf("expected interval from file, got %s", cfg.PollInterval)
	}
	if cfg.Port != 8080 {
		t.Errorf("flag value should survive when file omits it, got %d", cfg.Port)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("expected json log format, got %q", cfg.LogFormat)
	}
	if cfg.Storage != StorageSQLite {
		t.Errorf("expected sqlite, got %s", cfg.Storage)
	}
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantErr   bool
		checkFile func(t *testing.T, f *File)
	}{
		{
			name: "valid config with all fields",
			content: `healthUrl: http://localhost:3000/api/health
port: 8001
pollInterval: 30s
checkTimeout: 5s
storage: sqlite
sqlitePath: /var/lib/statuspanel/history.db
historyTtl: 48h
log:
  format: json
  level: debug
`,
			checkFile: func(t *testing.T, f *File) {
				if f.PollInterval != 30*time.Second {
					t.Errorf("expected 30s, got %s", f.PollInterval)
				}
				if f.CheckTimeout != 5*time.Second {
					t.Errorf("expected 5s, got %s", f.CheckTimeout)
				}
				if f.HistoryTTL != 48*time.Hour {
					t.Errorf("expected 48h, got %s", f.HistoryTTL)
				}
				if f.Log.Level != "debug" {
					t.Errorf("expected debug, got %q", f.Log.Level)
				}
			},
		},
		{
			name:    "empty file",
			content: ``,
			checkFile: func(t *testing.T, f *File) {
				cfg := Default()
				f.Apply(cfg)
				if *cfg != *Default() {
					t.Error("empty file must not change defaults")
				}
			},
		},
		{
			name:    "unknown storage",
			content: `storage: redis`,
			wantErr: true,
		},
		{
			name:    "invalid duration",
			content: `pollInterval: soon`,
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			content: `log: [invalid`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := LoadFile(writeTempFile(t, tt.content))

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.checkFile != nil {
				tt.checkFile(t, f)
			}
		})
	}
}

func TestLoadFile_FileNotFound(t *testing.T) {
	_, err := LoadFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}
