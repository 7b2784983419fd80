package common

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("DB_DRIVER", "")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.HTTPAddr != ":8000" {
		t.Errorf("HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.Server.MaxUploadBytes != 32<<20 || cfg.Server.BulkConcurrency != 4 {
		t.Errorf("server defaults = %+v", cfg.Server)
	}
	if cfg.OCR.Lang != "spa" || cfg.Queue.Workers != 2 || cfg.Queue.Timeout != 30*time.Second {
		t.Errorf("unexpected defaults: %+v %+v", cfg.OCR, cfg.Queue)
	}
	if cfg.PersistenceEnabled() {
		t.Error("persistence should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ensayos.toml")
	data := `
log_level = "debug"

[server]
http_addr = ":9000"
bulk_concurrency = 8

[database]
driver = "sqlite"
dsn = "file:ensayos.db"
max_conn_lifetime = "10m"

[queue]
workers = 3
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HTTP_ADDR", ":9100")
	t.Setenv("QUEUE_SIZE", "7")
	t.Setenv("DB_DRIVER", "")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.HTTPAddr != ":9100" {
		t.Errorf("env should win, HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.Server.BulkConcurrency != 8 {
		t.Errorf("BulkConcurrency = %d", cfg.Server.BulkConcurrency)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN != "file:ensayos.db" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Database.MaxConnLifetime != 10*time.Minute {
		t.Errorf("MaxConnLifetime = %v", cfg.Database.MaxConnLifetime)
	}
	if cfg.Queue.Workers != 3 || cfg.Queue.Size != 7 {
		t.Errorf("queue = %+v", cfg.Queue)
	}
	if cfg.SlogLevel().String() != "DEBUG" {
		t.Errorf("SlogLevel = %v", cfg.SlogLevel())
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[server\nhttp_addr = 1"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := LoadConfig(path)
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != "CONFIG_ERROR" {
		t.Fatalf("expected CONFIG_ERROR, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"sqlite with dsn", func(c *Config) { c.Database.Driver, c.Database.DSN = "sqlite", ":memory:" }, false},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres" }, true},
		{"unknown driver", func(c *Config) { c.Database.Driver, c.Database.DSN = "mysql", "x" }, true},
		{"unknown ocr engine", func(c *Config) { c.OCR.Engine = "paddle" }, true},
		{"zero concurrency", func(c *Config) { c.Server.BulkConcurrency = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error should wrap ErrInvalidInput: %v", err)
			}
		})
	}
}
