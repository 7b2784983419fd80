package common

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultConfigPath is read when neither the caller nor ENSAYOS_CONFIG names a file.
const DefaultConfigPath = "ensayos.toml"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	OCR      OCRConfig      `toml:"ocr"`
	Queue    QueueConfig    `toml:"queue"`
	LogLevel string         `toml:"log_level"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string `toml:"http_addr"`
	GRPCHealthAddr  string `toml:"grpc_health_addr"`
	MaxUploadBytes  int64  `toml:"max_upload_bytes"`
	BulkConcurrency int    `toml:"bulk_concurrency"`
}

// DatabaseConfig holds database-related configuration.
// An empty Driver disables persistence.
type DatabaseConfig struct {
	Driver           string        `toml:"driver"`
	DSN              string        `toml:"dsn"`
	MaxConns         int32         `toml:"max_conns"`
	MinConns         int32         `toml:"min_conns"`
	MaxConnLifetime  time.Duration `toml:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `toml:"max_conn_idle_time"`
	DialTimeout      time.Duration `toml:"dial_timeout"`
	StatementTimeout time.Duration `toml:"statement_timeout"`
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Engine      string `toml:"engine"`
	Tesseract   string `toml:"tesseract"`
	Lang        string `toml:"lang"`
	TessdataDir string `toml:"tessdata_dir"`
	PSM         int    `toml:"psm"`
}

// QueueConfig sizes the background persistence queue.
type QueueConfig struct {
	Workers int           `toml:"workers"`
	Size    int           `toml:"size"`
	Timeout time.Duration `toml:"timeout"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:        ":8000",
			MaxUploadBytes:  32 << 20,
			BulkConcurrency: 4,
		},
		Database: DatabaseConfig{
			MaxConns:        20,
			MinConns:        5,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
			DialTimeout:     3 * time.Second,
		},
		OCR: OCRConfig{
			Engine: "tesseract",
			Lang:   "spa",
		},
		Queue: QueueConfig{
			Workers: 2,
			Size:    64,
			Timeout: 30 * time.Second,
		},
		LogLevel: "info",
	}
}

// LoadConfig layers defaults, the TOML file at path and environment
// variables, in that order. A missing file is not an error; an empty path
// falls back to ENSAYOS_CONFIG and then DefaultConfigPath.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = getEnv("ENSAYOS_CONFIG", DefaultConfigPath)
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, NewAppError("CONFIG_ERROR", fmt.Sprintf("parse %s", path), err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, NewAppError("CONFIG_ERROR", fmt.Sprintf("read %s", path), err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.HTTPAddr = getEnv("HTTP_ADDR", c.Server.HTTPAddr)
	c.Server.GRPCHealthAddr = getEnv("GRPC_HEALTH_ADDR", c.Server.GRPCHealthAddr)
	c.Server.MaxUploadBytes = getEnvAsInt64("MAX_UPLOAD_BYTES", c.Server.MaxUploadBytes)
	c.Server.BulkConcurrency = getEnvAsInt("BULK_CONCURRENCY", c.Server.BulkConcurrency)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("DB_URL", c.Database.DSN)
	c.Database.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = getEnvAsInt32("DB_MIN_CONNS", c.Database.MinConns)
	c.Database.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", c.Database.MaxConnLifetime)
	c.Database.MaxConnIdleTime = getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", c.Database.MaxConnIdleTime)
	c.Database.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", c.Database.DialTimeout)
	c.Database.StatementTimeout = getEnvAsDuration("DB_STATEMENT_TIMEOUT", c.Database.StatementTimeout)

	c.OCR.Engine = getEnv("OCR_ENGINE", c.OCR.Engine)
	c.OCR.Tesseract = getEnv("TESSERACT_BIN", c.OCR.Tesseract)
	c.OCR.Lang = getEnv("OCR_LANG", c.OCR.Lang)
	c.OCR.TessdataDir = getEnv("TESSDATA_PREFIX", c.OCR.TessdataDir)
	c.OCR.PSM = getEnvAsInt("OCR_PSM", c.OCR.PSM)

	c.Queue.Workers = getEnvAsInt("QUEUE_WORKERS", c.Queue.Workers)
	c.Queue.Size = getEnvAsInt("QUEUE_SIZE", c.Queue.Size)
	c.Queue.Timeout = getEnvAsDuration("QUEUE_TIMEOUT", c.Queue.Timeout)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// PersistenceEnabled reports whether a database driver is configured.
func (c *Config) PersistenceEnabled() bool {
	return c.Database.Driver != ""
}

// SlogLevel maps LogLevel to a slog level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate reports every invalid setting at once as a CONFIG_ERROR wrapping
// ErrInvalidInput.
func (c *Config) Validate() error {
	v := NewValidator().
		Field("HTTP_ADDR", c.Server.HTTPAddr, Required).
		Check(c.Server.BulkConcurrency >= 1, "BULK_CONCURRENCY", strconv.Itoa(c.Server.BulkConcurrency), "must be at least 1").
		Field("DB_DRIVER", c.Database.Driver, OneOf("", "postgres", "sqlite")).
		Field("OCR_ENGINE", c.OCR.Engine, OneOf("", "tesseract", "gosseract"))
	if c.Database.Driver != "" {
		v.Field("DB_URL", c.Database.DSN, Required)
	}
	return v.Err("CONFIG_ERROR")
}
