// Package config centralizes how the report service reads environment
// variables and exposes them as typed values.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents runtime configuration shared by the CLI and the form
// backend.
type Config struct {
	Address        string
	SubmitTimeout  time.Duration
	MaxUploadBytes int64
	LogLevel       string
	// ExposeCode makes the session endpoint return the verification code.
	// Meant for testing links; keep it off in production.
	ExposeCode bool

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Region    string
	S3UseSSL    bool
}

const (
	defaultAddress        = ":8080"
	defaultSubmitTimeout  = 60 * time.Second
	defaultMaxUploadBytes = 64 << 20 // 64 MiB for the whole form
	defaultLogLevel       = "info"
)

// Load reads an optional .env file and then the environment, falling back to
// defaults for anything missing or malformed.
func Load() (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg := &Config{
		Address:        readEnv("REPORTE_ADDRESS", defaultAddress),
		SubmitTimeout:  parseDuration("REPORTE_SUBMIT_TIMEOUT", defaultSubmitTimeout),
		MaxUploadBytes: parseInt64("REPORTE_MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		LogLevel:       strings.ToLower(readEnv("REPORTE_LOG_LEVEL", defaultLogLevel)),
		ExposeCode:     parseBool("REPORTE_EXPOSE_CODE", false),
		S3Endpoint:     readEnv("REPORTE_S3_ENDPOINT", ""),
		S3AccessKey:    readEnv("REPORTE_S3_ACCESS_KEY", ""),
		S3SecretKey:    readEnv("REPORTE_S3_SECRET_KEY", ""),
		S3Region:       readEnv("REPORTE_S3_REGION", ""),
		S3UseSSL:       parseBool("REPORTE_S3_USE_SSL", true),
	}
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = defaultSubmitTimeout
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	return cfg, nil
}

// S3Enabled reports whether enough settings exist to reach object storage.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != ""
}

func readEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func parseInt64(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func parseBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseDuration(key string, def time.Duration) time.Duration {
	// time.ParseDuration understands inputs like "45s" or "2m".
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
