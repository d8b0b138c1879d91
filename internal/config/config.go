// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends selectable through STORAGE.
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds all configuration values for the API server and the CLI.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// Storage selects where the event slot lives: file, postgres or memory.
	// Defaults to "file".
	Storage string

	// DataDir is the directory of the file backend. Defaults to "data".
	DataDir string

	// DataFormat is the payload encoding, json or yaml. Defaults to "json".
	DataFormat string

	// DatabaseURL is the Postgres connection string.
	// Required when Storage is "postgres".
	DatabaseURL string

	// SlotName names the persisted collection. Defaults to "eventDataList".
	SlotName string

	// Timezone is the IANA zone form date-times without an offset are read
	// in. Defaults to "Local".
	Timezone string

	// RefreshCron is the marker refresh schedule, a cron expression or a
	// descriptor such as "@every 1m". "off" disables refreshing.
	RefreshCron string

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is read first when present; real
// environment variables win over it.
// Returns an error listing every missing or invalid variable.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		Storage:     strings.ToLower(getEnv("STORAGE", StorageFile)),
		DataDir:     getEnv("DATA_DIR", "data"),
		DataFormat:  strings.ToLower(getEnv("DATA_FORMAT", "json")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SlotName:    getEnv("SLOT_NAME", "eventDataList"),
		Timezone:    getEnv("TIMEZONE", "Local"),
		RefreshCron: getEnv("REFRESH_CRON", "@every 1m"),
	}

	var missing, invalid []string

	if !oneOf(cfg.LogLevel, "debug", "info", "warn", "error") {
		invalid = append(invalid, fmt.Sprintf("LOG_LEVEL=%q", cfg.LogLevel))
	}
	if !oneOf(cfg.Storage, StorageFile, StoragePostgres, StorageMemory) {
		invalid = append(invalid, fmt.Sprintf("STORAGE=%q", cfg.Storage))
	}
	if !oneOf(cfg.DataFormat, "json", "yaml") {
		invalid = append(invalid, fmt.Sprintf("DATA_FORMAT=%q", cfg.DataFormat))
	}
	if cfg.Storage == StoragePostgres && cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		invalid = append(invalid, fmt.Sprintf("TIMEZONE=%q", cfg.Timezone))
	}
	n, err := strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64)
	if err != nil || n <= 0 {
		invalid = append(invalid, fmt.Sprintf("MAX_BODY_BYTES=%q", os.Getenv("MAX_BODY_BYTES")))
	}
	cfg.MaxBodyBytes = n

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "required environment variables not set: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		problems = append(problems, "invalid environment variables: "+strings.Join(invalid, ", "))
	}
	if len(problems) > 0 {
		return Config{}, errors.New(strings.Join(problems, "; "))
	}

	return cfg, nil
}

// Location resolves Timezone. Load has already validated it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
