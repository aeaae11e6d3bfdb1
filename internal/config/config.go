package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	GRPCAddr string `yaml:"grpc_addr"` // empty disables the gRPC health server

	Env string `yaml:"env"` // "dev" | "prod"

	// Storage
	Store       string `yaml:"store"`   // memory | sqlite | postgres
	DBPath      string `yaml:"db_path"` // e.g. "./data/attendance.db"
	DatabaseURL string `yaml:"database_url"`

	// Event publication; empty RedisAddr disables it.
	RedisAddr      string `yaml:"redis_addr"`
	RedisNamespace string `yaml:"redis_namespace"`

	// Timezone names the calendar that decides which day a check-in
	// belongs to.
	Timezone       string `yaml:"timezone"`
	StoreTimeoutMS int    `yaml:"store_timeout_ms"`

	// Event log retention
	EventRetentionDays int `yaml:"event_retention_days"` // 0 = keep forever
	PruneIntervalHours int `yaml:"prune_interval_hours"`

	StaffRefreshSeconds int `yaml:"staff_refresh_seconds"`

	FaceEventRPS   float64 `yaml:"face_event_rps"`
	FaceEventBurst int     `yaml:"face_event_burst"`

	LogLevel string `yaml:"log_level"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		HTTPAddr:            ":5000",
		Env:                 "dev",
		Store:               StoreSQLite,
		DBPath:              "./data/attendance.db",
		RedisNamespace:      "attendance",
		Timezone:            "UTC",
		StoreTimeoutMS:      5000,
		EventRetentionDays:  30,
		PruneIntervalHours:  6,
		StaffRefreshSeconds: 60,
		FaceEventRPS:        10,
		FaceEventBurst:      20,
		LogLevel:            "info",
	}
}

// FromEnv applies ATTENDANCE_* environment variables on top of Defaults.
func FromEnv() Config {
	cfg := Defaults()
	applyEnv(&cfg)
	return cfg
}

// Load builds the configuration from defaults, then the YAML file named by
// ATTENDANCE_CONFIG_FILE (if any), then the environment, and validates it.
func Load() (Config, error) {
	cfg := Defaults()

	if path := strings.TrimSpace(os.Getenv("ATTENDANCE_CONFIG_FILE")); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the
// file leave cfg unchanged.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.HTTPAddr = getenvDefault("ATTENDANCE_HTTP_ADDR", cfg.HTTPAddr)
	cfg.GRPCAddr = getenvDefault("ATTENDANCE_GRPC_ADDR", cfg.GRPCAddr)

	cfg.Env = strings.ToLower(getenvDefault("ATTENDANCE_ENV", cfg.Env))
	if cfg.Env != "dev" && cfg.Env != "prod" {
		// fail-soft: treat unknown as dev
		cfg.Env = "dev"
	}

	cfg.DBPath = getenvDefault("ATTENDANCE_DB_PATH", cfg.DBPath)
	cfg.DatabaseURL = getenvDefault("DATABASE_URL", cfg.DatabaseURL)

	if v := strings.TrimSpace(os.Getenv("ATTENDANCE_STORE")); v != "" {
		cfg.Store = strings.ToLower(v)
	} else if cfg.DatabaseURL != "" && cfg.Store == StoreSQLite {
		cfg.Store = StorePostgres
	}

	cfg.RedisAddr = getenvDefault("ATTENDANCE_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisNamespace = getenvDefault("ATTENDANCE_REDIS_NAMESPACE", cfg.RedisNamespace)

	cfg.Timezone = getenvDefault("ATTENDANCE_TIMEZONE", cfg.Timezone)
	cfg.StoreTimeoutMS = getenvInt("ATTENDANCE_STORE_TIMEOUT_MS", cfg.StoreTimeoutMS)

	cfg.EventRetentionDays = getenvInt("ATTENDANCE_EVENT_RETENTION_DAYS", cfg.EventRetentionDays)
	cfg.PruneIntervalHours = getenvInt("ATTENDANCE_PRUNE_INTERVAL_HOURS", cfg.PruneIntervalHours)
	cfg.StaffRefreshSeconds = getenvInt("ATTENDANCE_STAFF_REFRESH_SECONDS", cfg.StaffRefreshSeconds)

	cfg.FaceEventRPS = getenvFloat("ATTENDANCE_FACE_EVENT_RPS", cfg.FaceEventRPS)
	cfg.FaceEventBurst = getenvInt("ATTENDANCE_FACE_EVENT_BURST", cfg.FaceEventBurst)

	cfg.LogLevel = strings.ToLower(getenvDefault("ATTENDANCE_LOG_LEVEL", cfg.LogLevel))
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return errors.New("http_addr is required")
	}
	switch c.Store {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("store postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown store %q (valid: memory, sqlite, postgres)", c.Store)
	}
	if c.RedisAddr != "" && c.RedisNamespace == "" {
		return errors.New("redis_namespace is required when redis_addr is set")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.StoreTimeoutMS <= 0 {
		return errors.New("store_timeout_ms must be positive")
	}
	if c.FaceEventRPS <= 0 || c.FaceEventBurst <= 0 {
		return errors.New("face_event_rps and face_event_burst must be positive")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutMS) * time.Millisecond
}

func (c Config) StaffRefreshInterval() time.Duration {
	return time.Duration(c.StaffRefreshSeconds) * time.Second
}

// SlogLevel parses LogLevel (debug, info, warn, error).
func (c Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return l, nil
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getenvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return def
	}
	return f
}
