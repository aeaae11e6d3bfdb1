package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout())
	assert.Equal(t, time.Minute, cfg.StaffRefreshInterval())
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ATTENDANCE_HTTP_ADDR", ":9000")
	t.Setenv("ATTENDANCE_ENV", "PROD")
	t.Setenv("ATTENDANCE_STORE_TIMEOUT_MS", "250")
	t.Setenv("ATTENDANCE_FACE_EVENT_RPS", "2.5")
	t.Setenv("ATTENDANCE_EVENT_RETENTION_DAYS", "not-a-number")

	cfg := FromEnv()
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, 250*time.Millisecond, cfg.StoreTimeout())
	assert.Equal(t, 2.5, cfg.FaceEventRPS)
	assert.Equal(t, 30, cfg.EventRetentionDays, "bad ints fall back to the default")
}

func TestFromEnv_UnknownEnvIsDev(t *testing.T) {
	t.Setenv("ATTENDANCE_ENV", "staging")
	assert.Equal(t, "dev", FromEnv().Env)
}

func TestFromEnv_DatabaseURLImpliesPostgres(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/attendance?sslmode=disable")
	cfg := FromEnv()
	assert.Equal(t, StorePostgres, cfg.Store)

	t.Setenv("ATTENDANCE_STORE", "memory")
	assert.Equal(t, StoreMemory, FromEnv().Store, "explicit store wins")
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "attendance.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":7000"
store: memory
timezone: Asia/Kolkata
redis_addr: localhost:6379
`), 0o600))

	t.Setenv("ATTENDANCE_CONFIG_FILE", path)
	t.Setenv("ATTENDANCE_HTTP_ADDR", ":7001")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7001", cfg.HTTPAddr, "env overrides file")
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "attendance", cfg.RedisNamespace, "unset keys keep defaults")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("ATTENDANCE_CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown store", func(c *Config) { c.Store = "mongo" }},
		{"postgres without url", func(c *Config) { c.Store = StorePostgres }},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{"zero timeout", func(c *Config) { c.StoreTimeoutMS = 0 }},
		{"zero burst", func(c *Config) { c.FaceEventBurst = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"empty addr", func(c *Config) { c.HTTPAddr = " " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
