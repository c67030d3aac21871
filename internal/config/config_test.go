package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "rollcall.db", cfg.Storage.Path)
	assert.Equal(t, int64(4718592), cfg.Storage.WarnBytes)
	assert.Equal(t, "memory", cfg.Session.Driver)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, 8760*time.Hour, cfg.Retention.Period)
	assert.Zero(t, cfg.Backup.Interval)
	require.NoError(t, Validate(cfg))
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rollcall.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  path: /tmp/class.db
  quota_bytes: 1024
logger:
  level: info
  format: json
backup:
  interval: 30m
`), 0o644))

	t.Setenv("ROLLCALL_LOGGER_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/class.db", cfg.Storage.Path)
	assert.Equal(t, int64(1024), cfg.Storage.QuotaBytes)
	assert.Equal(t, "debug", cfg.Logger.Level, "env overrides file")
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, 30*time.Minute, cfg.Backup.Interval)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty storage path", func(c *Config) { c.Storage.Path = "" }},
		{"unknown session driver", func(c *Config) { c.Session.Driver = "memcached" }},
		{"redis without addr", func(c *Config) { c.Session.Driver = "redis" }},
		{"bad log level", func(c *Config) { c.Logger.Level = "loud" }},
		{"file output without filename", func(c *Config) { c.Logger.Output = "file" }},
		{"negative quota", func(c *Config) { c.Storage.QuotaBytes = -1 }},
		{"zero retention", func(c *Config) { c.Retention.Period = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestValidate_RedisWithAddr(t *testing.T) {
	cfg := Default()
	cfg.Session.Driver = "redis"
	cfg.Session.RedisAddr = "localhost:6379"
	assert.NoError(t, Validate(cfg))
}
