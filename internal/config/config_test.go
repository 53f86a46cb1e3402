package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "requirementsdb", cfg.Mongo.Database)
	assert.Equal(t, 256, cfg.Cache.ProgramCacheSize)
	assert.False(t, cfg.CatalogEnabled())
	assert.False(t, cfg.ArchiveEnabled())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9090"
mongo:
  database: programs
catalog:
  dsn: postgres://catalog
cache:
  draftTTL: 2h
`), 0o600))

	t.Setenv("PORT", "7070")
	t.Setenv("REDIS_URI", "redis://cache:6379")
	t.Setenv("PROGRESS_TTL", "15m")
	t.Setenv("ARCHIVE_S3_ENDPOINT", "minio:9000")
	t.Setenv("ARCHIVE_S3_USE_SSL", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "programs", cfg.Mongo.Database)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, 2*time.Hour, cfg.Cache.DraftTTL)
	assert.Equal(t, 15*time.Minute, cfg.Cache.ProgressTTL)
	assert.True(t, cfg.CatalogEnabled())
	assert.True(t, cfg.ArchiveEnabled())
	assert.True(t, cfg.Archive.UseSSL)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("PROGRAM_CACHE_SIZE", "lots")
	_, err := Load("")
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Auth.JWTSecret = ""
	cfg.Cache.ProgramCacheSize = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt secret")
	assert.Contains(t, err.Error(), "cache size")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("shown", "program_id", "p1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"program_id":"p1"`)
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}
