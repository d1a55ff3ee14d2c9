package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, "local", cfg.MediaStorage)
	assert.Equal(t, int64(4), cfg.MaxConcurrentExports)
	assert.Equal(t, 2*time.Minute, cfg.ExportTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("MAX_CONCURRENT_EXPORTS", "9")
	t.Setenv("ARCHIVE_EXPORTS", "true")
	t.Setenv("EXPORT_TIMEOUT", "30s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("S3_PATH_STYLE", "not-a-bool")

	cfg := Load()
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, int64(9), cfg.MaxConcurrentExports)
	assert.True(t, cfg.ArchiveExports)
	assert.Equal(t, 30*time.Second, cfg.ExportTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.False(t, cfg.S3PathStyle)
}
