package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg := LoadFile(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "ledger-api", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 500, cfg.Import.PreviewRows)
	assert.Equal(t, int64(10485760), cfg.Import.MaxFileSize)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpiryHours)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	require.NoError(t, cfg.Validate())
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	t.Setenv("IMPORT_PREVIEW_ROWS", "50")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("LOG_FORMAT", "console")

	cfg := LoadFile(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, 50, cfg.Import.PreviewRows)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadFile_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT=9090\nIMPORT_MAX_APPLY_ROWS=10\n"), 0o600))

	cfg := LoadFile(path)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 10, cfg.Import.MaxApplyRows)
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	cfg.App.Env = "production"
	cfg.Import.PreviewRows = 0
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be set in production")
	assert.Contains(t, err.Error(), "IMPORT_PREVIEW_ROWS")
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}
