package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rpggio/estimator/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "https://estimator-gpt-backend.onrender.com", cfg.Backend.URL)
	require.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	require.Equal(t, int64(50*1024*1024), cfg.Upload.MaxFileSize)
	require.Equal(t, 3*time.Second, cfg.Upload.IngestDelay)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.False(t, cfg.Archive.Enabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9000
backend:
  url: http://localhost:8000
  timeout: 10s
upload:
  ingest_delay: 500ms
archive:
  endpoint: localhost:9000
  bucket: docs
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("ESTIMATOR_CONFIG_PATH", path)
	t.Setenv("ESTIMATOR_SERVER_PORT", "9100")
	t.Setenv("ESTIMATOR_TRANSPORT_MODE", "stdio")
	t.Setenv("ESTIMATOR_ARCHIVE_USE_SSL", "true")
	t.Setenv("ESTIMATOR_API_TOKEN", "secret")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "http://localhost:8000", cfg.Backend.URL)
	require.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	require.Equal(t, 500*time.Millisecond, cfg.Upload.IngestDelay)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.True(t, cfg.Archive.Enabled())
	require.Equal(t, "docs", cfg.Archive.Bucket)
	require.True(t, cfg.Archive.UseSSL)
	require.Equal(t, "secret", cfg.Auth.Token)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"ESTIMATOR_SERVER_PORT":     "eighty",
		"ESTIMATOR_BACKEND_TIMEOUT": "soon",
		"ESTIMATOR_INGEST_DELAY":    "3",
		"ESTIMATOR_TRANSPORT_MODE":  "carrier-pigeon",
		"ESTIMATOR_ARCHIVE_USE_SSL": "maybe",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := config.Load()
			require.Error(t, err)
		})
	}
}
