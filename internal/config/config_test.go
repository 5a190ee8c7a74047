package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 20, cfg.Database.MaxConns)
	assert.Equal(t, 0.5, cfg.Vision.DetectionThreshold)
	assert.Equal(t, 0.4, cfg.Vision.MatchThreshold)
	assert.Equal(t, 4, cfg.Vision.WorkerCount)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Organizer.DisablePersonAlbums)
	assert.False(t, cfg.Organizer.DisableMonthAlbums)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9090
  api_key: secret
database:
  host: db.internal
  name: photoflow
  user: app
vision:
  match_threshold: 0.55
organizer:
  disable_month_albums: true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Server.APIKey)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 0.55, cfg.Vision.MatchThreshold)
	assert.True(t, cfg.Organizer.DisableMonthAlbums)
	assert.False(t, cfg.Organizer.DisablePersonAlbums)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PF_SERVER_PORT", "7070")
	t.Setenv("PF_API_KEY", "env-key")
	t.Setenv("PF_DB_HOST", "env-db")
	t.Setenv("PF_MATCH_THRESHOLD", "0.6")
	t.Setenv("PF_WORKER_COUNT", "12")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "env-key", cfg.Server.APIKey)
	assert.Equal(t, "env-db", cfg.Database.Host)
	assert.Equal(t, 0.6, cfg.Vision.MatchThreshold)
	assert.Equal(t, 12, cfg.Vision.WorkerCount)
}

func TestEnvOverridesBeatYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644))

	t.Setenv("PF_SERVER_PORT", "6060")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Server.Port)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "localhost", Port: 5432, Name: "photoflow",
		User: "app", Password: "pw",
	}
	assert.Equal(t, "postgres://app:pw@localhost:5432/photoflow?sslmode=disable", d.DSN())
}
