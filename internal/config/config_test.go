package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
  env: production
database:
  driver: postgres
  url: postgres://estate@localhost/estate
jwt:
  secret: s3cret
storage:
  type: local
  base_path: /var/estate
`), 0o644))

	t.Setenv("DATABASE_URL", "")
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres://estate@localhost/estate", cfg.Database.DSN)
	assert.Equal(t, "/var/estate", cfg.Storage.BasePath)
	assert.True(t, cfg.IsProduction())
	// не указанные в файле значения берутся из Default
	assert.Equal(t, 3, cfg.Outbox.MaxAttempts)
}

func TestLoad_EnvMode(t *testing.T) {
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}
