package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9000
database:
  host: db
  port: 5432
  user: couply
  password: secret
  dbname: couply
  sslmode: disable
jwt:
  secret: s3cr3t
moderation:
  url: http://moderation.local/moderate
  api_key: key
  timeout_seconds: 3
  policies:
    message:
      fail_open: true
    post:
      fail_open: false
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "s3cr3t", cfg.JWT.Secret)
	assert.Equal(t, 3*time.Second, cfg.Moderation.Timeout())
	assert.Contains(t, cfg.Database.DSN(), "host=db")
	assert.Contains(t, cfg.Database.DSN(), "dbname=couply")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestModerationPolicies(t *testing.T) {
	path := writeConfig(t, `
moderation:
  url: http://moderation.local
  policies:
    message:
      fail_open: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Moderation.FailOpen("message"))
	// classes without an explicit policy fail closed
	assert.False(t, cfg.Moderation.FailOpen("post"))
	assert.False(t, cfg.Moderation.FailOpen("comment"))
	assert.False(t, cfg.Moderation.FailOpen("unknown"))

	// the classifier timeout has a default
	assert.Equal(t, 10*time.Second, cfg.Moderation.Timeout())
}
