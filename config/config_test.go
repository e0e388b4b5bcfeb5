package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/sharelink"
	"github.com/sagarc03/sharelink/config"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	// Load with no config files should use defaults
	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 5708, cfg.Server.Port)
	assert.Empty(t, cfg.Server.PublicURL)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "sharelink.db", cfg.Database.DSN)
	assert.Equal(t, "sharelink_files", cfg.Database.Tables.Files)
	assert.Equal(t, "sharelink_link_audit", cfg.Database.Tables.LinkAudit)
	assert.Equal(t, "./data", cfg.Storage.Path)
	assert.Equal(t, int64(52428800), cfg.Storage.MaxUploadSize)
	assert.Equal(t, sharelink.TTLPolicy{MinSeconds: 30, MaxSeconds: 86400}, cfg.Links.Policy())
	assert.Empty(t, cfg.Links.Secret.Inline)
	assert.Empty(t, cfg.Links.Secret.File)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 1024, cfg.Cache.Size)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL())
	assert.Equal(t, 30*time.Second, cfg.Service.CleanupTimeoutDuration())
	assert.False(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.CORS.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
env: prod
server:
  port: 8080
  public_url: https://files.example.com
database:
  type: postgres
  dsn: postgres://localhost/test
  tables:
    files: custom_files
    link_audit: custom_audit
storage:
  path: /tmp/storage
  max_upload_size: 1048576
links:
  min_ttl_seconds: 60
  max_ttl_seconds: 3600
  secret:
    file: /run/secrets/link_key
cache:
  enabled: true
  size: 64
  ttl_seconds: 10
metrics:
  enabled: true
log:
  level: debug
`)

	cfg, err := config.Load([]string{configPath}, nil)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://files.example.com", cfg.Server.PublicURL)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "postgres://localhost/test", cfg.Database.DSN)
	assert.Equal(t, "custom_files", cfg.Database.Tables.Files)
	assert.Equal(t, "custom_audit", cfg.Database.Tables.LinkAudit)
	assert.Equal(t, "/tmp/storage", cfg.Storage.Path)
	assert.Equal(t, int64(1048576), cfg.Storage.MaxUploadSize)
	assert.Equal(t, sharelink.TTLPolicy{MinSeconds: 60, MaxSeconds: 3600}, cfg.Links.Policy())
	assert.Equal(t, "/run/secrets/link_key", cfg.Links.Secret.File)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 64, cfg.Cache.Size)
	assert.Equal(t, 10*time.Second, cfg.Cache.TTL())
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ConfigFileMerge(t *testing.T) {
	basePath := writeConfig(t, "base.yaml", `
server:
  port: 8080
storage:
  path: /base/storage
links:
  min_ttl_seconds: 60
log:
  level: info
`)
	overridePath := writeConfig(t, "override.yaml", `
server:
  port: 9090
log:
  level: debug
`)

	cfg, err := config.Load([]string{basePath, overridePath}, nil)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port, "later file overrides")
	assert.Equal(t, "debug", cfg.Log.Level, "later file overrides")
	assert.Equal(t, "/base/storage", cfg.Storage.Path, "unset keys keep the earlier value")
	assert.Equal(t, int64(60), cfg.Links.MinTTLSeconds)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid port", content: "server:\n  port: 70000\n"},
		{name: "invalid env", content: "env: staging\n"},
		{name: "invalid database type", content: "database:\n  type: mysql\n"},
		{name: "invalid log level", content: "log:\n  level: verbose\n"},
		{name: "max ttl below min", content: "links:\n  min_ttl_seconds: 600\n  max_ttl_seconds: 60\n"},
		{name: "zero min ttl", content: "links:\n  min_ttl_seconds: 0\n"},
		{name: "zero upload size", content: "storage:\n  max_upload_size: 0\n"},
		{name: "invalid public url", content: "server:\n  public_url: not a url\n"},
		{name: "invalid table name", content: "database:\n  tables:\n    files: Files-Table\n"},
		{name: "same table names", content: "database:\n  tables:\n    files: t\n    link_audit: t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, "config.yaml", tt.content)

			_, err := config.Load([]string{configPath}, nil)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "validate config")
		})
	}
}

func TestLoad_WithInlineSecret(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
links:
  secret:
    inline: 0123456789abcdef0123456789abcdef
`)

	cfg, err := config.Load([]string{configPath}, nil)
	require.NoError(t, err)

	assert.Equal(t, "0123456789abcdef0123456789abcdef", cfg.Links.Secret.Inline)
}

func TestLoad_WithCORS(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
cors:
  enabled: true
  allowed_origins:
    - https://example.com
    - https://app.example.com
  allowed_methods:
    - GET
    - POST
  allowed_headers:
    - Content-Type
  max_age: 600
`)

	cfg, err := config.Load([]string{configPath}, nil)
	require.NoError(t, err)

	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"https://example.com", "https://app.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"GET", "POST"}, cfg.CORS.AllowedMethods)
	assert.Equal(t, []string{"Content-Type"}, cfg.CORS.AllowedHeaders)
	assert.Equal(t, 600, cfg.CORS.MaxAge)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("SHARELINK_SERVER_PORT", "9090")
	t.Setenv("SHARELINK_DATABASE_TYPE", "postgres")
	t.Setenv("SHARELINK_LINKS_SECRET_INLINE", "from-the-environment")
	t.Setenv("SHARELINK_LINKS_MAX_TTL_SECONDS", "600")

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "from-the-environment", cfg.Links.Secret.Inline)
	assert.Equal(t, int64(600), cfg.Links.MaxTTLSeconds)
}

func TestLoad_Flags(t *testing.T) {
	t.Setenv("SHARELINK_SERVER_PORT", "9090")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 5708, "")
	flags.String("db-dsn", "", "")
	flags.String("storage-path", "./data", "")
	require.NoError(t, flags.Parse([]string{"--port", "7000", "--db-dsn", "flag.db"}))

	cfg, err := config.Load(nil, flags)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port, "flags override env")
	assert.Equal(t, "flag.db", cfg.Database.DSN)
	assert.Equal(t, "./data", cfg.Storage.Path, "unchanged flags are not bound")
}

func TestFromContext_Missing(t *testing.T) {
	_, err := config.FromContext(context.Background())
	assert.Error(t, err)
}
