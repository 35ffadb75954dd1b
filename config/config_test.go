package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"dataroom-server/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, cfg any) string {
	t.Helper()

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, map[string]any{})

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, config.BackendPostgres, cfg.Storage.Backend)
	assert.Equal(t, config.FilesLocal, cfg.Storage.Files)
	assert.Equal(t, 5, cfg.Import.MaxDepth)
	assert.Equal(t, int64(16<<20), cfg.Storage.MaxUploadBytes)
	assert.Equal(t, "30m", cfg.JWT.AccessTokenTTL)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := writeConfig(t, map[string]any{
		"storage": map[string]any{"backend": "redis"},
		"import":  map[string]any{"max_depth": 2},
	})
	t.Setenv("DATAROOM_JWT_SECRET_KEY", "from-env")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, config.BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, 2, cfg.Import.MaxDepth)
	assert.Equal(t, "from-env", cfg.JWT.SecretKey)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
	}{
		{"unknown backend", map[string]any{"storage": map[string]any{"backend": "mongo"}}},
		{"unknown files", map[string]any{"storage": map[string]any{"files": "ftp"}}},
		{"bad duration", map[string]any{"google": map[string]any{"request_timeout": "soon"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, tt.data))
			assert.Error(t, err)
		})
	}
}

func TestGetDefault_RoundTrip(t *testing.T) {
	cfg, err := config.LoadConfig(writeConfig(t, config.GetDefault()))
	require.NoError(t, err)

	assert.Equal(t, config.GetDefault().Google.Scopes, cfg.Google.Scopes)
	assert.Equal(t, config.GetDefault().Server.Addr, cfg.Server.Addr)
}
