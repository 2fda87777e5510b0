package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "profiles")
	t.Setenv("DB_USER", "postgres")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8000", cfg.App.HTTPPort)
	require.Equal(t, "", cfg.App.APIPrefix)
	require.False(t, cfg.App.AdminEndpoints)
	require.Equal(t, "5432", cfg.Database.DBPort)
	require.Equal(t, "disable", cfg.Database.DBSSLMode)
	require.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr())
	require.Equal(t, 100, cfg.Profiles.MaxPageSize)
	require.Equal(t, 10, cfg.Profiles.DefaultPageSize)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for _, key := range []string{"DB_HOST", "DB_NAME", "DB_USER"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	setRequiredEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("REDIS_HOST=cache\nREDIS_PORT=6380\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	// godotenv never overrides variables that are already set.
	for _, key := range []string{"REDIS_HOST", "REDIS_PORT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Cleanup(func() {
		_ = os.Unsetenv("REDIS_HOST")
		_ = os.Unsetenv("REDIS_PORT")
	})

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "cache:6380", cfg.Redis.Addr())
}

func TestLoad_RejectsBadPaging(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PROFILES_DEFAULT_PAGE_SIZE", "500")

	_, err := Load()
	require.ErrorIs(t, err, errInvalidConfig)
}

func TestLoad_RejectsRelativePrefix(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("API_PREFIX", "api")

	_, err := Load()
	require.ErrorIs(t, err, errInvalidConfig)
}
