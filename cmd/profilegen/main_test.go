package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", "1")
	t.Setenv("DB_NAME", "profiles")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_CONNECT_TIMEOUT", "200ms")
}

func TestRun_RejectsCountOutOfRange(t *testing.T) {
	setRequiredEnv(t)

	for _, count := range []int{0, -1, 10001} {
		err := run(options{count: count, timeout: time.Second}, zap.NewNop())
		require.ErrorContains(t, err, "count must be in 1..10000")
	}
}

func TestRun_ReturnsConfigErrors(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_HOST", "")
	require.NoError(t, os.Unsetenv("DB_HOST"))

	err := run(options{count: 1, timeout: time.Second}, zap.NewNop())
	require.ErrorContains(t, err, "load config")
}

func TestRun_ReturnsConnectErrors(t *testing.T) {
	setRequiredEnv(t)

	err := run(options{count: 1, timeout: 2 * time.Second}, zap.NewNop())
	require.ErrorContains(t, err, "connect database")
}
