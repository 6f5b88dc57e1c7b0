package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/pager/internal/persistence"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PAGER_BACKEND", "PAGER_DSN", "PAGER_PAGE_SIZE", "PAGER_LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, persistence.BackendMemory, c.Backend)
	require.Empty(t, c.DSN)
	require.Equal(t, 10, c.PageSize)
	require.Equal(t, slog.LevelInfo, c.LogLevel)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PAGER_BACKEND", "Redis")
	t.Setenv("PAGER_DSN", "cache:6380")
	t.Setenv("PAGER_PAGE_SIZE", "25")
	t.Setenv("PAGER_LOG_LEVEL", "debug")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, persistence.BackendRedis, c.Backend)
	require.Equal(t, "cache:6380", c.DSN)
	require.Equal(t, 25, c.PageSize)
	require.Equal(t, slog.LevelDebug, c.LogLevel)
}

func TestLoad_BackendDefaultDSN(t *testing.T) {
	t.Setenv("PAGER_DSN", "")
	t.Setenv("PAGER_PAGE_SIZE", "")
	t.Setenv("PAGER_LOG_LEVEL", "")

	for _, b := range persistence.Backends() {
		t.Setenv("PAGER_BACKEND", string(b))
		c, err := Load()
		require.NoError(t, err, b)
		if b == persistence.BackendMemory {
			require.Empty(t, c.DSN)
		} else {
			require.NotEmpty(t, c.DSN, b)
		}
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"backend":   {"PAGER_BACKEND": "cassandra"},
		"page size": {"PAGER_PAGE_SIZE": "0"},
		"not int":   {"PAGER_PAGE_SIZE": "ten"},
		"log level": {"PAGER_LOG_LEVEL": "loud"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"PAGER_BACKEND", "PAGER_DSN", "PAGER_PAGE_SIZE", "PAGER_LOG_LEVEL"} {
				t.Setenv(k, env[k])
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pager.env")
	require.NoError(t, os.WriteFile(path, []byte("PAGER_BACKEND=sqlite\nPAGER_PAGE_SIZE=7\n"), 0o600))

	t.Setenv("PAGER_ENV_FILE", path)
	t.Setenv("PAGER_DSN", "")
	t.Setenv("PAGER_LOG_LEVEL", "")
	// Unset rather than empty, so the file may provide them.
	for _, k := range []string{"PAGER_BACKEND", "PAGER_PAGE_SIZE"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, persistence.BackendSQLite, c.Backend)
	require.Equal(t, 7, c.PageSize)
}

func TestLoad_EnvironmentOverridesDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pager.env")
	require.NoError(t, os.WriteFile(path, []byte("PAGER_PAGE_SIZE=7\n"), 0o600))

	t.Setenv("PAGER_ENV_FILE", path)
	t.Setenv("PAGER_BACKEND", "")
	t.Setenv("PAGER_LOG_LEVEL", "")
	t.Setenv("PAGER_PAGE_SIZE", "30")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, 30, c.PageSize)
}
