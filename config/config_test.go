package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env file here
	for _, key := range []string{"FLOWSCOPE_SEARCH_URL", "FLOWSCOPE_SEARCH_TIMEOUT", "FLOWSCOPE_CATEGORIES", "FLOWSCOPE_LOG_FILE", "FLOWSCOPE_PORT", "FLOWSCOPE_SEARCH_PARAMS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.SearchURL)
	assert.Equal(t, 10*time.Second, cfg.SearchTimeout)
	assert.Empty(t, cfg.CategoriesPath)
	assert.Equal(t, "flowscope.log", cfg.LogFile)
	assert.Equal(t, 8585, cfg.Port)
	assert.False(t, cfg.SearchQueryParams)
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FLOWSCOPE_SEARCH_URL", "http://localhost:9000")
	t.Setenv("FLOWSCOPE_SEARCH_TIMEOUT", "3s")
	t.Setenv("FLOWSCOPE_CATEGORIES", "rules.yaml")
	t.Setenv("FLOWSCOPE_LOG_FILE", "/tmp/fs.log")
	t.Setenv("FLOWSCOPE_PORT", "9999")
	t.Setenv("FLOWSCOPE_SEARCH_PARAMS", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", cfg.SearchURL)
	assert.Equal(t, 3*time.Second, cfg.SearchTimeout)
	assert.Equal(t, "rules.yaml", cfg.CategoriesPath)
	assert.Equal(t, "/tmp/fs.log", cfg.LogFile)
	assert.Equal(t, 9999, cfg.Port)
	assert.True(t, cfg.SearchQueryParams)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	// godotenv never overrides a variable that is set, even to ""
	t.Setenv("FLOWSCOPE_PORT", "")
	require.NoError(t, os.Unsetenv("FLOWSCOPE_PORT"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FLOWSCOPE_PORT=7070\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
}

func TestGetEnv_BadValuesFallBack(t *testing.T) {
	t.Setenv("FS_TEST_INT", "nope")
	assert.Equal(t, 5, getEnvIntOrDefault("FS_TEST_INT", 5))

	t.Setenv("FS_TEST_DURATION", "soon")
	assert.Equal(t, time.Minute, getEnvDurationOrDefault("FS_TEST_DURATION", time.Minute))

	t.Setenv("FS_TEST_DURATION", "-2s")
	assert.Equal(t, time.Minute, getEnvDurationOrDefault("FS_TEST_DURATION", time.Minute))

	t.Setenv("FS_TEST_DURATION", "30")
	assert.Equal(t, 30*time.Second, getEnvDurationOrDefault("FS_TEST_DURATION", time.Minute))
}
