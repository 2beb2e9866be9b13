package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("TWINORBIT_TEST_PORT", "2222")

	assert.Equal(t, "2222", GetEnv("TWINORBIT_TEST_PORT", "23234"))
	assert.Equal(t, "fallback", GetEnv("TWINORBIT_TEST_UNSET", "fallback"))
}

func TestLoadDotEnv(t *testing.T) {
	const key = "TWINORBIT_TEST_DOTENV"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=hello\n"), 0644))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "hello", os.Getenv(key))
}

func TestLoadDotEnv_Missing(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}
