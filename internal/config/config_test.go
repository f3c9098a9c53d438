package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabasePath_FlagWins(t *testing.T) {
	t.Setenv(EnvDBPath, "/env/facturo.db")

	path, err := DatabasePath("/flag/facturo.db")
	require.NoError(t, err)
	assert.Equal(t, "/flag/facturo.db", path)
}

func TestDatabasePath_EnvBeatsDefault(t *testing.T) {
	t.Setenv(EnvDBPath, "/env/facturo.db")

	path, err := DatabasePath("")
	require.NoError(t, err)
	assert.Equal(t, "/env/facturo.db", path)
}

func TestDatabasePath_Default(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := DatabasePath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".facturo", "facturo.db"), path)
}
