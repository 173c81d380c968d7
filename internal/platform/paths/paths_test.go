package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDataRoot_EnvOverride(t *testing.T) {
	t.Setenv("APC_DATA_ROOT", "/tmp/apc-data")
	assert.Equal(t, "/tmp/apc-data", ResolveDataRoot())
}

func TestResolveDataRoot_Default(t *testing.T) {
	t.Setenv("APC_DATA_ROOT", "")
	assert.Equal(t, DefaultDataRoot, ResolveDataRoot())
}

func TestResolveConfigPath(t *testing.T) {
	assert.Equal(t, "/etc/apc.yaml", ResolveConfigPath("/etc/apc.yaml"))

	t.Setenv("APC_DATA_ROOT", "/tmp/apc-data")
	assert.Equal(t, filepath.Join("/tmp/apc-data", "config", "default.yaml"), ResolveConfigPath(""))
}

func TestResolveLocalDBPath_EnvOverride(t *testing.T) {
	t.Setenv("APC_DB_PATH", "/tmp/custom.db")
	assert.Equal(t, "/tmp/custom.db", ResolveLocalDBPath())
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	t.Setenv("APC_DATA_ROOT", root)

	require.NoError(t, EnsureDirs())
	for _, sub := range []string{"config", "logs", "db"} {
		assert.DirExists(t, filepath.Join(root, sub))
	}
}
