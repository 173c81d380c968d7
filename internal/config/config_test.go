package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 60*time.Second, cfg.Interval())
	assert.Equal(t, "Asia/Kolkata", cfg.Reconcile.Timezone)
	assert.Equal(t, 5*time.Second, cfg.AlertTimeout())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apc.yaml")
	body := []byte("server:\n  addr: \":9090\"\nreconcile:\n  interval_seconds: 30\nalert:\n  addr: \"10.0.0.5:7777\"\n")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Interval())
	assert.Equal(t, "10.0.0.5:7777", cfg.Alert.Addr)
	// untouched keys keep defaults
	assert.Equal(t, "apc.alerts", cfg.Alert.NatsSubject)
}

func TestLoad_BadYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [oops"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestStore_ReloadSwapsConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("alert:\n  addr: \"1.1.1.1:7777\"\n"), 0o644))

	store, err := NewStore(path)
	require.NoError(t, err)
	assert.Equal(t, "1.1.1.1:7777", store.AlertAddr())

	require.NoError(t, os.WriteFile(path, []byte("alert:\n  addr: \"2.2.2.2:7777\"\n"), 0o644))
	require.NoError(t, store.Reload())
	assert.Equal(t, "2.2.2.2:7777", store.AlertAddr())
}

func TestStore_ReloadKeepsOldConfigOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("alert:\n  addr: \"1.1.1.1:7777\"\n"), 0o644))

	store, err := NewStore(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("alert: [broken"), 0o644))
	assert.Error(t, store.Reload())
	assert.Equal(t, "1.1.1.1:7777", store.AlertAddr())
}
