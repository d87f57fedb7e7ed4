// pkg/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	def := DefaultConfig()

	require.Equal(t, "info", def.Log.Level)
	require.Equal(t, "local", def.Track.ScopePolicy)
	require.Equal(t, []string{"SSH"}, def.Track.Interesting)
	require.Equal(t, 24*time.Hour, def.Track.Retention)
	require.Equal(t, "softwatch.banners", def.NATS.Subject)
	require.True(t, def.Metrics.Enabled)
}

func TestLoadDefaults(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Load(nil, ""))

	cfg := m.Get()
	require.Equal(t, DefaultConfig().Track.ScopePolicy, cfg.Track.ScopePolicy)
	require.Equal(t, DefaultConfig().Track.Retention, cfg.Track.Retention)
	require.Equal(t, DefaultConfig().NATS.URL, cfg.NATS.URL)
}

func TestLoadFlagsOverrideDefaults(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	require.NoError(t, flags.Parse([]string{
		"--track.scope_policy", "all",
		"--track.retention", "1h",
	}))

	m := NewManager()
	require.NoError(t, m.Load(flags, ""))

	cfg := m.Get()
	require.Equal(t, "all", cfg.Track.ScopePolicy)
	require.Equal(t, time.Hour, cfg.Track.Retention)
	// Untouched keys keep their defaults.
	require.Equal(t, DefaultConfig().NATS.Subject, cfg.NATS.Subject)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "softwatch.yaml")
	content := "track:\n  scope_policy: remote\n  interesting:\n    - SSH\n    - Apache\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m := NewManager()
	require.NoError(t, m.Load(nil, path))

	cfg := m.Get()
	require.Equal(t, "remote", cfg.Track.ScopePolicy)
	require.Equal(t, []string{"SSH", "Apache"}, cfg.Track.Interesting)
}

func TestLoadRejectsInvalidPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "softwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("track:\n  scope_policy: everything\n"), 0o644))

	m := NewManager()
	require.Error(t, m.Load(nil, path))
}

func TestDebugFlagForcesDebugLevel(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	require.NoError(t, flags.Parse([]string{"--debug"}))

	m := NewManager()
	require.NoError(t, m.Load(flags, ""))
	require.Equal(t, "debug", m.Get().Log.Level)
}
