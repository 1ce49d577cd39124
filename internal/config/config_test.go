package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"reaper.dev/reaper/testhelpers"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	require.Equal(t, []string{"main", "master", "develop", "development"}, cfg.ProtectedBranches)
	require.Equal(t, "origin", cfg.DefaultRemote)
	require.True(t, cfg.FetchOnStart)
	require.True(t, cfg.ForceLocalDelete)
	require.True(t, cfg.KeepMarksOnRefresh)
	require.False(t, cfg.AutoRefresh)
	require.False(t, cfg.GitHubProtection)
	require.Equal(t, DefaultCommandTimeout, cfg.CommandTimeout)

	// callers may mutate their copy freely
	cfg.ProtectedBranches[0] = "trunk"
	require.Equal(t, "main", DefaultProtectedBranches[0])
}

func TestLoadConfigExplicitPath(t *testing.T) {
	t.Parallel()

	t.Run("every key", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, t.TempDir(), "reaper.yaml", `
protected_branches:
  - trunk
  - release
default_remote: upstream
fetch_on_start: "no"
force_local_delete: false
command_timeout: 90s
github_protection: yes
keep_marks_on_refresh: 0
auto_refresh: true
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.Equal(t, path, cfg.Path)
		require.Equal(t, []string{"trunk", "release"}, cfg.ProtectedBranches)
		require.Equal(t, "upstream", cfg.DefaultRemote)
		require.False(t, cfg.FetchOnStart)
		require.False(t, cfg.ForceLocalDelete)
		require.Equal(t, 90*time.Second, cfg.CommandTimeout)
		require.True(t, cfg.GitHubProtection)
		require.False(t, cfg.KeepMarksOnRefresh)
		require.True(t, cfg.AutoRefresh)
	})

	t.Run("unset keys keep defaults", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, t.TempDir(), "reaper.yaml", "default_remote: fork\n")
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.Equal(t, "fork", cfg.DefaultRemote)
		require.Equal(t, DefaultProtectedBranches, cfg.ProtectedBranches)
		require.True(t, cfg.FetchOnStart)
	})

	t.Run("empty protected list disables defaults", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, t.TempDir(), "reaper.yaml", "protected_branches: []\n")
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.Empty(t, cfg.ProtectedBranches)
	})

	t.Run("comma separated protected list", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, t.TempDir(), "reaper.yaml", "protected_branches: \"main, staging,,main\"\n")
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.Equal(t, []string{"main", "staging"}, cfg.ProtectedBranches)
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		t.Parallel()
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		require.NotNil(t, cfg)
		require.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("malformed yaml is an error with defaults", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, t.TempDir(), "reaper.yaml", "protected_branches: [unterminated\n")
		cfg, err := LoadConfig(path)
		require.ErrorContains(t, err, "failed to parse config")
		require.Equal(t, DefaultConfig(), cfg)
	})
}

func TestLoadConfigUserLocations(t *testing.T) {
	t.Run("missing user config yields defaults", func(t *testing.T) {
		testhelpers.IsolateUserConfig(t)
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		require.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("reads XDG config.yml", func(t *testing.T) {
		dir := testhelpers.IsolateUserConfig(t)
		path := writeConfig(t, dir, filepath.Join("reaper", "config.yml"), "auto_refresh: on\n")
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		require.True(t, cfg.AutoRefresh)
		require.Equal(t, path, cfg.Path)
	})

	t.Run("config.yaml wins over config.yml", func(t *testing.T) {
		dir := testhelpers.IsolateUserConfig(t)
		writeConfig(t, dir, filepath.Join("reaper", "config.yaml"), "default_remote: a\n")
		writeConfig(t, dir, filepath.Join("reaper", "config.yml"), "default_remote: b\n")
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		require.Equal(t, "a", cfg.DefaultRemote)
	})

	t.Run("environment variable names the file", func(t *testing.T) {
		testhelpers.IsolateUserConfig(t)
		path := writeConfig(t, t.TempDir(), "custom.yaml", "fetch_on_start: false\n")
		t.Setenv(EnvConfigPath, path)
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		require.False(t, cfg.FetchOnStart)
	})
}

func TestApplyRepo(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	remote := "upstream"
	cfg.ApplyRepo(&RepoConfig{ProtectedBranches: []string{"staging", "main"}, DefaultRemote: &remote})
	require.Equal(t, []string{"main", "master", "develop", "development", "staging"}, cfg.ProtectedBranches)
	require.Equal(t, "upstream", cfg.DefaultRemote)

	empty := ""
	cfg.ApplyRepo(&RepoConfig{DefaultRemote: &empty})
	require.Equal(t, "upstream", cfg.DefaultRemote)

	cfg.ApplyRepo(nil)
	cfg.AddProtected("  qa ", "", "staging")
	require.Equal(t, []string{"main", "master", "develop", "development", "staging", "qa"}, cfg.ProtectedBranches)
}

func TestCoercion(t *testing.T) {
	t.Parallel()

	require.True(t, coerceBool("YES", false))
	require.False(t, coerceBool("off", true))
	require.True(t, coerceBool(nil, true))
	require.True(t, coerceBool("maybe", true))
	require.True(t, coerceBool(1, false))

	require.Equal(t, 2*time.Minute, coerceDuration("2m", 0))
	require.Equal(t, 30*time.Second, coerceDuration(30, 0))
	require.Equal(t, 45*time.Second, coerceDuration("45", 0))
	require.Equal(t, time.Second, coerceDuration(-5, time.Second))
	require.Equal(t, time.Second, coerceDuration("soon", time.Second))
	require.Equal(t, 1500*time.Millisecond, coerceDuration(1.5, 0))
}
