package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the user config location
const EnvConfigPath = "REAPER_CONFIG"

// DefaultCommandTimeout bounds a single git invocation unless configured otherwise
const DefaultCommandTimeout = 5 * time.Minute

// DefaultProtectedBranches are never deletable unless the user config replaces them
var DefaultProtectedBranches = []string{"main", "master", "develop", "development"}

// Config is the effective configuration: defaults, then the user YAML file,
// then the repository file, then command line flags.
type Config struct {
	ProtectedBranches  []string
	DefaultRemote      string
	FetchOnStart       bool
	ForceLocalDelete   bool
	CommandTimeout     time.Duration
	GitHubProtection   bool
	KeepMarksOnRefresh bool
	AutoRefresh        bool

	// Path is the file the user config was read from, empty when none was found
	Path string
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		ProtectedBranches:  append([]string(nil), DefaultProtectedBranches...),
		DefaultRemote:      "origin",
		FetchOnStart:       true,
		ForceLocalDelete:   true,
		CommandTimeout:     DefaultCommandTimeout,
		GitHubProtection:   false,
		KeepMarksOnRefresh: true,
		AutoRefresh:        false,
	}
}

func getConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

// UserConfigPaths returns the locations searched for the user config, in order
func UserConfigPaths() []string {
	base := filepath.Join(getConfigDir(), "reaper")
	return []string{
		filepath.Join(base, "config.yaml"),
		filepath.Join(base, "config.yml"),
	}
}

// LoadConfig reads the user configuration. An explicit path (or REAPER_CONFIG)
// must exist; otherwise the XDG locations are tried and a missing file
// yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv(EnvConfigPath)
	}

	var paths []string
	explicit := configPath != ""
	if explicit {
		expanded, err := expandPath(configPath)
		if err != nil {
			return DefaultConfig(), err
		}
		paths = []string{expanded}
	} else {
		paths = UserConfigPaths()
	}

	for _, path := range paths {
		// #nosec G304 -- path comes from the user's own flag or environment
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) && !explicit {
				continue
			}
			return DefaultConfig(), fmt.Errorf("failed to read config %s: %w", path, err)
		}

		var yamlData map[string]any
		if err := yaml.Unmarshal(data, &yamlData); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse config %s: %w", path, err)
		}

		cfg := parseConfig(yamlData)
		cfg.Path = path
		return cfg, nil
	}

	return DefaultConfig(), nil
}

func parseConfig(data map[string]any) *Config {
	cfg := DefaultConfig()

	if raw, ok := data["protected_branches"]; ok {
		cfg.ProtectedBranches = normalizeList(raw)
	}
	if remote, ok := data["default_remote"].(string); ok && strings.TrimSpace(remote) != "" {
		cfg.DefaultRemote = strings.TrimSpace(remote)
	}
	cfg.FetchOnStart = coerceBool(data["fetch_on_start"], cfg.FetchOnStart)
	cfg.ForceLocalDelete = coerceBool(data["force_local_delete"], cfg.ForceLocalDelete)
	cfg.CommandTimeout = coerceDuration(data["command_timeout"], cfg.CommandTimeout)
	cfg.GitHubProtection = coerceBool(data["github_protection"], cfg.GitHubProtection)
	cfg.KeepMarksOnRefresh = coerceBool(data["keep_marks_on_refresh"], cfg.KeepMarksOnRefresh)
	cfg.AutoRefresh = coerceBool(data["auto_refresh"], cfg.AutoRefresh)

	return cfg
}

// ApplyRepo merges repository settings over the user configuration.
// Repository protected branches add to the set rather than replace it.
func (c *Config) ApplyRepo(rc *RepoConfig) {
	if rc == nil {
		return
	}
	c.ProtectedBranches = appendUnique(c.ProtectedBranches, rc.ProtectedBranches...)
	if rc.DefaultRemote != nil && *rc.DefaultRemote != "" {
		c.DefaultRemote = *rc.DefaultRemote
	}
}

// AddProtected adds names to the protected list, skipping duplicates
func (c *Config) AddProtected(names ...string) {
	c.ProtectedBranches = appendUnique(c.ProtectedBranches, names...)
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" && !contains(list, v) {
			list = append(list, v)
		}
	}
	return list
}

func normalizeList(value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case string:
		return appendUnique(nil, strings.Split(v, ",")...)
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = appendUnique(out, s)
			}
		}
		if out == nil {
			return []string{}
		}
		return out
	}
	return []string{}
}

func coerceBool(value any, defaultVal bool) bool {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		text := strings.ToLower(strings.TrimSpace(v))
		switch text {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return defaultVal
}

// coerceDuration accepts Go duration strings ("90s", "2m") or a number of seconds
func coerceDuration(value any, defaultVal time.Duration) time.Duration {
	switch v := value.(type) {
	case int:
		if v < 0 {
			return defaultVal
		}
		return time.Duration(v) * time.Second
	case float64:
		if v < 0 {
			return defaultVal
		}
		return time.Duration(v * float64(time.Second))
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return defaultVal
		}
		if d, err := time.ParseDuration(text); err == nil && d >= 0 {
			return d
		}
		if secs, err := strconv.Atoi(text); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultVal
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return os.ExpandEnv(path), nil
}
