package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// RepoConfigFile is the repository config file name inside .git
const RepoConfigFile = ".reaper_config"

// RepoConfig represents the repository configuration
type RepoConfig struct {
	ProtectedBranches []string `json:"protectedBranches,omitempty"`
	DefaultRemote     *string  `json:"defaultRemote,omitempty"`
}

// RepoConfigPath returns where the repository configuration lives
func RepoConfigPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".git", RepoConfigFile)
}

// GetRepoConfig reads the repository configuration
func GetRepoConfig(repoRoot string) (*RepoConfig, error) {
	data, err := os.ReadFile(RepoConfigPath(repoRoot))
	if err != nil {
		// Config doesn't exist - return default
		return &RepoConfig{}, nil
	}

	var config RepoConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse repo config: %w", err)
	}

	return &config, nil
}

func saveRepoConfig(repoRoot string, config *RepoConfig) error {
	configJSON, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(RepoConfigPath(repoRoot), configJSON, 0600)
}

// AddProtectedBranch protects a branch name in this repository
func AddProtectedBranch(repoRoot string, name string) error {
	config, err := GetRepoConfig(repoRoot)
	if err != nil {
		config = &RepoConfig{}
	}

	if contains(config.ProtectedBranches, name) {
		return fmt.Errorf("'%s' is already protected", name)
	}
	config.ProtectedBranches = append(config.ProtectedBranches, name)

	return saveRepoConfig(repoRoot, config)
}

// RemoveProtectedBranch removes a branch name added by AddProtectedBranch.
// Names protected by the user config or the defaults are unaffected.
func RemoveProtectedBranch(repoRoot string, name string) error {
	config, err := GetRepoConfig(repoRoot)
	if err != nil {
		return err
	}

	kept := config.ProtectedBranches[:0]
	found := false
	for _, b := range config.ProtectedBranches {
		if b == name {
			found = true
			continue
		}
		kept = append(kept, b)
	}
	if !found {
		return fmt.Errorf("'%s' is not protected in this repository", name)
	}
	config.ProtectedBranches = kept

	return saveRepoConfig(repoRoot, config)
}

// SetDefaultRemote updates the remote used when a branch records no alias
func SetDefaultRemote(repoRoot string, remote string) error {
	config, err := GetRepoConfig(repoRoot)
	if err != nil {
		config = &RepoConfig{}
	}

	config.DefaultRemote = &remote

	return saveRepoConfig(repoRoot, config)
}

// contains checks if a string slice contains a value
func contains(slice []string, value string) bool {
	for _, v := range slice {
		if v == value {
			return true
		}
	}
	return false
}
