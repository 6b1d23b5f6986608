// Package config handles repository and global configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents repository configuration stored in .pubdb/config.json.
type Config struct {
	PDFRoot    string `json:"pdf_root,omitempty"` // Folder that relative pdf paths resolve against
	FailureLog bool   `json:"failure_log"`        // Journal failed import entries to failures.jsonl
	LogMode    string `json:"log_mode,omitempty"` // dev, prod or quiet; overrides the global setting
}

const (
	RepoDir     = ".pubdb"
	ConfigFile  = "config.json"
	DBFile      = "pubdb.db"
	FailureFile = "failures.jsonl"

	// RootEnv names the environment variable that pins the repository root.
	RootEnv = "PUBDB_ROOT"
	// LogModeEnv names the environment variable that overrides the log mode.
	LogModeEnv = "PUBDB_LOG_MODE"
)

// ValidLogModes lists the accepted log_mode values.
var ValidLogModes = []string{"dev", "prod", "quiet"}

// RepoPath returns the path to the .pubdb directory from a root path.
func RepoPath(root string) string {
	return filepath.Join(root, RepoDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, RepoDir, ConfigFile)
}

// DBPath returns the path to the SQLite database from a root path.
func DBPath(root string) string {
	return filepath.Join(root, RepoDir, DBFile)
}

// FailurePath returns the path to the failure journal from a root path.
func FailurePath(root string) string {
	return filepath.Join(root, RepoDir, FailureFile)
}

// IsRepository checks if the given path contains a pubdb repository.
func IsRepository(root string) bool {
	info, err := os.Stat(RepoPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a pubdb repository.
// Returns the repository root path or an error if not found.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a pubdb repository (no %s directory found)", RepoDir)
		}
		abs = parent
	}
}

// Init creates the .pubdb directory and a default config at root.
func Init(root string) (*Config, error) {
	if IsRepository(root) {
		return nil, fmt.Errorf("repository already exists at %s", RepoPath(root))
	}
	if err := os.MkdirAll(RepoPath(root), 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", RepoDir, err)
	}
	cfg := &Config{}
	if err := cfg.Save(root); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads configuration from the repository at the given root.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Set assigns a config value by its JSON key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "pdf_root":
		if err := ValidatePDFRoot(value); err != nil {
			return err
		}
		c.PDFRoot = value
	case "failure_log":
		switch value {
		case "true", "on", "1":
			c.FailureLog = true
		case "false", "off", "0":
			c.FailureLog = false
		default:
			return fmt.Errorf("invalid failure_log: %s (want true or false)", value)
		}
	case "log_mode":
		if err := ValidateLogMode(value); err != nil {
			return err
		}
		c.LogMode = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// ValidatePDFRoot checks that the PDF root path exists and is a directory.
func ValidatePDFRoot(path string) error {
	if path == "" {
		return nil // Empty is allowed (not yet configured)
	}

	expandedPath := ExpandPath(path)

	info, err := os.Stat(expandedPath)
	if err != nil {
		return fmt.Errorf("path does not exist: %s", expandedPath)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", expandedPath)
	}

	return nil
}

// ValidateLogMode checks that the log mode value is valid.
func ValidateLogMode(mode string) error {
	if mode == "" {
		return nil
	}
	for _, valid := range ValidLogModes {
		if mode == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log_mode: %s (valid: %v)", mode, ValidLogModes)
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
