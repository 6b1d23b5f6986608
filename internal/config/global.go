package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/pubdb/config.yml.
type GlobalConfig struct {
	LogMode       string `yaml:"log_mode,omitempty"`
	DefaultFormat string `yaml:"default_format,omitempty"`
	DefaultRoot   string `yaml:"default_root,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "pubdb"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/pubdb/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}
	if err := ValidateLogMode(cfg.LogMode); err != nil {
		return nil, fmt.Errorf("global config: %w", err)
	}
	if err := ValidateFormat(cfg.DefaultFormat); err != nil {
		return nil, fmt.Errorf("global config: %w", err)
	}
	cfg.DefaultRoot = ExpandPath(cfg.DefaultRoot)

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// ValidFormats lists the export formats.
var ValidFormats = []string{"bibtex", "html", "wos"}

// ValidateFormat checks that an export format name is known.
func ValidateFormat(format string) error {
	if format == "" {
		return nil
	}
	for _, valid := range ValidFormats {
		if format == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid format: %s (valid: %v)", format, ValidFormats)
}

// ResolveLogMode picks the log mode from, in order of precedence, the
// environment, the repository config, the global config, then "dev".
func ResolveLogMode(repo *Config, global *GlobalConfig) string {
	if mode := os.Getenv(LogModeEnv); mode != "" {
		return mode
	}
	if repo != nil && repo.LogMode != "" {
		return repo.LogMode
	}
	if global != nil && global.LogMode != "" {
		return global.LogMode
	}
	return "dev"
}

// ResolveFormat returns the requested export format, falling back to the
// global default and then to bibtex.
func ResolveFormat(requested string, global *GlobalConfig) string {
	if requested != "" {
		return requested
	}
	if global != nil && global.DefaultFormat != "" {
		return global.DefaultFormat
	}
	return "bibtex"
}
