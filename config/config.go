package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"dupefinder/utils"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

const (
	defaultConfigPath = "~/.config/dupefinder/config.toml"
	projectConfigName = "dupefinder.toml"
)

// Search contains the duplicate search parameters
type Search struct {
	Threshold    float64 `toml:"threshold"`
	HashDistance int     `toml:"hash_distance"`
	Size         int     `toml:"size"`
	Tolerance    int     `toml:"tolerance"`
	Strategy     string  `toml:"strategy"`
	Resampler    string  `toml:"resampler"`
	Filter       string  `toml:"filter"`
}

// Index contains fingerprinting and indexing settings
type Index struct {
	FingerprintSize int `toml:"fingerprint_size"`
	Buckets         int `toml:"buckets"`
	Workers         int `toml:"workers"`
}

// Logging contains configuration for log output
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// Report contains configuration for the SQLite result export
type Report struct {
	Enabled  bool   `toml:"enabled"`
	Database string `toml:"database"`
}

// Config encapsulates all configuration values for dupefinder
type Config struct {
	Search  Search  `toml:"search"`
	Index   Index   `toml:"index"`
	Logging Logging `toml:"logging"`
	Report  Report  `toml:"report"`
}

// DefaultConfigPath returns the absolute path of the per-user config file
func DefaultConfigPath() (string, error) {
	return utils.ExpandPath(defaultConfigPath)
}

// Load locates, parses and validates a configuration file. An explicit path
// wins; otherwise the per-user file and then ./dupefinder.toml are tried.
// Missing files leave the defaults in place. Load also returns the path it
// resolved and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := utils.ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	for _, candidate := range []string{defaultPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

// CreateSample writes the sample configuration file to path. Existing files
// are left alone unless overwrite is set.
func CreateSample(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s already exists", path)
		}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the configuration as TOML
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
