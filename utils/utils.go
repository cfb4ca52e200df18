// Package utils holds small helpers shared by the command line and config
// layers.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Number covers the numeric parameter types validated by CheckRange
type Number interface {
	~int | ~int64 | ~float64
}

// CheckRange returns an error when value lies outside [min, max]
func CheckRange[T Number](name string, value, min, max T) error {
	if value < min || value > max {
		return fmt.Errorf("%s must be between %v and %v, got %v", name, min, max, value)
	}
	return nil
}

// ExpandPath resolves a leading ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if path == "" || !strings.HasPrefix(path, "~") {
		return path, nil
	}
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// GetDefaultReportPath returns where reports go when none is configured:
// $XDG_DATA_HOME/dupefinder/reports.db, falling back to ~/.local/share and
// finally the working directory.
func GetDefaultReportPath() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "dupefinder", "reports.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "dupefinder-reports.db"
	}
	return filepath.Join(home, ".local", "share", "dupefinder", "reports.db")
}
