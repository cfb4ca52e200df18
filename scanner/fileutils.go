package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dupefinder/imageprocessor"
	"dupefinder/types"
)

// ErrNotDirectory is returned when the scan target exists but is not a directory
var ErrNotDirectory = errors.New("not a directory")

// ScanFolder lists the image files directly inside path, sorted by name.
// Subdirectories are not descended into. Symlinks count when they resolve to
// a regular file.
func ScanFolder(path string) ([]types.ScanEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: %w", path, ErrNotDirectory)
	}

	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	var entries []types.ScanEntry
	for _, entry := range dirEntries {
		name := entry.Name()
		if !imageprocessor.IsImageFile(name) {
			continue
		}
		full := filepath.Join(path, name)
		if !isRegularFile(entry, full) {
			continue
		}
		entries = append(entries, types.ScanEntry{Name: name, Path: full})
	}
	return entries, nil
}

func isRegularFile(entry os.DirEntry, full string) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.Mode().IsRegular()
}

// countFiles classifies scan entries by format
func countFiles(entries []types.ScanEntry) FileStats {
	stats := FileStats{
		Total:    len(entries),
		ByFormat: make(map[imageprocessor.FormatType]int),
	}
	for _, entry := range entries {
		stats.ByFormat[imageprocessor.GetFileFormat(entry.Name)]++
	}
	return stats
}
