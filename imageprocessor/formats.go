package imageprocessor

import (
	"path/filepath"
	"sort"
	"strings"
)

// FormatType represents the type of image format
type FormatType string

const (
	FormatUnknown FormatType = ""
	FormatJPEG    FormatType = "jpeg"
	FormatPNG     FormatType = "png"
	FormatBMP     FormatType = "bmp"
	FormatWEBP    FormatType = "webp"
)

// formatExtensions is the allow-list of extensions considered images
var formatExtensions = map[string]FormatType{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".bmp":  FormatBMP,
	".webp": FormatWEBP,
}

// GetFileFormat determines the format from the file extension, ignoring case
func GetFileFormat(path string) FormatType {
	ext := strings.ToLower(filepath.Ext(path))
	if format, ok := formatExtensions[ext]; ok {
		return format
	}
	return FormatUnknown
}

// IsImageFile reports whether the extension is on the allow-list
func IsImageFile(path string) bool {
	return GetFileFormat(path) != FormatUnknown
}

// GetSupportedExtensions returns the allow-listed extensions, sorted
func GetSupportedExtensions() []string {
	exts := make([]string, 0, len(formatExtensions))
	for ext := range formatExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
