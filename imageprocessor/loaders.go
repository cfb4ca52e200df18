package imageprocessor

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"

	// Decoders outside the imaging defaults.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned when no loader handles a file extension
var ErrUnsupportedFormat = errors.New("unsupported image format")

// BaseImageLoader provides common functionality for all image loaders
type BaseImageLoader struct {
	// Formats this loader can handle
	SupportedFormats []FormatType
}

// CanLoad checks if this loader supports the file's format
func (l *BaseImageLoader) CanLoad(path string) bool {
	format := GetFileFormat(path)
	for _, supported := range l.SupportedFormats {
		if format == supported {
			return fileExists(path)
		}
	}
	return false
}

// DefaultLoadImage decodes the file and applies its EXIF orientation
func (l *BaseImageLoader) DefaultLoadImage(path string) (image.Image, error) {
	if !hasFileContent(path) {
		return nil, fmt.Errorf("load %s: file is empty or missing", path)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return img, nil
}

// StandardImageLoader handles JPEG, PNG, BMP and WebP files
type StandardImageLoader struct {
	BaseImageLoader
}

// NewStandardImageLoader creates a loader for every allow-listed format
func NewStandardImageLoader() *StandardImageLoader {
	return &StandardImageLoader{
		BaseImageLoader: BaseImageLoader{
			SupportedFormats: []FormatType{FormatJPEG, FormatPNG, FormatBMP, FormatWEBP},
		},
	}
}

// LoadImage implements ImageLoader
func (l *StandardImageLoader) LoadImage(path string) (image.Image, error) {
	return l.DefaultLoadImage(path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func hasFileContent(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}
