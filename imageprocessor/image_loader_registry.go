package imageprocessor

import (
	"fmt"
	"image"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
)

// ImageLoaderRegistry maps file extensions to the loader that decodes them
type ImageLoaderRegistry struct {
	loaders map[string]ImageLoader
	mutex   sync.RWMutex
}

// NewImageLoaderRegistry creates a registry with the standard loader bound to
// every allow-listed extension
func NewImageLoaderRegistry() *ImageLoaderRegistry {
	registry := &ImageLoaderRegistry{
		loaders: make(map[string]ImageLoader),
	}

	standardLoader := NewStandardImageLoader()
	for _, ext := range GetSupportedExtensions() {
		registry.RegisterLoader(ext, standardLoader)
	}
	return registry
}

// RegisterLoader binds a loader to a file extension, replacing any previous one
func (r *ImageLoaderRegistry) RegisterLoader(ext string, loader ImageLoader) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	r.loaders[ext] = loader
}

// GetLoader returns the loader for the path's extension, or nil
func (r *ImageLoaderRegistry) GetLoader(path string) ImageLoader {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.loaders[strings.ToLower(filepath.Ext(path))]
}

// CanLoadFile checks if any registered loader handles the file extension
func (r *ImageLoaderRegistry) CanLoadFile(path string) bool {
	return r.GetLoader(path) != nil
}

// LoadImage decodes the file with its registered loader. Missing files wrap
// fs.ErrNotExist. Decoder panics on malformed input are turned into errors.
func (r *ImageLoaderRegistry) LoadImage(path string) (img image.Image, err error) {
	loader := r.GetLoader(path)
	if loader == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	if !loader.CanLoad(path) {
		if !fileExists(path) {
			return nil, fmt.Errorf("load %s: %w", path, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	defer func() {
		if rec := recover(); rec != nil {
			img = nil
			err = fmt.Errorf("decode %s: panic: %v", path, rec)
		}
	}()

	img, err = loader.LoadImage(path)
	if err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("decode %s: image has no pixels", path)
	}
	return img, nil
}
