// Package imageprocessor loads images from disk and turns them into the two
// signals the duplicate search works with: a compact perceptual fingerprint
// and a pixel-level similarity score between two images.
package imageprocessor

import "image"

// ImageLoader is the interface that all image loaders must implement
type ImageLoader interface {
	// CanLoad checks if the loader can handle the given file
	CanLoad(path string) bool

	// LoadImage decodes the file into an image
	LoadImage(path string) (image.Image, error)
}
