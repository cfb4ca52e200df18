package imageprocessor

import (
	"errors"
	"fmt"
	"image"

	"dupefinder/types"

	"github.com/corona10/goimagehash"
)

// DefaultFingerprintSize is the side of the reduced grid, giving 256-bit fingerprints
const DefaultFingerprintSize = 16

// ComputeFingerprint reduces img to an n×n luminance grid and sets one bit per
// cell that is brighter than the grid mean, in raster order. n must be a
// positive multiple of 8 so the fingerprint fills whole 64-bit words.
func ComputeFingerprint(img image.Image, n int) (types.Fingerprint, error) {
	if img == nil {
		return types.Fingerprint{}, errors.New("cannot fingerprint a nil image")
	}
	if err := ValidateFingerprintSize(n); err != nil {
		return types.Fingerprint{}, err
	}

	hash, err := goimagehash.ExtAverageHash(img, n, n)
	if err != nil {
		return types.Fingerprint{}, fmt.Errorf("average hash: %w", err)
	}
	return types.NewFingerprint(hash.GetHash(), n*n), nil
}

// ValidateFingerprintSize checks that n yields a whole number of 64-bit words
func ValidateFingerprintSize(n int) error {
	if n <= 0 || n%8 != 0 {
		return fmt.Errorf("fingerprint size %d must be a positive multiple of 8", n)
	}
	return nil
}

// FingerprintFile loads path through the registry and fingerprints it
func FingerprintFile(registry *ImageLoaderRegistry, path string, n int) (types.Fingerprint, error) {
	img, err := registry.LoadImage(path)
	if err != nil {
		return types.Fingerprint{}, err
	}
	fp, err := ComputeFingerprint(img, n)
	if err != nil {
		return types.Fingerprint{}, fmt.Errorf("fingerprint %s: %w", path, err)
	}
	return fp, nil
}
