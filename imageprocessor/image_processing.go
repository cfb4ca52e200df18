package imageprocessor

import (
	"errors"
	"fmt"
	"image"
)

// ComputeSimilarity resizes both images to size×size through r, converts them
// to luminance and returns the share of positions whose luminance differs by
// at most tolerance, as a percentage in [0, 100]. A nil resampler selects the
// default imaging backend.
func ComputeSimilarity(a, b image.Image, size, tolerance int, r Resampler) (float64, error) {
	if a == nil || b == nil {
		return 0, errors.New("cannot compare a nil image")
	}
	if size < 1 {
		return 0, fmt.Errorf("comparison size %d must be positive", size)
	}
	if tolerance < 0 || tolerance > 255 {
		return 0, fmt.Errorf("tolerance %d must be within 0-255", tolerance)
	}
	if r == nil {
		var err error
		if r, err = NewResampler(DefaultResampler, DefaultFilter); err != nil {
			return 0, err
		}
	}

	la, err := r.Luminance(a, size)
	if err != nil {
		return 0, err
	}
	lb, err := r.Luminance(b, size)
	if err != nil {
		return 0, err
	}
	return LuminanceSimilarity(la, lb, size, tolerance)
}

// LuminanceSimilarity compares two pre-resampled luminance grids. It lets a
// caller resample a reference image once and compare it with many others.
func LuminanceSimilarity(la, lb []uint8, size, tolerance int) (float64, error) {
	total := size * size
	if len(la) != total || len(lb) != total {
		return 0, fmt.Errorf("luminance grids have %d and %d pixels, want %d", len(la), len(lb), total)
	}

	matches := 0
	for i := range la {
		diff := int(la[i]) - int(lb[i])
		if diff < 0 {
			diff = -diff
		}
		if diff <= tolerance {
			matches++
		}
	}
	return float64(matches) / float64(total) * 100, nil
}

// CompareFiles loads two files through the registry and scores them
func CompareFiles(registry *ImageLoaderRegistry, pathA, pathB string, size, tolerance int, r Resampler) (float64, error) {
	a, err := registry.LoadImage(pathA)
	if err != nil {
		return 0, err
	}
	b, err := registry.LoadImage(pathB)
	if err != nil {
		return 0, err
	}
	return ComputeSimilarity(a, b, size, tolerance, r)
}
