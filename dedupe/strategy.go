package dedupe

import (
	"fmt"

	"dupefinder/imageprocessor"
	"dupefinder/types"
)

// classifier confirms candidates against one reference at a time
type classifier interface {
	// begin prepares a new reference. An error skips the reference.
	begin(ref types.ImageRecord) error
	// classify scores a candidate against the current reference. An error
	// skips the candidate.
	classify(candidate types.ImageRecord) (score float64, match bool, err error)
}

func newClassifier(opts Options) classifier {
	if opts.Strategy == StrategyFingerprint {
		return &fingerprintClassifier{maxDistance: opts.HashDistance}
	}
	return &pixelClassifier{
		registry:  opts.Registry,
		resampler: opts.Resampler,
		size:      opts.Size,
		tolerance: opts.Tolerance,
		threshold: opts.Threshold,
	}
}

// pixelClassifier decodes images and compares luminance grids. The
// reference grid is computed once per reference.
type pixelClassifier struct {
	registry  *imageprocessor.ImageLoaderRegistry
	resampler imageprocessor.Resampler
	size      int
	tolerance int
	threshold float64

	refLuminance []uint8
}

func (c *pixelClassifier) luminance(path string) ([]uint8, error) {
	img, err := c.registry.LoadImage(path)
	if err != nil {
		return nil, err
	}
	lum, err := c.resampler.Luminance(img, c.size)
	if err != nil {
		return nil, fmt.Errorf("resample %s: %w", path, err)
	}
	return lum, nil
}

func (c *pixelClassifier) begin(ref types.ImageRecord) error {
	lum, err := c.luminance(ref.Path)
	if err != nil {
		c.refLuminance = nil
		return err
	}
	c.refLuminance = lum
	return nil
}

func (c *pixelClassifier) classify(candidate types.ImageRecord) (float64, bool, error) {
	lum, err := c.luminance(candidate.Path)
	if err != nil {
		return 0, false, err
	}
	score, err := imageprocessor.LuminanceSimilarity(c.refLuminance, lum, c.size, c.tolerance)
	if err != nil {
		return 0, false, err
	}
	return score, score >= c.threshold, nil
}

// fingerprintClassifier accepts every candidate within the hash distance and
// scores it by the share of agreeing fingerprint bits.
type fingerprintClassifier struct {
	maxDistance int
	ref         types.Fingerprint
}

func (c *fingerprintClassifier) begin(ref types.ImageRecord) error {
	c.ref = ref.Fingerprint
	return nil
}

func (c *fingerprintClassifier) classify(candidate types.ImageRecord) (float64, bool, error) {
	distance := c.ref.Distance(candidate.Fingerprint)
	width := c.ref.Bits()
	if width <= 0 {
		return 0, false, fmt.Errorf("reference fingerprint for %s is empty", candidate.Path)
	}
	score := float64(width-distance) / float64(width) * 100
	if score < 0 {
		score = 0
	}
	return score, distance <= c.maxDistance, nil
}
