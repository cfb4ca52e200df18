package dedupe

import (
	"errors"
	"fmt"
	"log/slog"

	"dupefinder/imageprocessor"
	"dupefinder/scanner"
	"dupefinder/utils"
)

// ErrInvalidParameter is wrapped by every parameter validation failure
var ErrInvalidParameter = errors.New("invalid parameter")

// Strategy selects how candidates are confirmed against their reference
type Strategy string

const (
	// StrategyPixel compares resampled luminance grids and keeps candidates
	// scoring at least Threshold.
	StrategyPixel Strategy = "pixel"
	// StrategyFingerprint trusts the fingerprint search alone and scores by
	// Hamming distance. No image is decoded while grouping.
	StrategyFingerprint Strategy = "fingerprint"
)

// ParseStrategy maps a name onto a Strategy; empty means pixel
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case "", StrategyPixel:
		return StrategyPixel, nil
	case StrategyFingerprint:
		return StrategyFingerprint, nil
	default:
		return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidParameter, name)
	}
}

// Params are the user-facing knobs of a duplicate search
type Params struct {
	Threshold    float64 // minimum similarity percentage, 0-100
	HashDistance int     // maximum fingerprint Hamming distance, 0-64
	Size         int     // comparison grid side, 8-512
	Tolerance    int     // per-pixel luminance tolerance, 0-255
	Verbose      bool
}

// DefaultParams returns the stock search parameters
func DefaultParams() Params {
	return Params{
		Threshold:    95,
		HashDistance: 5,
		Size:         64,
		Tolerance:    10,
	}
}

// Validate range-checks every parameter
func (p Params) Validate() error {
	checks := []error{
		utils.CheckRange("threshold", p.Threshold, 0, 100),
		utils.CheckRange("hash distance", p.HashDistance, 0, 64),
		utils.CheckRange("size", p.Size, 8, 512),
		utils.CheckRange("tolerance", p.Tolerance, 0, 255),
	}
	for _, err := range checks {
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidParameter, err)
		}
	}
	return nil
}

// Options configure an Engine
type Options struct {
	Params

	Strategy        Strategy
	FingerprintSize int
	Buckets         int
	Workers         int

	Resampler imageprocessor.Resampler
	Registry  *imageprocessor.ImageLoaderRegistry
	Logger    *slog.Logger
	Progress  scanner.ProgressReporter
}

// Option adjusts Options for FindDuplicates
type Option func(*Options)

// WithStrategy selects the confirmation strategy
func WithStrategy(s Strategy) Option {
	return func(o *Options) { o.Strategy = s }
}

// WithResampler replaces the default imaging resampler
func WithResampler(r imageprocessor.Resampler) Option {
	return func(o *Options) { o.Resampler = r }
}

// WithLogger sets the logger used for progress and skipped files
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithProgress attaches a progress reporter to the indexing pass
func WithProgress(p scanner.ProgressReporter) Option {
	return func(o *Options) { o.Progress = p }
}

// WithWorkers bounds the number of concurrent decoders
func WithWorkers(n int) Option {
	return func(o *Options) { o.Workers = n }
}

// WithFingerprintSize sets the fingerprint grid side
func WithFingerprintSize(n int) Option {
	return func(o *Options) { o.FingerprintSize = n }
}

// WithBuckets sets the exact-match table bucket count
func WithBuckets(n int) Option {
	return func(o *Options) { o.Buckets = n }
}

// WithRegistry replaces the default image loader registry
func WithRegistry(r *imageprocessor.ImageLoaderRegistry) Option {
	return func(o *Options) { o.Registry = r }
}
