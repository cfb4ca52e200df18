package config

import (
	"dupefinder/imageprocessor"
	"dupefinder/index"
)

// Default returns the configuration used when no file overrides it
func Default() Config {
	return Config{
		Search: Search{
			Threshold:    95,
			HashDistance: 5,
			Size:         64,
			Tolerance:    10,
			Strategy:     "pixel",
			Resampler:    imageprocessor.DefaultResampler,
			Filter:       imageprocessor.DefaultFilter,
		},
		Index: Index{
			FingerprintSize: imageprocessor.DefaultFingerprintSize,
			Buckets:         index.DefaultBuckets,
			Workers:         0,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}
