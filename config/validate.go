package config

import (
	"fmt"

	"dupefinder/dedupe"
	"dupefinder/imageprocessor"
	"dupefinder/logging"
	"dupefinder/utils"
)

// Validate ensures the configuration is usable
func (c *Config) Validate() error {
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateIndex(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSearch() error {
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if _, err := dedupe.ParseStrategy(c.Search.Strategy); err != nil {
		return fmt.Errorf("search.strategy: %w", err)
	}
	if _, err := imageprocessor.NewResampler(c.Search.Resampler, c.Search.Filter); err != nil {
		return fmt.Errorf("search.resampler: %w", err)
	}
	return nil
}

func (c *Config) validateIndex() error {
	if err := utils.CheckRange("index.fingerprint_size", c.Index.FingerprintSize, 8, 64); err != nil {
		return err
	}
	if err := imageprocessor.ValidateFingerprintSize(c.Index.FingerprintSize); err != nil {
		return fmt.Errorf("index.fingerprint_size: %w", err)
	}
	if c.Index.Buckets <= 0 {
		return fmt.Errorf("index.buckets must be positive, got %d", c.Index.Buckets)
	}
	if c.Index.Workers < 0 {
		return fmt.Errorf("index.workers must not be negative, got %d", c.Index.Workers)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "console", "text", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
}

// Params converts the search section into engine parameters
func (c *Config) Params() dedupe.Params {
	return dedupe.Params{
		Threshold:    c.Search.Threshold,
		HashDistance: c.Search.HashDistance,
		Size:         c.Search.Size,
		Tolerance:    c.Search.Tolerance,
	}
}
