// Package scanner lists the images in a folder and indexes their
// fingerprints for duplicate search.
package scanner

import (
	"context"
	"fmt"

	"dupefinder/imageprocessor"
	"dupefinder/index"
	"dupefinder/logging"
	"dupefinder/signalhandler"
	"dupefinder/types"

	"golang.org/x/sync/errgroup"
)

type fingerprintSlot struct {
	fingerprint types.Fingerprint
	err         error
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.FingerprintSize == 0 {
		o.FingerprintSize = imageprocessor.DefaultFingerprintSize
	}
	if o.Buckets <= 0 {
		o.Buckets = index.DefaultBuckets
	}
	if o.Workers <= 0 {
		o.Workers = signalhandler.GetOptimalProcs()
	}
	if o.Registry == nil {
		o.Registry = imageprocessor.NewImageLoaderRegistry()
	}
	if o.Logger == nil {
		o.Logger = logging.NewNop()
	}
	return o
}

// BuildIndex scans folder, fingerprints every image and inserts the results
// into an exact-match table and a BK-tree. Files that cannot be decoded are
// skipped and reported in IndexResult.Skipped. Decoding runs on up to
// opts.Workers goroutines; insertion happens afterwards in scan order so the
// result does not depend on scheduling.
func BuildIndex(ctx context.Context, folder string, opts BuildOptions) (*IndexResult, error) {
	opts = opts.withDefaults()
	if err := imageprocessor.ValidateFingerprintSize(opts.FingerprintSize); err != nil {
		return nil, err
	}

	entries, err := ScanFolder(folder)
	if err != nil {
		return nil, err
	}

	stats := countFiles(entries)
	logStartupInfo(opts.Logger, opts.Verbose, folder, stats)

	tracker := NewProgressTracker(stats, opts.Logger, opts.Verbose, opts.Progress)
	slots := make([]fingerprintSlot, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, entry := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fp, err := imageprocessor.FingerprintFile(opts.Registry, entry.Path, opts.FingerprintSize)
			slots[i] = fingerprintSlot{fingerprint: fp, err: err}
			tracker.Record(ProcessImageResult{Path: entry.Path, Success: err == nil, Error: err})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		tracker.Stop()
		return nil, fmt.Errorf("index %s: %w", folder, err)
	}
	tracker.Stop()

	result := &IndexResult{
		Exact:  index.NewHashTable(opts.Buckets),
		Metric: index.NewBKTree(),
	}
	for i, entry := range entries {
		if slots[i].err != nil {
			if opts.Verbose {
				opts.Logger.Warn("skipping unreadable image", "path", entry.Path, "error", slots[i].err)
			} else {
				opts.Logger.Debug("skipping unreadable image", "path", entry.Path, "error", slots[i].err)
			}
			result.Skipped = append(result.Skipped, ProcessImageResult{Path: entry.Path, Error: slots[i].err})
			continue
		}
		result.add(types.ImageRecord{Path: entry.Path, Fingerprint: slots[i].fingerprint})
	}

	if opts.Verbose {
		opts.Logger.Info("index built",
			"dir", folder,
			"count", result.Len(),
			"skipped", len(result.Skipped),
			"nodes", result.Metric.Nodes(),
			"depth", result.Metric.Depth(),
		)
	}
	return result, nil
}
