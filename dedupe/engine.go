// Package dedupe groups visually duplicate images. Candidates come from a
// BK-tree search over perceptual fingerprints and are confirmed against the
// group's reference image by the configured strategy.
package dedupe

import (
	"context"
	"fmt"
	"sort"

	"dupefinder/imageprocessor"
	"dupefinder/logging"
	"dupefinder/scanner"
	"dupefinder/types"
)

// groupingLogInterval is how many references pass between verbose progress lines
const groupingLogInterval = 50

// Engine runs duplicate searches with a fixed configuration
type Engine struct {
	opts Options
}

// New validates opts and fills in defaults
func New(opts Options) (*Engine, error) {
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	strategy, err := ParseStrategy(string(opts.Strategy))
	if err != nil {
		return nil, err
	}
	opts.Strategy = strategy

	if opts.FingerprintSize == 0 {
		opts.FingerprintSize = imageprocessor.DefaultFingerprintSize
	}
	if err := imageprocessor.ValidateFingerprintSize(opts.FingerprintSize); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	if opts.Resampler == nil {
		r, err := imageprocessor.NewResampler(imageprocessor.DefaultResampler, imageprocessor.DefaultFilter)
		if err != nil {
			return nil, err
		}
		opts.Resampler = r
	}
	if opts.Registry == nil {
		opts.Registry = imageprocessor.NewImageLoaderRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	return &Engine{opts: opts}, nil
}

// Options returns the effective configuration
func (e *Engine) Options() Options {
	return e.opts
}

// Index scans and fingerprints dir with the engine's settings
func (e *Engine) Index(ctx context.Context, dir string) (*scanner.IndexResult, error) {
	return scanner.BuildIndex(ctx, dir, scanner.BuildOptions{
		FingerprintSize: e.opts.FingerprintSize,
		Buckets:         e.opts.Buckets,
		Workers:         e.opts.Workers,
		Verbose:         e.opts.Verbose,
		Registry:        e.opts.Registry,
		Logger:          e.opts.Logger,
		Progress:        e.opts.Progress,
	})
}

// Run indexes dir and groups its duplicates. Scan errors are returned
// unchanged.
func (e *Engine) Run(ctx context.Context, dir string) ([]types.DuplicateGroup, error) {
	idx, err := e.Index(ctx, dir)
	if err != nil {
		return nil, err
	}
	return e.Group(ctx, idx)
}

// Group walks the records in scan order. Each record not yet placed in a
// group becomes a reference: its fingerprint neighbours are confirmed against
// it and the confirmed ones join its group. Candidates are only ever compared
// with the reference, so grouping is greedy rather than transitive.
//
// When ctx is cancelled Group returns the groups finished so far, plus the
// group under construction if it is non-empty, together with ctx.Err().
func (e *Engine) Group(ctx context.Context, idx *scanner.IndexResult) ([]types.DuplicateGroup, error) {
	order := make(map[string]int, len(idx.Records))
	for i, record := range idx.Records {
		order[record.Path] = i
	}

	cls := newClassifier(e.opts)
	processed := make(map[string]struct{}, len(idx.Records))
	var groups []types.DuplicateGroup

	for i, ref := range idx.Records {
		if err := ctx.Err(); err != nil {
			return groups, err
		}
		if e.opts.Verbose && i > 0 && i%groupingLogInterval == 0 {
			e.opts.Logger.Info("grouping images", "count", i, "total", len(idx.Records), "groups", len(groups))
		}
		if _, done := processed[ref.Path]; done {
			continue
		}

		candidates := idx.Metric.Search(ref.Fingerprint, e.opts.HashDistance)
		if len(candidates) < 2 {
			continue
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return order[candidates[i].Path] < order[candidates[j].Path]
		})

		if err := cls.begin(ref); err != nil {
			e.opts.Logger.Debug("skipping unreadable reference", "path", ref.Path, "error", err)
			continue
		}

		var group types.DuplicateGroup
		for _, candidate := range candidates {
			if err := ctx.Err(); err != nil {
				if len(group) > 0 {
					groups = append(groups, group)
				}
				return groups, err
			}
			if candidate.Path == ref.Path {
				continue
			}
			if _, done := processed[candidate.Path]; done {
				continue
			}

			score, match, err := cls.classify(candidate)
			if err != nil {
				e.opts.Logger.Debug("skipping unreadable candidate", "path", candidate.Path, "error", err)
				continue
			}
			if !match {
				continue
			}
			if len(group) == 0 {
				group = append(group, types.DuplicateEntry{Path: ref.Path, Similarity: 100})
			}
			group = append(group, types.DuplicateEntry{Path: candidate.Path, Similarity: score})
			processed[candidate.Path] = struct{}{}
		}

		if len(group) > 0 {
			processed[ref.Path] = struct{}{}
			groups = append(groups, group)
			e.opts.Logger.Debug("duplicate group", "path", ref.Path, "count", len(group))
		}
	}

	if e.opts.Verbose {
		e.opts.Logger.Info("grouping complete", "groups", len(groups), "total", len(idx.Records))
	}
	return groups, nil
}

// FindDuplicates validates params, indexes dir and returns its duplicate
// groups. Parameter errors wrap ErrInvalidParameter and are reported before
// the directory is touched.
func FindDuplicates(ctx context.Context, dir string, params Params, opts ...Option) ([]types.DuplicateGroup, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	o := Options{Params: params}
	for _, opt := range opts {
		opt(&o)
	}
	engine, err := New(o)
	if err != nil {
		return nil, err
	}
	return engine.Run(ctx, dir)
}

// ExactDuplicates groups records whose fingerprints are identical, using the
// exact-match table. Groups follow scan order and every member scores 100.
func ExactDuplicates(idx *scanner.IndexResult) []types.DuplicateGroup {
	seen := make(map[string]struct{}, len(idx.Records))
	var groups []types.DuplicateGroup

	for _, record := range idx.Records {
		if _, done := seen[record.Path]; done {
			continue
		}
		matches := idx.Exact.Get(record.Fingerprint)
		if len(matches) < 2 {
			continue
		}
		group := make(types.DuplicateGroup, 0, len(matches))
		for _, m := range matches {
			seen[m.Path] = struct{}{}
			group = append(group, types.DuplicateEntry{Path: m.Path, Similarity: 100})
		}
		groups = append(groups, group)
	}
	return groups
}
