package scanner

import (
	"log/slog"

	"dupefinder/imageprocessor"
	"dupefinder/index"
	"dupefinder/types"
)

// BuildOptions defines the options for indexing a folder
type BuildOptions struct {
	FingerprintSize int // side of the fingerprint grid, multiple of 8
	Buckets         int // exact-match table buckets
	Workers         int // concurrent decoders, <= 0 picks a default
	Verbose         bool

	Registry *imageprocessor.ImageLoaderRegistry
	Logger   *slog.Logger
	Progress ProgressReporter
}

// ProcessImageResult holds the result of processing an image
type ProcessImageResult struct {
	Path    string
	Success bool
	Error   error
}

// FileStats tracks information about files to be processed
type FileStats struct {
	Total    int
	ByFormat map[imageprocessor.FormatType]int
}

// IndexResult is everything one indexing pass produced. Records keep scan
// order and every record is present in both indexes.
type IndexResult struct {
	Exact   *index.HashTable
	Metric  *index.BKTree
	Records []types.ImageRecord
	Skipped []ProcessImageResult
}

// Len returns the number of indexed records
func (r *IndexResult) Len() int {
	return len(r.Records)
}

func (r *IndexResult) add(record types.ImageRecord) {
	r.Exact.Insert(record.Fingerprint, record)
	r.Metric.Add(record.Fingerprint, record)
	r.Records = append(r.Records, record)
}
