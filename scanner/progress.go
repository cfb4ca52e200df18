package scanner

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"dupefinder/imageprocessor"
)

// progressLogInterval is how many processed files pass between progress lines
const progressLogInterval = 100

// ProgressReporter receives indexing progress, typically to drive a progress bar
type ProgressReporter interface {
	Start(total int)
	Increment(result ProcessImageResult)
	Finish()
}

// ProgressTracker counts processed files across worker goroutines and
// forwards each result to an optional reporter.
type ProgressTracker struct {
	mu         sync.Mutex
	processed  int
	errors     int
	totalFiles int
	started    time.Time

	logger   *slog.Logger
	level    slog.Level
	reporter ProgressReporter
}

// NewProgressTracker initializes the progress tracker. Verbose trackers log
// at info level, others at debug.
func NewProgressTracker(stats FileStats, logger *slog.Logger, verbose bool, reporter ProgressReporter) *ProgressTracker {
	level := slog.LevelDebug
	if verbose {
		level = slog.LevelInfo
	}
	tracker := &ProgressTracker{
		totalFiles: stats.Total,
		started:    time.Now(),
		logger:     logger,
		level:      level,
		reporter:   reporter,
	}
	if reporter != nil {
		reporter.Start(stats.Total)
	}
	return tracker
}

// Record updates the tracker state with one processing result
func (p *ProgressTracker) Record(result ProcessImageResult) {
	p.mu.Lock()
	p.processed++
	if !result.Success {
		p.errors++
	}
	processed := p.processed
	p.mu.Unlock()

	if processed%progressLogInterval == 0 {
		p.log("processed images", "count", processed, "total", p.totalFiles)
	}
	if p.reporter != nil {
		p.reporter.Increment(result)
	}
}

// Processed returns the number of results recorded so far
func (p *ProgressTracker) Processed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed
}

// Errors returns the number of failed results recorded so far
func (p *ProgressTracker) Errors() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errors
}

// Stop ends the progress tracking and logs completion statistics
func (p *ProgressTracker) Stop() {
	if p.reporter != nil {
		p.reporter.Finish()
	}
	processed, errors := p.Processed(), p.Errors()
	p.log("indexing complete",
		"count", processed-errors,
		"total", p.totalFiles,
		"errors", errors,
		"elapsed", time.Since(p.started).Round(time.Millisecond),
	)
}

func (p *ProgressTracker) log(msg string, args ...any) {
	if p.logger == nil {
		return
	}
	p.logger.Log(context.Background(), p.level, msg, args...)
}

// logStartupInfo describes the scan before work begins
func logStartupInfo(logger *slog.Logger, verbose bool, folder string, stats FileStats) {
	level := slog.LevelDebug
	if verbose {
		level = slog.LevelInfo
	}
	formats := make([]imageprocessor.FormatType, 0, len(stats.ByFormat))
	for format := range stats.ByFormat {
		formats = append(formats, format)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })

	args := []any{"dir", folder, "count", stats.Total}
	for _, format := range formats {
		args = append(args, string(format), stats.ByFormat[format])
	}
	logger.Log(context.Background(), level, "found image files", args...)
}
