package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"dupefinder/config"
	"dupefinder/database"
	"dupefinder/dedupe"
	"dupefinder/scanner"
	"dupefinder/signalhandler"
	"dupefinder/utils"
)

type searchFlags struct {
	threshold    float64
	hashDistance int
	size         int
	tolerance    int
	strategy     string
	verbose      bool
}

func (f *searchFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Float64Var(&f.threshold, "threshold", 0, "Minimum similarity percentage (0-100)")
	flags.IntVar(&f.hashDistance, "hash-distance", 0, "Maximum fingerprint Hamming distance for candidates (0-64)")
	flags.IntVar(&f.size, "size", 0, "Side of the comparison grid in pixels (8-512)")
	flags.IntVar(&f.tolerance, "tolerance", 0, "Per-pixel luminance tolerance (0-255)")
	flags.StringVar(&f.strategy, "strategy", "", "Similarity strategy (pixel or fingerprint)")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Log indexing progress")
}

// apply copies explicitly set flags over the config values
func (f *searchFlags) apply(cmd *cobra.Command, cfg *config.Config) dedupe.Params {
	flags := cmd.Flags()
	search := cfg.Search
	if flags.Changed("threshold") {
		search.Threshold = f.threshold
	}
	if flags.Changed("hash-distance") {
		search.HashDistance = f.hashDistance
	}
	if flags.Changed("size") {
		search.Size = f.size
	}
	if flags.Changed("tolerance") {
		search.Tolerance = f.tolerance
	}
	if flags.Changed("strategy") {
		search.Strategy = f.strategy
	}
	cfg.Search = search

	params := cfg.Params()
	params.Verbose = f.verbose
	return params
}

func newFindCommand(ctx *commandContext) *cobra.Command {
	var (
		search     searchFlags
		dir        string
		format     string
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Group visually similar images in a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutputFormat(format); err != nil {
				return err
			}
			loaded, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *loaded
			params := search.apply(cmd, &cfg)

			progress := newProgressReporter(cmd.ErrOrStderr(), "Fingerprinting")
			opts, err := ctx.engineOptions(&cfg, params, progress)
			if err != nil {
				return err
			}
			engine, err := dedupe.New(opts)
			if err != nil {
				return err
			}

			runCtx, stop := signalhandler.NotifyContext(cmd.Context())
			defer stop()

			started := time.Now()
			idx, err := engine.Index(runCtx, dir)
			if err != nil {
				return err
			}
			groups, groupErr := engine.Group(runCtx, idx)
			cancelled := errors.Is(groupErr, context.Canceled)
			if groupErr != nil && !cancelled {
				return groupErr
			}

			if err := writeGroups(cmd.OutOrStdout(), format, groups, idx, cancelled); err != nil {
				return err
			}

			if cmd.Flags().Changed("report") {
				cfg.Report.Enabled = true
				cfg.Report.Database = reportPath
				if cfg.Report.Database == "" {
					cfg.Report.Database = utils.GetDefaultReportPath()
				}
			}
			if cfg.Report.Enabled {
				report := database.Report{
					Dir:        dir,
					Params:     reportParams(engine.Options()),
					StartedAt:  started,
					FinishedAt: time.Now(),
					Cancelled:  cancelled,
					Records:    idx.Records,
					Skipped:    skippedForReport(idx.Skipped),
					Groups:     groups,
				}
				if err := saveReport(cmd, cfg.Report.Database, report); err != nil {
					return err
				}
			}
			return groupErr
		},
	}

	search.register(cmd)
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory to search")
	cmd.Flags().StringVar(&format, "format", outputTable, "Output format (table or json)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Store the run in this SQLite report database")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func reportParams(opts dedupe.Options) database.ReportParams {
	return database.ReportParams{
		Strategy:     string(opts.Strategy),
		Threshold:    opts.Threshold,
		HashDistance: opts.HashDistance,
		Size:         opts.Size,
		Tolerance:    opts.Tolerance,
	}
}

func skippedForReport(skipped []scanner.ProcessImageResult) []database.SkippedImage {
	out := make([]database.SkippedImage, 0, len(skipped))
	for _, s := range skipped {
		entry := database.SkippedImage{Path: s.Path}
		if s.Error != nil {
			entry.Error = s.Error.Error()
		}
		out = append(out, entry)
	}
	return out
}

// saveReport stores the run and prints the stored totals to stderr
func saveReport(cmd *cobra.Command, path string, report database.Report) error {
	path, err := utils.ExpandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	db, err := database.InitDatabase(path)
	if err != nil {
		return err
	}
	defer db.Close()

	runID, err := database.StoreReport(db, report)
	if err != nil {
		return err
	}
	stats, err := database.GetReportStats(db, runID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Report %s saved to %s: %d images, %d skipped, %d groups, %d duplicates\n",
		stats.RunID, path, stats.Images, stats.Skipped, stats.Groups, stats.Duplicates)
	return nil
}
