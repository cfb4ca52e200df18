package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dupefinder/scanner"
	"dupefinder/signalhandler"
	"dupefinder/types"
)

type indexJSON struct {
	Records []types.ImageRecord `json:"records"`
	Skipped []skippedJSON       `json:"skipped"`
}

// buildIndex fingerprints dir with the configured index settings
func buildIndex(cmd *cobra.Command, ctx *commandContext, dir string, verbose bool) (*scanner.IndexResult, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}

	runCtx, stop := signalhandler.NotifyContext(cmd.Context())
	defer stop()

	return scanner.BuildIndex(runCtx, dir, scanner.BuildOptions{
		FingerprintSize: cfg.Index.FingerprintSize,
		Buckets:         cfg.Index.Buckets,
		Workers:         cfg.Index.Workers,
		Verbose:         verbose,
		Logger:          logger,
		Progress:        newProgressReporter(cmd.ErrOrStderr(), "Fingerprinting"),
	})
}

func newIndexCommand(ctx *commandContext) *cobra.Command {
	var (
		dir     string
		format  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Fingerprint the images in a directory and list them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutputFormat(format); err != nil {
				return err
			}
			idx, err := buildIndex(cmd, ctx, dir, verbose)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == outputJSON {
				records := idx.Records
				if records == nil {
					records = []types.ImageRecord{}
				}
				return writeJSON(out, indexJSON{Records: records, Skipped: skippedForJSON(idx.Skipped)})
			}

			rows := make([][]string, 0, len(idx.Records)+len(idx.Skipped))
			for _, record := range idx.Records {
				rows = append(rows, []string{record.Path, record.Fingerprint.String()})
			}
			for _, skipped := range idx.Skipped {
				rows = append(rows, []string{skipped.Path, "skipped: " + skipped.Error.Error()})
			}
			fmt.Fprintln(out, renderTable([]string{"Path", "Fingerprint"}, rows, nil))
			_, err = fmt.Fprintf(out, "Indexed %d images (%d distinct fingerprints, %d skipped)\n",
				idx.Len(), idx.Metric.Nodes(), len(idx.Skipped))
			return err
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory to index")
	cmd.Flags().StringVar(&format, "format", outputTable, "Output format (table or json)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log indexing progress")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}
