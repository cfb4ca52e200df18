package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dupefinder/imageprocessor"
)

type compareJSON struct {
	A          string  `json:"a"`
	B          string  `json:"b"`
	Similarity float64 `json:"similarity"`
	Distance   int     `json:"distance"`
	Match      bool    `json:"match"`
}

func newCompareCommand(ctx *commandContext) *cobra.Command {
	var (
		search searchFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "compare <image-a> <image-b>",
		Short: "Score the similarity of two images",
		Args:  cobra.ExactArgs(2),
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
			if err := params.Validate(); err != nil {
				return err
			}
			resampler, err := imageprocessor.NewResampler(cfg.Search.Resampler, cfg.Search.Filter)
			if err != nil {
				return err
			}

			registry := imageprocessor.NewImageLoaderRegistry()
			similarity, err := imageprocessor.CompareFiles(registry, args[0], args[1], params.Size, params.Tolerance, resampler)
			if err != nil {
				return err
			}
			fpA, err := imageprocessor.FingerprintFile(registry, args[0], cfg.Index.FingerprintSize)
			if err != nil {
				return err
			}
			fpB, err := imageprocessor.FingerprintFile(registry, args[1], cfg.Index.FingerprintSize)
			if err != nil {
				return err
			}

			result := compareJSON{
				A:          args[0],
				B:          args[1],
				Similarity: similarity,
				Distance:   fpA.Distance(fpB),
				Match:      similarity >= params.Threshold,
			}
			out := cmd.OutOrStdout()
			if format == outputJSON {
				return writeJSON(out, result)
			}
			verdict := "different"
			if result.Match {
				verdict = "duplicate"
			}
			rows := [][]string{
				{"Similarity", formatSimilarity(result.Similarity)},
				{"Fingerprint distance", fmt.Sprintf("%d/%d", result.Distance, fpA.Bits())},
				{"Verdict", verdict},
			}
			_, err = fmt.Fprintln(out, renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
			return err
		},
	}

	search.register(cmd)
	cmd.Flags().StringVar(&format, "format", outputTable, "Output format (table or json)")
	return cmd
}
