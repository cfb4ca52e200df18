package main

import (
	"github.com/spf13/cobra"

	"dupefinder/dedupe"
)

func newExactCommand(ctx *commandContext) *cobra.Command {
	var (
		dir     string
		format  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "exact",
		Short: "Group images with identical fingerprints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutputFormat(format); err != nil {
				return err
			}
			idx, err := buildIndex(cmd, ctx, dir, verbose)
			if err != nil {
				return err
			}
			return writeGroups(cmd.OutOrStdout(), format, dedupe.ExactDuplicates(idx), idx, false)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory to search")
	cmd.Flags().StringVar(&format, "format", outputTable, "Output format (table or json)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log indexing progress")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}
