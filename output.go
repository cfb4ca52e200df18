package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"dupefinder/scanner"
	"dupefinder/types"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func validateOutputFormat(format string) error {
	switch format {
	case outputTable, outputJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (expected %s or %s)", format, outputTable, outputJSON)
	}
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func formatSimilarity(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64) + "%"
}

// renderGroups prints duplicate groups as a table, one row per member with
// the reference first.
func renderGroups(w io.Writer, groups []types.DuplicateGroup, colorize bool) error {
	if len(groups) == 0 {
		_, err := fmt.Fprintln(w, "No duplicates found.")
		return err
	}

	reference := text.Colors{text.FgGreen, text.Bold}
	rows := make([][]string, 0, len(groups)*2)
	duplicates := 0
	for i, group := range groups {
		for j, entry := range group {
			label, path := "", entry.Path
			if j == 0 {
				label = strconv.Itoa(i + 1)
				if colorize {
					path = reference.Sprint(path)
				}
			} else {
				duplicates++
			}
			rows = append(rows, []string{label, path, formatSimilarity(entry.Similarity)})
		}
	}

	rendered := renderTable([]string{"Group", "Path", "Similarity"}, rows, []columnAlignment{alignRight, alignLeft, alignRight})
	if _, err := fmt.Fprintln(w, rendered); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Found %d duplicate groups (%d duplicate files)\n", len(groups), duplicates)
	return err
}

type skippedJSON struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

func skippedForJSON(skipped []scanner.ProcessImageResult) []skippedJSON {
	out := make([]skippedJSON, 0, len(skipped))
	for _, s := range skipped {
		msg := ""
		if s.Error != nil {
			msg = s.Error.Error()
		}
		out = append(out, skippedJSON{Path: s.Path, Error: msg})
	}
	return out
}

type groupsJSON struct {
	Groups    []types.DuplicateGroup `json:"groups"`
	Skipped   []skippedJSON          `json:"skipped"`
	Cancelled bool                   `json:"cancelled,omitempty"`
}

func writeGroups(w io.Writer, format string, groups []types.DuplicateGroup, idx *scanner.IndexResult, cancelled bool) error {
	if format == outputJSON {
		if groups == nil {
			groups = []types.DuplicateGroup{}
		}
		var skipped []scanner.ProcessImageResult
		if idx != nil {
			skipped = idx.Skipped
		}
		return writeJSON(w, groupsJSON{Groups: groups, Skipped: skippedForJSON(skipped), Cancelled: cancelled})
	}
	if err := renderGroups(w, groups, shouldColorize(w)); err != nil {
		return err
	}
	if idx != nil && len(idx.Skipped) > 0 {
		if _, err := fmt.Fprintf(w, "Skipped %d unreadable files\n", len(idx.Skipped)); err != nil {
			return err
		}
	}
	if cancelled {
		_, err := fmt.Fprintln(w, "Interrupted: results are partial.")
		return err
	}
	return nil
}
