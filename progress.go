package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"dupefinder/scanner"
)

// barReporter draws a progress bar while images are fingerprinted
type barReporter struct {
	w           io.Writer
	description string
	bar         *progressbar.ProgressBar
}

// newProgressReporter returns nil unless w is an interactive terminal
func newProgressReporter(w io.Writer, description string) scanner.ProgressReporter {
	file, ok := w.(*os.File)
	if !ok || !isatty.IsTerminal(file.Fd()) {
		return nil
	}
	return &barReporter{w: w, description: description}
}

func (r *barReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription(r.description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *barReporter) Increment(scanner.ProcessImageResult) {
	if r.bar != nil {
		_ = r.bar.Add(1)
	}
}

func (r *barReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}
