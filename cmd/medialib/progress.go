package main

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"medialib/internal/regen"
)

type barProgress struct {
	bar *progressbar.ProgressBar
}

func (p *barProgress) Advance() { _ = p.bar.Add(1) }
func (p *barProgress) Finish()  { _ = p.bar.Finish() }

type silentProgress struct{}

func (silentProgress) Advance() {}
func (silentProgress) Finish()  {}

// newProgress draws a progress bar on w when it is a terminal. Redirected
// output only receives the final report.
func newProgress(w io.Writer, total int) regen.Progress {
	if total <= 0 || !isTerminal(w) {
		return silentProgress{}
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Regenerating"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return &barProgress{bar: bar}
}
