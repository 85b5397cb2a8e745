package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// mark tags a conversion or check line with its state.
type mark int

const (
	markDone mark = iota
	markMissing
	markSkipped
	markFailed
)

var markLabels = map[mark]string{
	markDone:    "done",
	markMissing: "missing",
	markSkipped: "skipped",
	markFailed:  "failed",
}

var markColors = map[mark]text.Colors{
	markDone:    {text.FgGreen},
	markMissing: {text.FgYellow},
	markSkipped: {text.FgHiBlack},
	markFailed:  {text.FgRed, text.Bold},
}

const (
	fieldLabelWidth = 18
	fieldIndent     = "  "
)

func renderField(label, value string) string {
	return fmt.Sprintf("%s%-*s %s", fieldIndent, fieldLabelWidth, label+":", value)
}

// renderMarked prints "label: [state] detail"; only the state tag is colored.
func renderMarked(label string, m mark, detail string, colorize bool) string {
	tag := "[" + markLabels[m] + "]"
	if colorize {
		tag = markColors[m].Sprint(tag)
	}
	if detail != "" {
		tag += " " + detail
	}
	return renderField(label, tag)
}

func renderHeading(title string, colorize bool) []string {
	title = strings.TrimSpace(title)
	rule := strings.Repeat("-", len(title))
	if colorize {
		title = text.Colors{text.Bold, text.FgCyan}.Sprint(title)
	}
	return []string{title, rule}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
