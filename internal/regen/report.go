package regen

import (
	"fmt"
	"io"
)

const (
	successMessage = "All done!"
	failureHeader  = "All done, but with some error messages:"
)

// Report writes the final summary lines.
func Report(w io.Writer, summary Summary) error {
	if summary.OK() {
		_, err := fmt.Fprintln(w, successMessage)
		return err
	}
	if _, err := fmt.Fprintln(w, failureHeader); err != nil {
		return err
	}
	for _, f := range summary.Failures {
		if _, err := fmt.Fprintf(w, "Media id %s: \"%s\"\n", f.MediaID, f.Message); err != nil {
			return err
		}
	}
	return nil
}
