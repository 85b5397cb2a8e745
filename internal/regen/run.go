package regen

import (
	"context"

	"medialib/internal/conversion"
	"medialib/internal/media"
)

// Engine derives the files for one record.
type Engine interface {
	CreateDerivedFiles(ctx context.Context, m *media.Media, opts conversion.Options) error
}

// Progress receives one Advance per processed record and a final Finish.
type Progress interface {
	Advance()
	Finish()
}

// Outcome is the result of deriving one record.
type Outcome struct {
	Media *media.Media
	Err   error
}

// Failure is one ledger entry.
type Failure struct {
	MediaID string
	Message string
}

// Ledger lists failures in the order records were processed.
type Ledger []Failure

// Summary is what a pass produced.
type Summary struct {
	Processed int
	Failures  Ledger
}

// OK reports whether every record succeeded.
func (s Summary) OK() bool { return len(s.Failures) == 0 }

// Run derives every record in selection order, one at a time. A failing
// record is recorded in the ledger and the pass moves on.
func Run(ctx context.Context, selection []*media.Media, engine Engine, opts conversion.Options, progress Progress) Summary {
	if progress == nil {
		progress = nopProgress{}
	}
	var ledger Ledger
	for _, m := range selection {
		outcome := derive(ctx, engine, m, opts)
		if outcome.Err != nil {
			ledger = append(ledger, Failure{MediaID: outcome.Media.ID, Message: outcome.Err.Error()})
		}
		progress.Advance()
	}
	progress.Finish()
	return Summary{Processed: len(selection), Failures: ledger}
}

func derive(ctx context.Context, engine Engine, m *media.Media, opts conversion.Options) Outcome {
	return Outcome{Media: m, Err: engine.CreateDerivedFiles(ctx, m, opts)}
}

type nopProgress struct{}

func (nopProgress) Advance() {}
func (nopProgress) Finish()  {}
