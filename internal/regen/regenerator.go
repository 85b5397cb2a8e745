package regen

import (
	"context"
	"io"
	"log/slog"
	"time"

	"medialib/internal/conversion"
	"medialib/internal/logging"
)

// Gate grants permission to run.
type Gate interface {
	ConfirmToProceed() bool
}

// Regenerator runs gated regeneration passes.
type Regenerator struct {
	Store  MediaStore
	Engine Engine
	// Gate is consulted before anything else. Nil means the caller already
	// confirmed.
	Gate Gate
	// NewProgress builds the progress sink once the selection size is
	// known. Nil disables progress output.
	NewProgress func(total int) Progress
	Out         io.Writer
	Options     conversion.Options
	Logger      *slog.Logger
}

// Execute gates, resolves, runs and reports one pass. It returns a nil
// summary when the gate denies. Only store lookup and output errors are
// returned; per-record failures live in the summary.
func (r *Regenerator) Execute(ctx context.Context, criteria Criteria) (*Summary, error) {
	if r.Gate != nil && !r.Gate.ConfirmToProceed() {
		return nil, nil
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.Logger, "regen"))

	selection, err := resolve(ctx, r.Store, criteria, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("regeneration started",
		logging.Int("media_count", len(selection)),
		logging.String(logging.FieldModelType, criteria.ModelType),
		logging.Any("ids", criteria.IDs),
	)

	started := time.Now()
	var sink Progress
	if r.NewProgress != nil {
		sink = r.NewProgress(len(selection))
	}
	summary := Run(ctx, selection, r.Engine, r.Options, newLoggedProgress(sink, len(selection), logger))

	for _, f := range summary.Failures {
		logging.WarnWithContext(logger, "media regeneration failed", "derivation_failed",
			logging.String(logging.FieldMediaID, f.MediaID),
			logging.String("error", f.Message),
			logging.String(logging.FieldErrorHint, "check the original file and conversion settings"),
		)
	}
	logger.Info("regeneration finished",
		logging.Int("media_count", summary.Processed),
		logging.Int("failed_count", len(summary.Failures)),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
	)

	out := r.Out
	if out == nil {
		out = io.Discard
	}
	if err := Report(out, summary); err != nil {
		return &summary, err
	}
	return &summary, nil
}
