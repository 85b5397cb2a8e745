package regen

import (
	"log/slog"

	"medialib/internal/logging"
)

// loggedProgress forwards to the caller's sink and writes sampled progress
// lines to the log.
type loggedProgress struct {
	next    Progress
	sampler *logging.ProgressSampler
	logger  *slog.Logger
	done    int
	total   int
}

func newLoggedProgress(next Progress, total int, logger *slog.Logger) *loggedProgress {
	return &loggedProgress{
		next:    next,
		sampler: logging.NewProgressSampler(10),
		logger:  logger,
		total:   total,
	}
}

func (p *loggedProgress) Advance() {
	p.done++
	if p.next != nil {
		p.next.Advance()
	}
	if p.sampler.ShouldLog(p.done, p.total) {
		p.logger.Info("regeneration progress",
			logging.Int("done", p.done),
			logging.Int("total", p.total),
			logging.String(logging.FieldEventType, "progress"),
		)
	}
}

func (p *loggedProgress) Finish() {
	if p.next != nil {
		p.next.Finish()
	}
}
