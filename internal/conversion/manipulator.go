package conversion

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"slices"

	"github.com/disintegration/imaging"

	"medialib/internal/config"
	"medialib/internal/disk"
	"medialib/internal/logging"
	"medialib/internal/media"
)

// Options narrows which conversions CreateDerivedFiles generates.
type Options struct {
	// Only limits generation to the named conversions. Empty means all.
	Only []string
	// OnlyMissing skips conversions already recorded as generated whose
	// file is still present on the conversions disk.
	OnlyMissing bool
}

// Recorder persists which conversions exist for a record.
type Recorder interface {
	SetConversionGenerated(ctx context.Context, id, conversion string, generated bool) error
}

// DiskResolver looks up disks by name.
type DiskResolver interface {
	Get(name string) (disk.Disk, error)
}

// Manipulator creates derived files for media records.
type Manipulator struct {
	conversions []config.Conversion
	disks       DiskResolver
	recorder    Recorder
	logger      *slog.Logger
}

// NewManipulator constructs a Manipulator for the configured conversions.
func NewManipulator(conversions []config.Conversion, disks DiskResolver, recorder Recorder, logger *slog.Logger) *Manipulator {
	return &Manipulator{
		conversions: conversions,
		disks:       disks,
		recorder:    recorder,
		logger:      logging.NewComponentLogger(logger, "conversion"),
	}
}

// Applicable returns the conversions that would run for m under opts,
// without consulting disks.
func (mp *Manipulator) Applicable(m *media.Media, opts Options) []config.Conversion {
	var out []config.Conversion
	for _, conv := range mp.conversions {
		if !conv.AppliesTo(m.ModelType, m.CollectionName) {
			continue
		}
		if len(opts.Only) > 0 && !slices.Contains(opts.Only, conv.Name) {
			continue
		}
		out = append(out, conv)
	}
	return out
}

// CreateDerivedFiles (re)generates every applicable conversion for m. Media
// that is not an image has nothing to derive and returns nil. The first
// failing conversion stops the record and is returned as *DerivationError.
func (mp *Manipulator) CreateDerivedFiles(ctx context.Context, m *media.Media, opts Options) error {
	logger := logging.WithContext(ctx, mp.logger).With(logging.String(logging.FieldMediaID, m.ID))

	conversions := mp.Applicable(m, opts)
	if len(conversions) == 0 {
		logger.Debug("no applicable conversions")
		return nil
	}
	if !m.IsImage() {
		logger.Debug("skipping non-image media", logging.String("mime_type", m.MimeType))
		return nil
	}

	target, err := mp.disks.Get(m.TargetConversionsDisk())
	if err != nil {
		return derivationError(m.ID, "", err)
	}
	if opts.OnlyMissing {
		conversions, err = mp.missing(ctx, target, m, conversions)
		if err != nil {
			return derivationError(m.ID, "", err)
		}
		if len(conversions) == 0 {
			logger.Debug("all conversions present")
			return nil
		}
	}

	src, err := mp.loadOriginal(ctx, m)
	if err != nil {
		return derivationError(m.ID, "", err)
	}

	for _, conv := range conversions {
		if err := mp.derive(ctx, target, m, src, conv); err != nil {
			return derivationError(m.ID, conv.Name, err)
		}
		logger.Debug("conversion generated",
			logging.String(logging.FieldConversion, conv.Name),
			logging.String(logging.FieldDisk, target.Name()),
		)
	}
	return nil
}

func (mp *Manipulator) missing(ctx context.Context, target disk.Disk, m *media.Media, conversions []config.Conversion) ([]config.Conversion, error) {
	out := make([]config.Conversion, 0, len(conversions))
	for _, conv := range conversions {
		if !m.HasGeneratedConversion(conv.Name) {
			out = append(out, conv)
			continue
		}
		exists, err := target.Exists(ctx, m.ConversionPath(conv.Name, OutputExtension(conv, m.FileName)))
		if err != nil {
			return nil, err
		}
		if !exists {
			out = append(out, conv)
		}
	}
	return out, nil
}

func (mp *Manipulator) loadOriginal(ctx context.Context, m *media.Media) (image.Image, error) {
	source, err := mp.disks.Get(m.Disk)
	if err != nil {
		return nil, err
	}
	rc, err := source.Open(ctx, m.OriginalPath())
	if err != nil {
		return nil, fmt.Errorf("open original: %w", err)
	}
	defer rc.Close()
	img, err := imaging.Decode(rc, imaging.AutoOrientation(true))
	if errors.Is(err, image.ErrFormat) {
		return nil, fmt.Errorf("decode original %s: %w", m.MimeType, ErrUnsupportedMime)
	}
	if err != nil {
		return nil, fmt.Errorf("decode original: %w", err)
	}
	return img, nil
}

func (mp *Manipulator) derive(ctx context.Context, target disk.Disk, m *media.Media, src image.Image, conv config.Conversion) error {
	ext := OutputExtension(conv, m.FileName)
	data, contentType, err := Encode(Transform(src, conv), ext, conv.Quality)
	if err != nil {
		return err
	}
	if err := target.Put(ctx, m.ConversionPath(conv.Name, ext), data, contentType); err != nil {
		return err
	}
	if mp.recorder != nil {
		if err := mp.recorder.SetConversionGenerated(ctx, m.ID, conv.Name, true); err != nil {
			return fmt.Errorf("record conversion: %w", err)
		}
	}
	if m.GeneratedConversions == nil {
		m.GeneratedConversions = map[string]bool{}
	}
	m.GeneratedConversions[conv.Name] = true
	return nil
}
