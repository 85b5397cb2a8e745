package conversion_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"medialib/internal/config"
	"medialib/internal/conversion"
	"medialib/internal/disk"
	"medialib/internal/logging"
	"medialib/internal/media"
	"medialib/internal/mediastore"
	"medialib/internal/testsupport"
)

type fixture struct {
	cfg   *config.Config
	store *mediastore.Store
	local *disk.Local
	mp    *conversion.Manipulator
}

func newFixture(t *testing.T, conversions ...config.Conversion) *fixture {
	t.Helper()
	var opts []testsupport.ConfigOption
	if len(conversions) > 0 {
		opts = append(opts, testsupport.WithConversions(conversions...))
	}
	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)
	local := disk.NewLocal(cfg.Disks.Local.Root)
	mp := conversion.NewManipulator(cfg.Conversions, disk.NewStaticRegistry(local), store, logging.NewNop())
	return &fixture{cfg: cfg, store: store, local: local, mp: mp}
}

func (f *fixture) addImage(t *testing.T, modelType, fileName string) *media.Media {
	t.Helper()
	m := testsupport.MustAddMedia(t, f.store, modelType, fileName)
	testsupport.WriteImage(t, filepath.Join(f.local.Root(), m.ID, m.FileName), 400, 300)
	return m
}

func (f *fixture) conversionFile(m *media.Media, name, ext string) string {
	return filepath.Join(f.local.Root(), filepath.FromSlash(m.ConversionPath(name, ext)))
}

func TestCreateDerivedFilesGeneratesThumb(t *testing.T) {
	f := newFixture(t)
	m := f.addImage(t, "post", "photo.jpg")

	if err := f.mp.CreateDerivedFiles(context.Background(), m, conversion.Options{}); err != nil {
		t.Fatalf("CreateDerivedFiles failed: %v", err)
	}

	img, err := imaging.Open(f.conversionFile(m, "thumb", "jpg"))
	if err != nil {
		t.Fatalf("open thumb: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 368 || b.Dy() != 232 {
		t.Fatalf("unexpected thumb size %dx%d", b.Dx(), b.Dy())
	}
	if !m.HasGeneratedConversion("thumb") {
		t.Fatal("expected in-memory record to be updated")
	}
	stored, err := f.store.Get(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !stored.HasGeneratedConversion("thumb") {
		t.Fatal("expected stored record to mark thumb generated")
	}
}

func TestCreateDerivedFilesOnly(t *testing.T) {
	f := newFixture(t,
		config.Conversion{Name: "small", Width: 40, Height: 40, Fit: config.FitFit, Quality: 80},
		config.Conversion{Name: "large", Width: 200, Height: 200, Fit: config.FitFit, Format: "png", Quality: 80},
	)
	m := f.addImage(t, "post", "photo.jpg")

	if err := f.mp.CreateDerivedFiles(context.Background(), m, conversion.Options{Only: []string{"large"}}); err != nil {
		t.Fatalf("CreateDerivedFiles failed: %v", err)
	}
	if _, err := os.Stat(f.conversionFile(m, "large", "png")); err != nil {
		t.Fatalf("expected large conversion: %v", err)
	}
	if _, err := os.Stat(f.conversionFile(m, "small", "jpg")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected small conversion to be skipped, got %v", err)
	}
}

func TestCreateDerivedFilesOnlyMissing(t *testing.T) {
	f := newFixture(t,
		config.Conversion{Name: "a", Width: 40, Height: 40, Fit: config.FitFit, Quality: 80},
		config.Conversion{Name: "b", Width: 80, Height: 80, Fit: config.FitFit, Quality: 80},
	)
	m := f.addImage(t, "post", "photo.jpg")
	ctx := context.Background()

	if err := f.mp.CreateDerivedFiles(ctx, m, conversion.Options{}); err != nil {
		t.Fatalf("initial run failed: %v", err)
	}
	marker := []byte("keep me")
	testsupport.WriteFile(t, f.conversionFile(m, "a", "jpg"), marker)
	if err := os.Remove(f.conversionFile(m, "b", "jpg")); err != nil {
		t.Fatalf("remove b: %v", err)
	}

	if err := f.mp.CreateDerivedFiles(ctx, m, conversion.Options{OnlyMissing: true}); err != nil {
		t.Fatalf("only-missing run failed: %v", err)
	}
	data, err := os.ReadFile(f.conversionFile(m, "a", "jpg"))
	if err != nil || string(data) != string(marker) {
		t.Fatalf("expected existing conversion to be left alone, got %q (%v)", data, err)
	}
	if _, err := os.Stat(f.conversionFile(m, "b", "jpg")); err != nil {
		t.Fatalf("expected missing conversion to be regenerated: %v", err)
	}
}

func TestCreateDerivedFilesRespectsModelTypes(t *testing.T) {
	f := newFixture(t,
		config.Conversion{Name: "avatar", Width: 32, Height: 32, Fit: config.FitFill, Quality: 80, ModelTypes: []string{"user"}},
	)
	post := f.addImage(t, "post", "photo.jpg")
	user := f.addImage(t, "user", "face.jpg")
	ctx := context.Background()

	for _, m := range []*media.Media{post, user} {
		if err := f.mp.CreateDerivedFiles(ctx, m, conversion.Options{}); err != nil {
			t.Fatalf("CreateDerivedFiles(%s) failed: %v", m.ID, err)
		}
	}
	if _, err := os.Stat(f.conversionFile(post, "avatar", "jpg")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no avatar for post media, got %v", err)
	}
	if _, err := os.Stat(f.conversionFile(user, "avatar", "jpg")); err != nil {
		t.Fatalf("expected avatar for user media: %v", err)
	}
}

func TestCreateDerivedFilesMissingOriginal(t *testing.T) {
	f := newFixture(t)
	m := testsupport.MustAddMedia(t, f.store, "post", "gone.jpg")

	err := f.mp.CreateDerivedFiles(context.Background(), m, conversion.Options{})
	var derr *conversion.DerivationError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DerivationError, got %v", err)
	}
	if derr.MediaID != m.ID {
		t.Fatalf("unexpected media id %q", derr.MediaID)
	}
	if !errors.Is(err, disk.ErrNotExist) {
		t.Fatalf("expected ErrNotExist in chain, got %v", err)
	}
}

func TestCreateDerivedFilesUndecodableImage(t *testing.T) {
	f := newFixture(t)
	m := testsupport.MustAddMedia(t, f.store, "post", "broken.jpg")
	testsupport.WriteFile(t, filepath.Join(f.local.Root(), m.ID, m.FileName), []byte("not an image"))

	err := f.mp.CreateDerivedFiles(context.Background(), m, conversion.Options{})
	if !errors.Is(err, conversion.ErrUnsupportedMime) {
		t.Fatalf("expected ErrUnsupportedMime, got %v", err)
	}
}

func TestCreateDerivedFilesSkipsNonImages(t *testing.T) {
	f := newFixture(t)
	m := testsupport.MustAddMedia(t, f.store, "post", "notes.txt")
	testsupport.WriteFile(t, filepath.Join(f.local.Root(), m.ID, m.FileName), []byte("hello"))

	if err := f.mp.CreateDerivedFiles(context.Background(), m, conversion.Options{}); err != nil {
		t.Fatalf("expected non-image media to be skipped, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.local.Root(), m.ID, "conversions")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no conversions directory, got %v", err)
	}
}

func TestDerivationErrorMessage(t *testing.T) {
	err := &conversion.DerivationError{MediaID: "7", Conversion: "thumb", Err: errors.New("boom")}
	if err.Error() != "conversion thumb: boom" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	bare := &conversion.DerivationError{MediaID: "7", Err: errors.New("boom")}
	if bare.Error() != "boom" {
		t.Fatalf("unexpected message %q", bare.Error())
	}
}
