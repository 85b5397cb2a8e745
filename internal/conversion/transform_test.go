package conversion_test

import (
	"image"
	"testing"

	"github.com/disintegration/imaging"

	"medialib/internal/config"
	"medialib/internal/conversion"
)

func TestTransformGeometry(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 400, 100))

	tests := []struct {
		name  string
		conv  config.Conversion
		wantW int
		wantH int
	}{
		{name: "fit keeps aspect", conv: config.Conversion{Fit: config.FitFit, Width: 100, Height: 50}, wantW: 100, wantH: 25},
		{name: "fit never upscales", conv: config.Conversion{Fit: config.FitFit, Width: 800, Height: 800}, wantW: 400, wantH: 100},
		{name: "fill is exact", conv: config.Conversion{Fit: config.FitFill, Width: 60, Height: 60}, wantW: 60, wantH: 60},
		{name: "crop is exact", conv: config.Conversion{Fit: config.FitCrop, Width: 50, Height: 20}, wantW: 50, wantH: 20},
		{name: "resize width only", conv: config.Conversion{Fit: config.FitResize, Width: 200}, wantW: 200, wantH: 50},
		{name: "no dimensions", conv: config.Conversion{Fit: config.FitFit, Grayscale: true}, wantW: 400, wantH: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := conversion.Transform(src, tt.conv).Bounds()
			if got.Dx() != tt.wantW || got.Dy() != tt.wantH {
				t.Fatalf("got %dx%d, want %dx%d", got.Dx(), got.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestOutputExtension(t *testing.T) {
	if got := conversion.OutputExtension(config.Conversion{}, "photo.JPEG"); got != "jpg" {
		t.Fatalf("expected jpg, got %q", got)
	}
	if got := conversion.OutputExtension(config.Conversion{Format: "png"}, "photo.jpg"); got != "png" {
		t.Fatalf("expected png, got %q", got)
	}
}

func TestEncode(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	data, contentType, err := conversion.Encode(img, "png", 90)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if contentType != "image/png" || len(data) == 0 {
		t.Fatalf("unexpected encode result %q (%d bytes)", contentType, len(data))
	}
	if _, _, err := conversion.Encode(img, "webp", 90); err == nil {
		t.Fatal("expected error for unsupported output format")
	}
	if _, err := imaging.FormatFromExtension("jpg"); err != nil {
		t.Fatalf("jpg should be supported: %v", err)
	}
}
