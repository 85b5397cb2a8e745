package conversion

import (
	"bytes"
	"fmt"
	"image"
	"path"
	"strings"

	"github.com/disintegration/imaging"

	"medialib/internal/config"
)

// Transform applies conv's geometry and filters to img.
func Transform(img image.Image, conv config.Conversion) image.Image {
	out := img
	w, h := conv.Width, conv.Height
	if w > 0 || h > 0 {
		switch conv.Fit {
		case config.FitFill:
			if w > 0 && h > 0 {
				out = imaging.Fill(out, w, h, imaging.Center, imaging.Lanczos)
			} else {
				out = imaging.Resize(out, w, h, imaging.Lanczos)
			}
		case config.FitCrop:
			out = imaging.CropCenter(out, nonZero(w, out.Bounds().Dx()), nonZero(h, out.Bounds().Dy()))
		case config.FitResize:
			out = imaging.Resize(out, w, h, imaging.Lanczos)
		default:
			if w > 0 && h > 0 {
				out = imaging.Fit(out, w, h, imaging.Lanczos)
			} else {
				out = imaging.Resize(out, w, h, imaging.Lanczos)
			}
		}
	}
	if conv.Grayscale {
		out = imaging.Grayscale(out)
	}
	if conv.Blur > 0 {
		out = imaging.Blur(out, conv.Blur)
	}
	if conv.Sharpen > 0 {
		out = imaging.Sharpen(out, conv.Sharpen)
	}
	return out
}

// OutputExtension returns the extension (without dot) a conversion of
// fileName is written with.
func OutputExtension(conv config.Conversion, fileName string) string {
	if conv.Format != "" {
		return conv.Format
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(fileName), "."))
	if ext == "jpeg" {
		return "jpg"
	}
	return ext
}

// Encode serializes img in the format implied by ext.
func Encode(img image.Image, ext string, quality int) ([]byte, string, error) {
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, "", fmt.Errorf("output format %q: %w", ext, err)
	}
	var buf bytes.Buffer
	opts := []imaging.EncodeOption{}
	if quality > 0 {
		opts = append(opts, imaging.JPEGQuality(quality))
	}
	if err := imaging.Encode(&buf, img, format, opts...); err != nil {
		return nil, "", fmt.Errorf("encode %s: %w", ext, err)
	}
	return buf.Bytes(), contentTypes[format], nil
}

var contentTypes = map[imaging.Format]string{
	imaging.JPEG: "image/jpeg",
	imaging.PNG:  "image/png",
	imaging.GIF:  "image/gif",
	imaging.TIFF: "image/tiff",
	imaging.BMP:  "image/bmp",
}

func nonZero(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
