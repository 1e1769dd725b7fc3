package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"
)

// encode produces an in-memory test image of the given size and format.
func encode(t *testing.T, w, h int, format string) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		t.Fatalf("unknown format %q", format)
	}
	if err != nil {
		t.Fatalf("encode %s: %v", format, err)
	}
	return buf.Bytes()
}

// dimensions decodes normalized output and returns its size.
func dimensions(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode normalized output: %v", err)
	}
	if format != "png" {
		t.Errorf("normalized format: got %q, want %q", format, "png")
	}
	return cfg.Width, cfg.Height
}

func TestNormalizeDimensions(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		format string
	}{
		{name: "small landscape png", w: 100, h: 50, format: "png"},
		{name: "large portrait jpeg", w: 1200, h: 2400, format: "jpeg"},
		{name: "square gif", w: 300, h: 300, format: "gif"},
		{name: "exact canvas png", w: 900, h: 450, format: "png"},
		{name: "one pixel", w: 1, h: 1, format: "png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Normalize(encode(t, tt.w, tt.h, tt.format))
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			w, h := dimensions(t, out)
			if w != CanvasWidth || h != CanvasHeight {
				t.Errorf("dimensions: got %dx%d, want %dx%d", w, h, CanvasWidth, CanvasHeight)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	first, err := Normalize(encode(t, 640, 480, "jpeg"))
	if err != nil {
		t.Fatalf("first Normalize: %v", err)
	}

	second, err := Normalize(first)
	if err != nil {
		t.Fatalf("second Normalize: %v", err)
	}

	w, h := dimensions(t, second)
	if w != CanvasWidth || h != CanvasHeight {
		t.Errorf("re-normalized dimensions: got %dx%d, want %dx%d", w, h, CanvasWidth, CanvasHeight)
	}
}

func TestNormalizeRejectsEmptyPayload(t *testing.T) {
	_, err := Normalize(nil)
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("empty payload: got %v, want ErrUnsupportedImage", err)
	}

	_, err = Normalize([]byte{})
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("zero-length payload: got %v, want ErrUnsupportedImage", err)
	}
}

func TestNormalizeRejectsCorruptPayload(t *testing.T) {
	_, err := Normalize([]byte("this is not an image at all"))
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("corrupt payload: got %v, want ErrUnsupportedImage", err)
	}

	// A valid header followed by garbage must not pass either.
	truncated := encode(t, 100, 100, "png")[:20]
	if _, err := Normalize(truncated); !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("truncated payload: got %v, want ErrUnsupportedImage", err)
	}
}

func TestNormalizeReader(t *testing.T) {
	out, err := NormalizeReader(bytes.NewReader(encode(t, 200, 100, "png")))
	if err != nil {
		t.Fatalf("NormalizeReader: %v", err)
	}
	w, h := dimensions(t, out)
	if w != CanvasWidth || h != CanvasHeight {
		t.Errorf("dimensions: got %dx%d, want %dx%d", w, h, CanvasWidth, CanvasHeight)
	}
}
