// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging normalizes uploaded feature images to the fixed canvas
// every post uses. The transform is a direct stretch — aspect ratio is not
// preserved — followed by PNG re-encoding regardless of the input format,
// so the stored image always has known dimensions and content type.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Canvas dimensions of a normalized feature image.
const (
	CanvasWidth  = 900
	CanvasHeight = 450
)

// maxImagePixels caps the number of pixels to prevent memory bombs.
// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
const maxImagePixels = 100_000_000

// ErrUnsupportedImage is returned when an upload cannot be decoded as an
// image. Post saves carrying such a payload must abort rather than store
// a broken image reference.
var ErrUnsupportedImage = errors.New("unsupported image")

// ContentType is the MIME type of every normalized image.
const ContentType = "image/png"

// Normalize decodes an uploaded image payload, stretches it onto the
// 900x450 canvas, and re-encodes it as PNG. The original content type and
// byte length are discarded; only the filename survives the transform.
//
// Normalizing an already-normalized image yields the same dimensions and
// format again, so repeated saves are idempotent at the semantic level
// (exact PNG bytes may differ between encoder runs).
func Normalize(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrUnsupportedImage)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrUnsupportedImage, cfg.Width, cfg.Height, maxImagePixels)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	// Stretch onto the fixed canvas. draw.Src replaces destination pixels
	// outright so transparent sources don't blend with the zero canvas.
	dst := image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// NormalizeReader is a convenience wrapper around Normalize for callers
// holding an io.Reader, such as multipart upload handlers.
func NormalizeReader(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return Normalize(data)
}
