package attachment

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	// DefaultScaleRatio is the per-step dimension factor applied
	// when an image exceeds its byte budget.
	DefaultScaleRatio = 0.7

	jpegQuality = 80
)

// BoundImage fits image bytes into maxBytes. Input already under the
// budget passes through untouched. Oversized input is decoded and
// scaled down by fixed ratio steps, preserving aspect ratio, then
// re-encoded as JPEG, until the encoded size fits. The same input and
// budget always produce the same output.
func BoundImage(_ context.Context, data []byte, mimeType string, maxBytes int, ratio float64) ([]byte, string, error) {
	if maxBytes <= 0 || len(data) <= maxBytes {
		return data, mimeType, nil
	}
	if ratio <= 0 || ratio >= 1 {
		ratio = DefaultScaleRatio
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", &DecodeFailed{Format: "image", Err: fmt.Errorf("decoding image: %w", err)}
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	for {
		width = int(float64(width) * ratio)
		height = int(float64(height) * ratio)
		if width < 1 || height < 1 {
			return nil, "", &DecodeFailed{Format: "image", Err: fmt.Errorf("image does not fit %d bytes at any size", maxBytes)}
		}

		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, "", &DecodeFailed{Format: "image", Err: fmt.Errorf("encoding image: %w", err)}
		}
		if buf.Len() <= maxBytes {
			return buf.Bytes(), TypeJPEG, nil
		}
	}
}
