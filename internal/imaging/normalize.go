package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/webp"

	"adcraft/internal/domain"
)

// Normalize decodes arbitrary supported image bytes (PNG, JPEG, GIF, WebP) and
// re-encodes them as an opaque PNG. Alpha is flattened onto a white background
// so downstream vision and generation calls always see a 3-channel image.
func Normalize(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedImage, err)
	}

	bounds := img.Bounds()
	flat := image.NewNRGBA(bounds)
	draw.Draw(flat, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, bounds, img, bounds.Min, draw.Over)

	return encodePNG(flat)
}

// NormalizeMask prepares an edit mask. A single-channel (grayscale) source is
// expanded to RGBA with the luminance values copied into the alpha channel, so
// dark regions become transparent and therefore editable. An RGBA source
// passes through; anything else is converted to RGBA with full opacity.
func NormalizeMask(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedImage, err)
	}

	bounds := img.Bounds()
	out := image.NewNRGBA(bounds)

	switch src := img.(type) {
	case *image.Gray:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				v := src.GrayAt(x, y).Y
				out.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: v})
			}
		}
	case *image.Gray16:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				v := uint8(src.Gray16At(x, y).Y >> 8)
				out.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: v})
			}
		}
	case *image.NRGBA:
		draw.Draw(out, bounds, src, bounds.Min, draw.Src)
	case *image.RGBA:
		draw.Draw(out, bounds, src, bounds.Min, draw.Src)
	default:
		draw.Draw(out, bounds, img, bounds.Min, draw.Src)
	}

	return encodePNG(out)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
