// Package imaging converts uploaded pictures into the stored avatar format.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	"image/png"

	"golang.org/x/image/draw"
)

// AvatarSize is the edge length, in pixels, of every stored avatar.
const AvatarSize = 250

// Resizer decodes a PNG or JPEG, crops it to a centred square and scales it
// to Size×Size, returning PNG bytes.
type Resizer struct {
	Size int
}

func NewResizer() *Resizer {
	return &Resizer{Size: AvatarSize}
}

// Transform implements ports.ImageTransformer.
func (r *Resizer) Transform(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	size := r.Size
	if size <= 0 {
		size = AvatarSize
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, squareCrop(src.Bounds()), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// squareCrop returns the largest centred square inside b.
func squareCrop(b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	if w == h {
		return b
	}
	if w > h {
		off := (w - h) / 2
		return image.Rect(b.Min.X+off, b.Min.Y, b.Min.X+off+h, b.Max.Y)
	}
	off := (h - w) / 2
	return image.Rect(b.Min.X, b.Min.Y+off, b.Max.X, b.Min.Y+off+w)
}
