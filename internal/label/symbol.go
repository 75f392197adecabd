package label

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/skip2/go-qrcode"
)

// Symbol renders payload as a QR code with medium error correction and the
// standard four-module quiet zone.
func (r *Rasterizer) Symbol(payload string) (*Bitmap, error) {
	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr %q: %w", payload, err)
	}
	src := code.Image(-r.opts.QRPixel)
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	return &Bitmap{Image: dst}, nil
}
