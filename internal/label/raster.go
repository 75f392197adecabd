package label

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Bitmap is a rendered symbol or caption. Rotated records whether the caption
// was turned 90 degrees counter-clockwise to run along the tape.
type Bitmap struct {
	Image   *image.RGBA
	Rotated bool
}

// Width returns the bitmap width in pixels.
func (b *Bitmap) Width() int {
	if b == nil || b.Image == nil {
		return 0
	}
	return b.Image.Bounds().Dx()
}

// Height returns the bitmap height in pixels.
func (b *Bitmap) Height() int {
	if b == nil || b.Image == nil {
		return 0
	}
	return b.Image.Bounds().Dy()
}

// RasterOptions holds tape geometry and font sizing for rasterization.
type RasterOptions struct {
	TapeHeight    int
	FontSize      int
	CaptionOffset int
	QRPixel       int
}

// Rasterizer draws captions and QR symbols.
type Rasterizer struct {
	face font.Face
	opts RasterOptions
}

// NewRasterizer binds a face to the tape geometry. A nil face uses the
// built-in bitmap font.
func NewRasterizer(face font.Face, opts RasterOptions) *Rasterizer {
	if face == nil {
		face = basicfont.Face7x13
	}
	if opts.QRPixel <= 0 {
		opts.QRPixel = 1
	}
	return &Rasterizer{face: face, opts: opts}
}

// TextWidth returns the natural canvas width for text: its advance plus two
// pixels.
func (r *Rasterizer) TextWidth(text string) int {
	return font.MeasureString(r.face, text).Ceil() + 2
}

// Text renders a caption. Captions narrower than the tape height are drawn on
// a font-size-high canvas and rotated; wider ones are drawn on a canvas of
// tape height plus the offset magnitude, vertically centred. Empty text
// yields nil.
func (r *Rasterizer) Text(text string) (*Bitmap, error) {
	if text == "" {
		return nil, nil
	}
	width := r.TextWidth(text)
	if width < r.opts.TapeHeight {
		height := r.opts.FontSize
		if height <= 0 {
			return nil, fmt.Errorf("rasterize %q: font size must be positive", text)
		}
		canvas := newWhite(width, height)
		r.draw(canvas, text, r.face.Metrics().Ascent.Ceil())
		return &Bitmap{Image: rotateCCW(canvas), Rotated: true}, nil
	}

	height := r.opts.TapeHeight + abs(r.opts.CaptionOffset)
	if height <= 0 {
		return nil, fmt.Errorf("rasterize %q: tape height must be positive", text)
	}
	canvas := newWhite(width, height)
	m := r.face.Metrics()
	textHeight := (m.Ascent + m.Descent).Ceil()
	r.draw(canvas, text, (height-textHeight)/2+m.Ascent.Ceil())
	return &Bitmap{Image: canvas}, nil
}

func (r *Rasterizer) draw(dst *image.RGBA, text string, baseline int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: r.face,
		Dot:  fixed.P(0, baseline),
	}
	d.DrawString(text)
}

func newWhite(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return img
}

// rotateCCW turns src 90 degrees counter-clockwise: dst(x, y) = src(w-1-y, x).
func rotateCCW(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < w; y++ {
		for x := 0; x < h; x++ {
			dst.SetRGBA(x, y, src.RGBAAt(b.Min.X+w-1-y, b.Min.Y+x))
		}
	}
	return dst
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
