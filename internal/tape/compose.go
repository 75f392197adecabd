package tape

import (
	"image"
	"image/color"
	"image/draw"

	"tapegen/internal/label"
	"tapegen/internal/services"
)

// Element is the symbol and caption of one record. Either may be nil.
type Element struct {
	Symbol  *label.Bitmap
	Caption *label.Bitmap
}

// Layout holds the tape geometry.
type Layout struct {
	Separator     int
	TapeHeight    int
	CaptionOffset int
}

// Width returns the tape width for elements: every present bitmap contributes
// its width plus one separator, including the last.
func (l Layout) Width(elements []Element) int {
	width := 0
	for _, el := range elements {
		for _, bmp := range el.bitmaps() {
			width += bmp.Width() + l.Separator
		}
	}
	return width
}

// Compose pastes the bitmaps left to right, symbol before caption, on a white
// strip of the tape height. Each bitmap is vertically centred; captions are
// shifted by the caption offset.
func Compose(elements []Element, layout Layout) (*image.RGBA, error) {
	if layout.TapeHeight <= 0 {
		return nil, services.Wrap(services.ErrConfiguration, "tape", "compose", "tape height must be positive", nil)
	}
	width := layout.Width(elements)
	if width <= 0 {
		return nil, services.Wrap(services.ErrConfiguration, "tape", "compose", "no records to lay out", nil)
	}

	strip := image.NewRGBA(image.Rect(0, 0, width, layout.TapeHeight))
	draw.Draw(strip, strip.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	x := 0
	paste := func(bmp *label.Bitmap, offset int) {
		if bmp.Width() == 0 {
			return
		}
		y := (layout.TapeHeight-bmp.Height())/2 + offset
		target := image.Rect(x, y, x+bmp.Width(), y+bmp.Height())
		draw.Draw(strip, target, bmp.Image, bmp.Image.Bounds().Min, draw.Src)
		x += bmp.Width() + layout.Separator
	}
	for _, el := range elements {
		paste(el.Symbol, 0)
		paste(el.Caption, layout.CaptionOffset)
	}
	return strip, nil
}

func (e Element) bitmaps() []*label.Bitmap {
	out := make([]*label.Bitmap, 0, 2)
	if e.Symbol.Width() > 0 {
		out = append(out, e.Symbol)
	}
	if e.Caption.Width() > 0 {
		out = append(out, e.Caption)
	}
	return out
}
