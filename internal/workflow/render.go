package workflow

import (
	"context"

	"tapegen/internal/label"
	"tapegen/internal/logging"
	"tapegen/internal/records"
	"tapegen/internal/services"
	"tapegen/internal/tape"
)

type renderResult struct {
	width  int
	height int
	font   string
}

func (r *Runner) render(ctx context.Context, recs []records.Record, output string) (renderResult, error) {
	logger := logging.WithContext(ctx, r.logger)
	cfg := r.cfg

	face, source := label.ResolveFont(label.FontRequest{
		Family: cfg.Label.Font,
		Weight: cfg.Label.FontWeight,
		Size:   cfg.Label.FontSize,
		Dirs:   cfg.Label.FontDirs,
	}, logger)
	raster := label.NewRasterizer(face, label.RasterOptions{
		TapeHeight:    cfg.Tape.Height,
		FontSize:      cfg.Label.FontSize,
		CaptionOffset: cfg.Label.FontHeightOffset,
		QRPixel:       cfg.Tape.QRPixel,
	})

	elements := make([]tape.Element, 0, len(recs))
	rotated := 0
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return renderResult{}, err
		}
		var element tape.Element
		if !cfg.Tape.OnlyLabel {
			symbol, err := raster.Symbol(rec.BarCode())
			if err != nil {
				return renderResult{}, services.Wrap(services.ErrValidation, "workflow", "render symbol", rec.BarCode(), err)
			}
			element.Symbol = symbol
		}
		caption, err := raster.Text(label.RenderCaption(rec, cfg.Label.Format, logger))
		if err != nil {
			return renderResult{}, services.Wrap(services.ErrConfiguration, "workflow", "render caption", "", err)
		}
		if caption != nil && caption.Rotated {
			rotated++
		}
		element.Caption = caption
		elements = append(elements, element)
	}

	img, err := tape.Compose(elements, tape.Layout{
		Separator:     cfg.Tape.Separator,
		TapeHeight:    cfg.Tape.Height,
		CaptionOffset: cfg.Label.FontHeightOffset,
	})
	if err != nil {
		return renderResult{}, err
	}
	if err := tape.Write(output, img); err != nil {
		return renderResult{}, err
	}

	bounds := img.Bounds()
	logger.Info("tape written",
		logging.String("output", output),
		logging.String("format", tape.FormatFor(output)),
		logging.Int("width", bounds.Dx()),
		logging.Int("height", bounds.Dy()),
		logging.Int("rotated_captions", rotated),
	)
	return renderResult{
		width:  bounds.Dx(),
		height: bounds.Dy(),
		font:   label.DescribeFace(face, source),
	}, nil
}
