package tape

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"tapegen/internal/services"
)

// Write encodes img to path. The extension selects the format: .bmp, .tif or
// .tiff, anything else PNG. Parent directories are created.
func Write(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return services.Wrap(services.ErrConfiguration, "tape", "write", "create output directory", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "tape", "write", "create "+path, err)
	}
	if err := Encode(file, FormatFor(path), img); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// FormatFor returns "png", "bmp" or "tiff" for path.
func FormatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	default:
		return "png"
	}
}

// Encode writes img in the named format.
func Encode(w io.Writer, format string, img image.Image) error {
	var err error
	switch format {
	case "bmp":
		err = bmp.Encode(w, img)
	case "tiff":
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		err = png.Encode(w, img)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}
