package label

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"tapegen/internal/logging"
)

// FallbackSource names the built-in face in logs and previews.
const FallbackSource = "builtin:7x13"

// FontRequest describes the caption font to look up on the host.
type FontRequest struct {
	Family string
	Weight string
	Size   int
	Dirs   []string
}

// ResolveFont scans the font directories for a TrueType/OpenType file whose
// family and subfamily names match the request, case-insensitively. It returns
// the face and the file it came from. An empty family selects the built-in
// face silently; a family that cannot be found is logged and falls back to it.
func ResolveFont(req FontRequest, logger *slog.Logger) (font.Face, string) {
	if logger == nil {
		logger = logging.NewNop()
	}
	family := strings.TrimSpace(req.Family)
	if family == "" {
		return basicfont.Face7x13, FallbackSource
	}
	weight := strings.TrimSpace(req.Weight)
	if weight == "" {
		weight = "Regular"
	}

	path, parsed := findFont(family, weight, req.Dirs)
	if parsed == nil {
		logging.WarnWithContext(logger, "font not found", "font_missing",
			logging.String("font", family),
			logging.String("weight", weight),
			logging.Int("dirs", len(req.Dirs)),
			logging.String(logging.FieldErrorHint, "check the family name reported by fc-list and label.font_dirs"),
			logging.String(logging.FieldImpact, "captions use the built-in bitmap font"),
		)
		return basicfont.Face7x13, FallbackSource
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(req.Size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		logging.WarnWithContext(logger, "font unusable", "font_load_failed",
			logging.String("font", family),
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "captions use the built-in bitmap font"),
		)
		return basicfont.Face7x13, FallbackSource
	}
	logger.Debug("font resolved", logging.String("font", family), logging.String("path", path))
	return face, path
}

func findFont(family, weight string, dirs []string) (string, *sfnt.Font) {
	var (
		foundPath string
		found     *sfnt.Font
		buf       sfnt.Buffer
	)
	errFound := errors.New("found")
	for _, dir := range dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		// Unreadable entries are skipped.
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !isFontFile(path) {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil
			}
			for _, f := range parseFonts(data) {
				if matchesFont(f, &buf, family, weight) {
					foundPath, found = path, f
					return errFound
				}
			}
			return nil
		})
		if errors.Is(err, errFound) {
			return foundPath, found
		}
	}
	return "", nil
}

func isFontFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttf", ".otf", ".ttc", ".otc":
		return true
	default:
		return false
	}
}

func parseFonts(data []byte) []*sfnt.Font {
	if f, err := sfnt.Parse(data); err == nil {
		return []*sfnt.Font{f}
	}
	collection, err := sfnt.ParseCollection(data)
	if err != nil {
		return nil
	}
	fonts := make([]*sfnt.Font, 0, collection.NumFonts())
	for i := 0; i < collection.NumFonts(); i++ {
		if f, err := collection.Font(i); err == nil {
			fonts = append(fonts, f)
		}
	}
	return fonts
}

func matchesFont(f *sfnt.Font, buf *sfnt.Buffer, family, weight string) bool {
	name, err := f.Name(buf, sfnt.NameIDFamily)
	if err != nil || !strings.EqualFold(strings.TrimSpace(name), family) {
		return false
	}
	sub, err := f.Name(buf, sfnt.NameIDSubfamily)
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(sub), weight)
}

// DescribeFace returns a short description of face for previews.
func DescribeFace(face font.Face, source string) string {
	m := face.Metrics()
	return fmt.Sprintf("%s (height %dpx)", source, m.Height.Ceil())
}
