package label_test

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"

	"tapegen/internal/label"
	"tapegen/internal/logging"
	"tapegen/internal/records"
)

func TestRenderCaption(t *testing.T) {
	rec := records.New("Category", "Resistor", "Code", "ABC", "Value", " 100 ", "Unit", "Ohm")
	cases := []struct {
		template string
		want     string
	}{
		{"", ""},
		{"auto", "100Ohm"},
		{"AUTO", "100Ohm"},
		{":Value::Unit:", "100Ohm"},
		{"R :Value: :Unit:", "R 100 Ohm"},
		{"Size: :Value:", "Size: 100"},
		{"ratio 1:2", "ratio 1:2"},
		{":Code:-:Category:", "ABC-Resistor"},
		{"Ratio 1:2 and 3:4 :Value:", "Ratio 1:2 and 3:4 100"},
		{"at 10:30 :Unit:", "at 10:30 Ohm"},
	}
	for _, tc := range cases {
		if got := label.RenderCaption(rec, tc.template, logging.NewNop()); got != tc.want {
			t.Fatalf("RenderCaption(%q) = %q, want %q", tc.template, got, tc.want)
		}
	}
}

func TestRenderCaptionMissingFieldWarns(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	rec := records.New("Value", "10")
	got := label.RenderCaption(rec, ":Value::Tolerance:%", logger)
	if got != "10%" {
		t.Fatalf("unexpected caption %q", got)
	}
	if !strings.Contains(buf.String(), "caption placeholder unresolved") || !strings.Contains(buf.String(), "Tolerance") {
		t.Fatalf("expected warning, got %q", buf.String())
	}
}

func TestRenderCaptionColumnWithSpaces(t *testing.T) {
	rec := records.New("Part No", " X-1 ", "Value", "4")
	if got := label.RenderCaption(rec, ":Part No: x:Value:", logging.NewNop()); got != "X-1 x4" {
		t.Fatalf("unexpected caption %q", got)
	}
}

func TestRenderCaptionNormalizesNFC(t *testing.T) {
	rec := records.New("Label", "mu\u0308")
	if got := label.RenderCaption(rec, ":Label:", logging.NewNop()); got != "m\u00fc" {
		t.Fatalf("expected NFC form, got %q", got)
	}
}

func TestDefaultCaption(t *testing.T) {
	cases := []struct {
		rec  records.Record
		want string
	}{
		{records.New("Label", "LED red", "Value", "1"), "LED red"},
		{records.New("Value", "10", "Unit", "uF"), "10uF"},
		{records.New("Value", "10"), "10"},
		{records.New("Unit", "uF"), ""},
		{records.New(), ""},
	}
	for _, tc := range cases {
		if got := label.DefaultCaption(tc.rec); got != tc.want {
			t.Fatalf("DefaultCaption(%v) = %q, want %q", tc.rec.Fields(), got, tc.want)
		}
	}
}

func TestTextRotationRule(t *testing.T) {
	r := label.NewRasterizer(basicfont.Face7x13, label.RasterOptions{TapeHeight: 64, FontSize: 12, CaptionOffset: -4, QRPixel: 2})

	short, err := r.Text("100Ohm")
	if err != nil {
		t.Fatalf("Text returned error: %v", err)
	}
	// 6 glyphs of 7px plus 2px padding.
	if !short.Rotated {
		t.Fatal("expected short caption to rotate")
	}
	if short.Width() != 12 || short.Height() != 44 {
		t.Fatalf("unexpected rotated size %dx%d", short.Width(), short.Height())
	}

	long, err := r.Text("Resistor 100 Ohm 1%")
	if err != nil {
		t.Fatalf("Text returned error: %v", err)
	}
	if long.Rotated {
		t.Fatal("expected long caption to stay horizontal")
	}
	if long.Width() != r.TextWidth("Resistor 100 Ohm 1%") || long.Height() != 68 {
		t.Fatalf("unexpected horizontal size %dx%d", long.Width(), long.Height())
	}

	empty, err := r.Text("")
	if err != nil || empty != nil {
		t.Fatalf("expected nil bitmap for empty text, got %v, %v", empty, err)
	}
}

func TestTextRotationMonotonic(t *testing.T) {
	r := label.NewRasterizer(nil, label.RasterOptions{TapeHeight: 40, FontSize: 12, QRPixel: 2})
	seenHorizontal := false
	for n := 1; n <= 12; n++ {
		text := strings.Repeat("x", n)
		first, err := r.Text(text)
		if err != nil {
			t.Fatalf("Text(%q): %v", text, err)
		}
		again, _ := r.Text(text)
		if first.Rotated != again.Rotated {
			t.Fatalf("rotation differs between calls for %q", text)
		}
		if first.Rotated != (r.TextWidth(text) < 40) {
			t.Fatalf("rotation of %q does not follow the threshold", text)
		}
		if seenHorizontal && first.Rotated {
			t.Fatalf("rotation flipped back for %q", text)
		}
		if !first.Rotated {
			seenHorizontal = true
		}
	}
	if !seenHorizontal {
		t.Fatal("expected long strings to stay horizontal")
	}
}

func TestRotatedTextKeepsInk(t *testing.T) {
	r := label.NewRasterizer(nil, label.RasterOptions{TapeHeight: 64, FontSize: 13, QRPixel: 2})
	bmp, err := r.Text("I")
	if err != nil {
		t.Fatalf("Text returned error: %v", err)
	}
	dark := 0
	for y := 0; y < bmp.Height(); y++ {
		for x := 0; x < bmp.Width(); x++ {
			if c := bmp.Image.RGBAAt(x, y); c.R < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Fatal("expected glyph pixels after rotation")
	}
	if got := bmp.Image.RGBAAt(0, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("expected white background, got %v", got)
	}
}

func TestSymbol(t *testing.T) {
	r := label.NewRasterizer(nil, label.RasterOptions{TapeHeight: 64, FontSize: 12, QRPixel: 2})
	bmp, err := r.Symbol("$R1$ABC")
	if err != nil {
		t.Fatalf("Symbol returned error: %v", err)
	}
	if bmp.Rotated {
		t.Fatal("symbols are never rotated")
	}
	if bmp.Width() != bmp.Height() {
		t.Fatalf("expected square symbol, got %dx%d", bmp.Width(), bmp.Height())
	}
	// Version 1 is 21 modules plus a 4-module quiet zone on each side.
	if bmp.Width() < 29*2 || bmp.Width()%2 != 0 {
		t.Fatalf("unexpected symbol width %d", bmp.Width())
	}
	if got := bmp.Image.RGBAAt(0, 0); got.R != 255 {
		t.Fatalf("expected white quiet zone, got %v", got)
	}

	bigger := label.NewRasterizer(nil, label.RasterOptions{TapeHeight: 64, FontSize: 12, QRPixel: 3})
	big, _ := bigger.Symbol("$R1$ABC")
	if big.Width()*2 != bmp.Width()*3 {
		t.Fatalf("module size not applied: %d vs %d", big.Width(), bmp.Width())
	}
}

func TestResolveFont(t *testing.T) {
	face, source := label.ResolveFont(label.FontRequest{Size: 12}, nil)
	if face != basicfont.Face7x13 || source != label.FallbackSource {
		t.Fatalf("expected builtin face for empty family, got %s", source)
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Go-Regular.ttf"), goregular.TTF, 0o644); err != nil {
		t.Fatalf("write font: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.ttf"), []byte("nope"), 0o644); err != nil {
		t.Fatalf("write broken font: %v", err)
	}

	face, source = label.ResolveFont(label.FontRequest{Family: "go", Weight: "regular", Size: 14, Dirs: []string{filepath.Join(dir, "missing"), dir}}, logging.NewNop())
	if source != filepath.Join(dir, "Go-Regular.ttf") {
		t.Fatalf("expected Go Regular from temp dir, got %s", source)
	}
	if face == basicfont.Face7x13 {
		t.Fatal("expected opentype face")
	}
	if !strings.Contains(label.DescribeFace(face, source), "Go-Regular.ttf") {
		t.Fatalf("unexpected description %q", label.DescribeFace(face, source))
	}

	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	_, source = label.ResolveFont(label.FontRequest{Family: "Go", Weight: "Bold", Size: 14, Dirs: []string{dir}}, logger)
	if source != label.FallbackSource {
		t.Fatalf("expected fallback for missing weight, got %s", source)
	}
	if !strings.Contains(buf.String(), "font not found") {
		t.Fatalf("expected font warning, got %q", buf.String())
	}
}
