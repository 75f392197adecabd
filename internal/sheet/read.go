package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"tapegen/internal/services"
)

// Options controls spreadsheet parsing.
type Options struct {
	// Delimiter separates CSV columns. Zero means comma.
	Delimiter rune
	// Encoding is a WHATWG charset label such as "utf-8" or "windows-1250".
	Encoding string
	// SheetName selects the XLSX worksheet. Empty selects the first one.
	SheetName string
}

// Read parses path as XLSX when it has an .xlsx/.xlsm extension, otherwise as
// delimited text.
func Read(path string, opts Options) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(path, opts)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "sheet", "open input", path, err)
	}
	defer file.Close()
	return ReadCSV(file, opts)
}

// ReadCSV parses delimited text from r.
func ReadCSV(r io.Reader, opts Options) (*Sheet, error) {
	decoded, err := decodingReader(r, opts.Encoding)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(decoded)
	reader.Comma = ','
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	var lines []int
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "sheet", "parse csv", "", err)
		}
		line, _ := reader.FieldPos(0)
		records = append(records, record)
		lines = append(lines, line)
	}
	return build(records, lines)
}

func readWorkbook(path string, opts Options) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "sheet", "open workbook", path, err)
	}
	defer f.Close()

	name := strings.TrimSpace(opts.SheetName)
	if name == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, services.Wrap(services.ErrValidation, "sheet", "open workbook", path+" has no worksheets", nil)
		}
		name = list[0]
	}
	records, err := f.GetRows(name)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "sheet", "read worksheet", fmt.Sprintf("%s[%s]", path, name), err)
	}
	lines := make([]int, len(records))
	for i := range records {
		lines[i] = i + 1
	}
	return build(records, lines)
}

func decodingReader(r io.Reader, label string) (io.Reader, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = "utf-8"
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "sheet", "select encoding", label, err)
	}
	var decoder transform.Transformer = enc.NewDecoder()
	if enc == encoding.Encoding(unicode.UTF8) {
		decoder = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	}
	return transform.NewReader(r, decoder), nil
}

// build turns raw records into a Sheet: the first non-blank record is the
// header and the record after it the hint row, even when all of its cells are
// empty. Blank data records are skipped.
func build(records [][]string, lines []int) (*Sheet, error) {
	out := &Sheet{}
	headerSeen := false
	for i, record := range records {
		if !headerSeen {
			if isBlank(record) {
				continue
			}
			header, err := parseHeader(record)
			if err != nil {
				return nil, err
			}
			out.Header = header
			headerSeen = true
			continue
		}
		row := toRow(out.Header, record, lines[i])
		if !out.HasHints {
			out.Hints = row
			out.HasHints = true
			continue
		}
		if isBlank(record) {
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	if !headerSeen {
		return nil, services.Wrap(services.ErrValidation, "sheet", "parse header", "input has no header line", nil)
	}
	return out, nil
}

func parseHeader(record []string) ([]string, error) {
	header := make([]string, len(record))
	seen := make(map[string]struct{}, len(record))
	for i, name := range record {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			return nil, services.Wrap(services.ErrValidation, "sheet", "parse header", fmt.Sprintf("duplicate column %q", name), nil)
		}
		seen[name] = struct{}{}
		header[i] = name
	}
	return header, nil
}

func toRow(header, record []string, line int) Row {
	row := Row{Line: line}
	for i, value := range record {
		if i >= len(header) || header[i] == "" {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		row.Cells = append(row.Cells, Cell{Column: header[i], Value: value})
	}
	return row
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
