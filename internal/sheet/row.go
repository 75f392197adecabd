package sheet

// Cell is one non-empty value under its column name.
type Cell struct {
	Column string
	Value  string
}

// Row holds the non-empty cells of one spreadsheet line in header order.
// Empty cells are absent.
type Row struct {
	Line  int
	Cells []Cell
}

// Value returns the cell under column.
func (r Row) Value(column string) (string, bool) {
	for _, cell := range r.Cells {
		if cell.Column == column {
			return cell.Value, true
		}
	}
	return "", false
}

// Len reports the number of non-empty cells.
func (r Row) Len() int {
	return len(r.Cells)
}

// NewRow builds a row from column/value pairs, skipping empty values. It is
// mostly useful in tests.
func NewRow(line int, pairs ...string) Row {
	row := Row{Line: line}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		row.Cells = append(row.Cells, Cell{Column: pairs[i], Value: pairs[i+1]})
	}
	return row
}

// Sheet is a parsed inventory spreadsheet.
type Sheet struct {
	Header []string
	// Hints is the first line after the header. It carries per-column
	// directives rather than data.
	Hints    Row
	HasHints bool
	Rows     []Row
}
