package records

import (
	"tapegen/internal/appsheet"
	"tapegen/internal/sheet"
)

// Well-known columns.
const (
	ColumnCategory = "Category"
	ColumnCode     = "Code"
	ColumnBarCode  = "BarCode"
	ColumnLabel    = "Label"
	ColumnValue    = "Value"
	ColumnUnit     = "Unit"
)

// Field is one column value of a record.
type Field struct {
	Name  string
	Value string
}

// Record is an ordered column to value mapping derived from one data row.
type Record struct {
	Line   int
	fields []Field
}

// FromRow copies the non-empty cells of row into a record.
func FromRow(row sheet.Row) Record {
	rec := Record{Line: row.Line, fields: make([]Field, 0, len(row.Cells)+1)}
	for _, cell := range row.Cells {
		rec.fields = append(rec.fields, Field{Name: cell.Column, Value: cell.Value})
	}
	return rec
}

// New builds a record from name/value pairs.
func New(pairs ...string) Record {
	rec := Record{}
	for i := 0; i+1 < len(pairs); i += 2 {
		rec.Set(pairs[i], pairs[i+1])
	}
	return rec
}

// Get returns the value stored under name.
func (r Record) Get(name string) (string, bool) {
	if i := r.index(name); i >= 0 {
		return r.fields[i].Value, true
	}
	return "", false
}

// Set replaces the value under name, appending the field when new.
func (r *Record) Set(name, value string) {
	if i := r.index(name); i >= 0 {
		r.fields[i].Value = value
		return
	}
	r.fields = append(r.fields, Field{Name: name, Value: value})
}

// Delete removes name from the record.
func (r *Record) Delete(name string) {
	if i := r.index(name); i >= 0 {
		r.fields = append(r.fields[:i], r.fields[i+1:]...)
	}
}

// Fields returns a copy of the fields in order.
func (r Record) Fields() []Field {
	return append([]Field(nil), r.fields...)
}

// Len reports the number of fields.
func (r Record) Len() int {
	return len(r.fields)
}

// BarCode returns the synthesized barcode payload.
func (r Record) BarCode() string {
	v, _ := r.Get(ColumnBarCode)
	return v
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	return Record{Line: r.Line, fields: r.Fields()}
}

// AppSheetRow converts the record into an insert payload row.
func (r Record) AppSheetRow() appsheet.Row {
	row := make(appsheet.Row, len(r.fields))
	for _, f := range r.fields {
		row[f.Name] = f.Value
	}
	return row
}

func (r Record) index(name string) int {
	for i, f := range r.fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}
