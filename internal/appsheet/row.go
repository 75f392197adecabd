package appsheet

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RowIDColumn is the key column AppSheet assigns to every row.
const RowIDColumn = "Row ID"

// Row is one remote table row as decoded from the API.
type Row map[string]any

// Value returns the column rendered as a string. Null and absent columns report false.
func (r Row) Value(column string) (string, bool) {
	raw, ok := r[column]
	if !ok || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	default:
		return fmt.Sprint(v), true
	}
}

// RowID returns the AppSheet key of the row, or "" when absent.
func (r Row) RowID() string {
	id, _ := r.Value(RowIDColumn)
	return strings.TrimSpace(id)
}

// Equals reports whether column holds exactly value.
func (r Row) Equals(column, value string) bool {
	got, ok := r.Value(column)
	return ok && got == value
}
