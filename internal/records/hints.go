package records

import (
	"fmt"
	"log/slog"
	"strings"

	"tapegen/internal/logging"
	"tapegen/internal/services"
	"tapegen/internal/sheet"
)

// DirectiveKind tags a hint row directive.
type DirectiveKind int

const (
	Passthrough DirectiveKind = iota
	CoerceInt
	Drop
	Reference
)

func (k DirectiveKind) String() string {
	switch k {
	case CoerceInt:
		return "int"
	case Drop:
		return "none"
	case Reference:
		return "ref"
	default:
		return "passthrough"
	}
}

// Directive is a parsed hint cell. Table and Column are set for Reference.
type Directive struct {
	Kind   DirectiveKind
	Table  string
	Column string
}

// HintRow maps column names to their directive. Columns without a directive
// are absent.
type HintRow map[string]Directive

// Directive returns the directive for column.
func (h HintRow) Directive(column string) (Directive, bool) {
	d, ok := h[column]
	return d, ok
}

// ParseHintRow parses the hint row of a sheet. A malformed ref: directive is a
// validation error; unknown directives are logged and treated as pass-through.
func ParseHintRow(row sheet.Row, logger *slog.Logger) (HintRow, error) {
	hints := make(HintRow, len(row.Cells))
	for _, cell := range row.Cells {
		directive, known, err := ParseDirective(cell.Value)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "records", "parse hint row",
				fmt.Sprintf("column %q: %v", cell.Column, err), nil)
		}
		if !known {
			logging.WarnWithContext(logger, "unknown hint directive", "hint_directive_unknown",
				logging.String("column", cell.Column),
				logging.String("directive", cell.Value),
				logging.String(logging.FieldErrorHint, "use int, none, or ref:<table>:<column>"),
				logging.String(logging.FieldImpact, "column is posted unchanged"),
			)
			continue
		}
		if directive.Kind == Passthrough {
			continue
		}
		hints[cell.Column] = directive
	}
	return hints, nil
}

// ParseDirective parses one hint cell. known is false for non-blank text that
// is not a recognised directive.
func ParseDirective(raw string) (Directive, bool, error) {
	text := strings.TrimSpace(raw)
	lower := strings.ToLower(text)
	switch {
	case text == "":
		return Directive{Kind: Passthrough}, true, nil
	case lower == "int":
		return Directive{Kind: CoerceInt}, true, nil
	case lower == "none":
		return Directive{Kind: Drop}, true, nil
	case strings.HasPrefix(lower, "ref:"):
		parts := strings.Split(text, ":")
		if len(parts) != 3 {
			return Directive{}, true, fmt.Errorf("expected ref:<table>:<column>, got %q", text)
		}
		table := strings.TrimSpace(parts[1])
		column := strings.TrimSpace(parts[2])
		if table == "" || column == "" {
			return Directive{}, true, fmt.Errorf("expected ref:<table>:<column>, got %q", text)
		}
		return Directive{Kind: Reference, Table: table, Column: column}, true, nil
	default:
		return Directive{Kind: Passthrough}, false, nil
	}
}
