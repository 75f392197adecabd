package label

import (
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"tapegen/internal/logging"
	"tapegen/internal/records"
)

// AutoTemplate selects the Label column, or Value followed by Unit.
const AutoTemplate = "auto"

// RenderCaption expands the :field: placeholders of template with the trimmed
// record values. Unknown fields are logged and replaced with nothing. An empty
// template yields an empty caption. The result is NFC-normalized.
func RenderCaption(rec records.Record, template string, logger *slog.Logger) string {
	if strings.TrimSpace(template) == "" {
		return ""
	}
	if strings.EqualFold(strings.TrimSpace(template), AutoTemplate) {
		return norm.NFC.String(DefaultCaption(rec))
	}

	var b strings.Builder
	rest := template
	for {
		start := strings.IndexByte(rest, ':')
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[start+1:], ':')
		if end < 0 {
			b.WriteString(rest)
			break
		}
		end += start + 1
		name := rest[start+1 : end]
		value, found := rec.Get(name)
		if !found && !isFieldName(name) {
			// Literal colon; the closing one may open the next placeholder.
			b.WriteString(rest[:end])
			rest = rest[end:]
			continue
		}
		b.WriteString(rest[:start])
		if found {
			b.WriteString(strings.TrimSpace(value))
		} else {
			logging.WarnWithContext(logger, "caption placeholder unresolved", "caption_field_missing",
				logging.String("field", name),
				logging.Int("line", rec.Line),
				logging.String(logging.FieldErrorHint, "check the column name in label.format"),
				logging.String(logging.FieldImpact, "placeholder printed as empty text"),
			)
		}
		rest = rest[end+1:]
	}
	return norm.NFC.String(b.String())
}

// DefaultCaption returns Label when present, otherwise Value followed by Unit.
func DefaultCaption(rec records.Record) string {
	if text, ok := rec.Get(records.ColumnLabel); ok && strings.TrimSpace(text) != "" {
		return strings.TrimSpace(text)
	}
	value, ok := rec.Get(records.ColumnValue)
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return ""
	}
	unit, _ := rec.Get(records.ColumnUnit)
	return value + strings.TrimSpace(unit)
}

// isFieldName reports whether an unknown name between colons is meant as a
// placeholder. Text containing whitespace is literal, so "Size: :Value:" and
// "1:2 and 3:4" keep their colons; column names with spaces still resolve when
// the record has them.
func isFieldName(name string) bool {
	return name != "" && !strings.ContainsFunc(name, unicode.IsSpace)
}
