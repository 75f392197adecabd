package records

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"tapegen/internal/appsheet"
	"tapegen/internal/logging"
	"tapegen/internal/services"
	"tapegen/internal/sheet"
)

// CodeSource supplies the category to component code mapping.
type CodeSource interface {
	ComponentCodes(ctx context.Context) map[string]string
}

// Resolver finds the first remote row of table satisfying match.
type Resolver interface {
	Item(ctx context.Context, table string, match func(appsheet.Row) bool) (appsheet.Row, bool)
}

// Normalizer turns spreadsheet rows into records and prepares them for insert.
type Normalizer struct {
	codes    CodeSource
	resolver Resolver
	logger   *slog.Logger
}

// NewNormalizer constructs a normalizer. The reference cache satisfies both
// interfaces.
func NewNormalizer(codes CodeSource, resolver Resolver, logger *slog.Logger) *Normalizer {
	return &Normalizer{
		codes:    codes,
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "records"),
	}
}

// SynthesizeBarcode returns "$" + component code + "$" + Code for rec.
func SynthesizeBarcode(ctx context.Context, rec Record, codes CodeSource) (string, error) {
	category, ok := rec.Get(ColumnCategory)
	if !ok || strings.TrimSpace(category) == "" {
		return "", services.Wrap(services.ErrValidation, "records", "synthesize barcode",
			fmt.Sprintf("line %d: missing %s", rec.Line, ColumnCategory), nil)
	}
	code, ok := rec.Get(ColumnCode)
	if !ok || strings.TrimSpace(code) == "" {
		return "", services.Wrap(services.ErrValidation, "records", "synthesize barcode",
			fmt.Sprintf("line %d: missing %s", rec.Line, ColumnCode), nil)
	}
	component, ok := codes.ComponentCodes(ctx)[category]
	if !ok {
		return "", services.Wrap(services.ErrNotFound, "records", "synthesize barcode",
			fmt.Sprintf("line %d: no component code for category %q", rec.Line, category), nil)
	}
	return "$" + component + "$" + code, nil
}

// Normalize builds one record per row, in order, each carrying a BarCode. Any
// failing row aborts the whole batch.
func (n *Normalizer) Normalize(ctx context.Context, rows []sheet.Row) ([]Record, error) {
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := FromRow(row)
		barcode, err := SynthesizeBarcode(ctx, rec, n.codes)
		if err != nil {
			return nil, err
		}
		rec.Set(ColumnBarCode, barcode)
		out = append(out, rec)
	}
	n.logger.Debug("records normalized", logging.Int("records", len(out)))
	return out, nil
}

// ApplyHints returns a copy of rec with the hint directives applied. Fields
// marked none, and coerced or resolved fields whose value ends up empty or
// "none", are removed once every directive has been evaluated. Pass-through
// fields are left as they are.
func (n *Normalizer) ApplyHints(ctx context.Context, rec Record, hints HintRow) (Record, error) {
	out := rec.Clone()
	var remove, converted []string
	for _, field := range rec.fields {
		directive, ok := hints.Directive(field.Name)
		if !ok {
			continue
		}
		switch directive.Kind {
		case CoerceInt:
			value, err := coerceInt(field.Value)
			if err != nil {
				return Record{}, services.Wrap(services.ErrValidation, "records", "apply hints",
					fmt.Sprintf("line %d: column %q", rec.Line, field.Name), err)
			}
			out.Set(field.Name, value)
			converted = append(converted, field.Name)
		case Drop:
			remove = append(remove, field.Name)
		case Reference:
			id, err := n.resolve(ctx, directive, field.Value)
			if err != nil {
				return Record{}, services.Wrap(services.ErrNotFound, "records", "apply hints",
					fmt.Sprintf("line %d: column %q", rec.Line, field.Name), err)
			}
			out.Set(field.Name, id)
			converted = append(converted, field.Name)
		}
	}
	for _, name := range converted {
		value, _ := out.Get(name)
		if value = strings.TrimSpace(value); value == "" || strings.EqualFold(value, "none") {
			remove = append(remove, name)
		}
	}
	for _, name := range remove {
		out.Delete(name)
	}
	return out, nil
}

func (n *Normalizer) resolve(ctx context.Context, directive Directive, value string) (string, error) {
	if n.resolver == nil {
		return "", fmt.Errorf("no reference resolver configured")
	}
	row, ok := n.resolver.Item(ctx, directive.Table, func(r appsheet.Row) bool {
		return r.Equals(directive.Column, value)
	})
	if !ok {
		return "", fmt.Errorf("%q not found in %s.%s", value, directive.Table, directive.Column)
	}
	id := row.RowID()
	if id == "" {
		return "", fmt.Errorf("%s row matching %q has no %s", directive.Table, value, appsheet.RowIDColumn)
	}
	n.logger.Debug("reference resolved",
		logging.String(logging.FieldTable, directive.Table),
		logging.String("value", value),
		logging.String("row_id", id),
	)
	return id, nil
}

// coerceInt accepts integers and decimal numbers, truncating toward zero.
func coerceInt(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		return strconv.FormatInt(v, 10), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%q is not a number", raw)
	}
	if f >= math.MaxInt64 || f <= math.MinInt64 {
		return "", fmt.Errorf("%q is out of range", raw)
	}
	return strconv.FormatInt(int64(f), 10), nil
}
