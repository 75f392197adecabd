package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"tapegen/internal/records"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// recordsTable lays out records with a source line column followed by every
// field name in first-seen order.
func recordsTable(recs []records.Record) string {
	headers := []string{"Line"}
	index := map[string]int{}
	for _, rec := range recs {
		for _, field := range rec.Fields() {
			if _, ok := index[field.Name]; ok {
				continue
			}
			index[field.Name] = len(headers)
			headers = append(headers, field.Name)
		}
	}

	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		row := make([]string, len(headers))
		row[0] = strconv.Itoa(rec.Line)
		for _, field := range rec.Fields() {
			row[index[field.Name]] = field.Value
		}
		rows = append(rows, row)
	}
	return renderTable(headers, rows, []columnAlignment{alignRight})
}
