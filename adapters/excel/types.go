package excel

import (
	"fmt"
	"strings"

	"jprofile/adapters/coercer"
	"jprofile/domain/dataset"
	"jprofile/domain/profiling"
)

// RawTable is a sheet or CSV file as read, before any typing
type RawTable struct {
	Headers []string   // Column headers
	Rows    [][]string // Data rows, padded to len(Headers)

	// Hints holds kinds forced by the source's native cell types, by column
	// index. Only spreadsheets provide them.
	Hints map[int]profiling.StorageKind
}

// newRawTable builds a table from raw records, the first being the header
func newRawTable(records [][]string) (*RawTable, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("file must have at least a header row")
	}

	headers := normalizeHeaders(records[0])
	rows := make([][]string, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) > len(headers) {
			return nil, fmt.Errorf("row %d has %d cells, header has %d", i+2, len(record), len(headers))
		}
		row := make([]string, len(headers))
		copy(row, record)
		rows = append(rows, row)
	}

	return &RawTable{Headers: headers, Rows: rows}, nil
}

// Column returns the raw cells of column i
func (t *RawTable) Column(i int) []string {
	cells := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		cells[r] = row[i]
	}
	return cells
}

// ToDataset types every column with the coercer. A native cell type hint
// overrides the inferred kind.
func (t *RawTable) ToDataset(name string, c *coercer.TypeCoercer) *dataset.Dataset {
	ds := dataset.New(name)

	for i, header := range t.Headers {
		raw := t.Column(i)
		kind := c.InferKind(raw)
		if hint, ok := t.Hints[i]; ok && kind != profiling.KindNull {
			kind = hint
		}
		ds.Columns = append(ds.Columns, profiling.Column{
			Name:   header,
			Kind:   kind,
			Values: c.Materialize(raw, kind),
		})
	}

	return ds
}

// normalizeHeaders trims header cells, names blank ones by position and
// suffixes repeats with .1, .2, ... skipping names already in use
func normalizeHeaders(row []string) []string {
	headers := make([]string, len(row))
	used := make(map[string]bool, len(row))
	next := make(map[string]int, len(row))

	for i, cell := range row {
		base := strings.TrimSpace(cell)
		if base == "" {
			base = fmt.Sprintf("column_%d", i+1)
		}
		h := base
		for used[h] {
			next[base]++
			h = fmt.Sprintf("%s.%d", base, next[base])
		}
		used[h] = true
		headers[i] = h
	}

	return headers
}
