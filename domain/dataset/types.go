package dataset

import (
	"fmt"
	"strings"

	"jprofile/domain/profiling"
)

// Dataset represents a loaded table: named columns of equal length, each
// carrying the storage kind decided at load time
type Dataset struct {
	Name    string             `json:"name"`
	Columns []profiling.Column `json:"columns"`
}

// New creates a dataset from columns
func New(name string, columns ...profiling.Column) *Dataset {
	return &Dataset{Name: name, Columns: columns}
}

// RowCount returns the number of rows, taken from the first column
func (d *Dataset) RowCount() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return d.Columns[0].Len()
}

// ColumnNames returns the column names in dataset order
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		names[i] = col.Name
	}
	return names
}

// Column looks up a column by name
func (d *Dataset) Column(name string) (profiling.Column, bool) {
	for _, col := range d.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return profiling.Column{}, false
}

// Select returns a dataset restricted to the named columns, in the given
// order. Unknown names are an error.
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	if len(names) == 0 {
		return d, nil
	}

	out := &Dataset{Name: d.Name, Columns: make([]profiling.Column, 0, len(names))}
	var missing []string
	for _, name := range names {
		col, ok := d.Column(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		out.Columns = append(out.Columns, col)
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("unknown columns: %s", strings.Join(missing, ", "))
	}

	return out, nil
}

// Validate checks that column names are unique and non-empty and that every
// column has the same length
func (d *Dataset) Validate() error {
	seen := make(map[string]bool, len(d.Columns))
	rows := d.RowCount()

	for i, col := range d.Columns {
		if col.Name == "" {
			return fmt.Errorf("column %d has no name", i)
		}
		if seen[col.Name] {
			return fmt.Errorf("duplicate column name %q", col.Name)
		}
		seen[col.Name] = true

		if col.Len() != rows {
			return fmt.Errorf("column %q has %d rows, expected %d", col.Name, col.Len(), rows)
		}
	}

	return nil
}
