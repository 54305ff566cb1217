package report

import (
	"fmt"
	"io"
	"strings"

	"jprofile/domain/profiling"
)

var banner = strings.Repeat("=", 50)

// writeText prints every profile as a banner block followed by indented
// metric lines. Frequency tables nest one level deeper.
func writeText(w io.Writer, set *profiling.ProfileSet) error {
	ew := &errWriter{w: w}

	for _, cp := range set.Ordered() {
		ew.printf("\n%s\n", banner)
		ew.printf("Column: %s (Type: %s)\n", cp.Name, cp.Category)
		ew.printf("%s\n", banner)

		for _, m := range cp.Profile.Metrics() {
			if top, ok := m.Value.([]profiling.ValueCount); ok {
				ew.printf("  %s:\n", m.Name)
				for _, vc := range top {
					ew.printf("    %s: %d\n", vc.Value, vc.Count)
				}
				continue
			}
			ew.printf("  %s: %s\n", m.Name, formatValue(m.Value))
		}
	}

	if len(set.Errors) > 0 {
		ew.printf("\n%s\n", banner)
		ew.printf("Errors\n")
		ew.printf("%s\n", banner)
		for _, name := range set.Columns {
			if msg, ok := set.Errors[name]; ok {
				ew.printf("  %s: %s\n", name, msg)
			}
		}
	}

	return ew.err
}

// errWriter remembers the first write error and skips later writes
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
