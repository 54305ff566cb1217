package profiling

import (
	"errors"
	"fmt"
)

var (
	// ErrCategoryMismatch is returned when Compute is called with a category the
	// column's storage kind or values cannot satisfy.
	ErrCategoryMismatch = errors.New("category mismatch")

	// ErrUnsupportedStorageKind is returned by Classify for storage kinds that
	// map to no category, not even text.
	ErrUnsupportedStorageKind = errors.New("unsupported storage kind")
)

func categoryMismatch(col Column, cat Category, detail string) error {
	return fmt.Errorf("%w: column %q (%s) profiled as %s: %s", ErrCategoryMismatch, col.Name, col.Kind, cat, detail)
}

func unsupportedKind(col Column) error {
	return fmt.Errorf("%w: column %q has kind %s", ErrUnsupportedStorageKind, col.Name, col.Kind)
}
