package profiling

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// StorageKind is the declared storage type of a column, assigned by the
// loading layer before profiling.
type StorageKind uint8

const (
	KindUnknown StorageKind = iota
	KindNull
	KindString
	KindObject
	KindBinary
	KindInteger
	KindFloat
	KindBoolean
	KindDate
	KindDateTime
)

var kindNames = map[StorageKind]string{
	KindUnknown:  "unknown",
	KindNull:     "null",
	KindString:   "string",
	KindObject:   "object",
	KindBinary:   "binary",
	KindInteger:  "integer",
	KindFloat:    "float",
	KindBoolean:  "boolean",
	KindDate:     "date",
	KindDateTime: "datetime",
}

func (k StorageKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseStorageKind parses a kind name case-insensitively.
func ParseStorageKind(s string) (StorageKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown storage kind %q", s)
}

func (k StorageKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *StorageKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	parsed, err := ParseStorageKind(s)
	if err != nil {
		return err
	}

	*k = parsed
	return nil
}

// Category is the statistical profile applied to a column. The set is closed:
// every switch over a Category handles all four values.
type Category uint8

const (
	CategoryNumeric Category = iota + 1
	CategoryBoolean
	CategoryText
	CategoryTemporal
)

// Categories lists every category in classification priority order.
var Categories = []Category{CategoryBoolean, CategoryNumeric, CategoryTemporal, CategoryText}

func (c Category) String() string {
	switch c {
	case CategoryNumeric:
		return "numeric"
	case CategoryBoolean:
		return "boolean"
	case CategoryText:
		return "text"
	case CategoryTemporal:
		return "temporal"
	}
	return ""
}

// Valid reports whether c is one of the four categories.
func (c Category) Valid() bool {
	return c >= CategoryNumeric && c <= CategoryTemporal
}

// ParseCategory parses a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "numeric":
		return CategoryNumeric, nil
	case "boolean":
		return CategoryBoolean, nil
	case "text":
		return CategoryText, nil
	case "temporal":
		return CategoryTemporal, nil
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Category) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}

	*c = parsed
	return nil
}

// Column is one field's ordered values across all rows of a dataset.
// A nil value or a floating point NaN is missing.
type Column struct {
	Name   string      `json:"name"`
	Kind   StorageKind `json:"kind"`
	Values []any       `json:"values"`
}

// NewColumn creates a column with a declared storage kind.
func NewColumn(name string, kind StorageKind, values ...any) Column {
	return Column{Name: name, Kind: kind, Values: values}
}

// Len returns the total row count of the column, missing values included.
func (c Column) Len() int {
	return len(c.Values)
}

// IsMissing reports whether v is a missing value.
func IsMissing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// Present returns the column's non-missing values in order.
func (c Column) Present() []any {
	present := make([]any, 0, len(c.Values))
	for _, v := range c.Values {
		if !IsMissing(v) {
			present = append(present, v)
		}
	}
	return present
}
