package profiling

import (
	"jprofile/domain/core"
)

// ColumnProfile pairs a column with its category and profile.
type ColumnProfile struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Profile  *Profile `json:"profile"`
}

// ProfileSet is the result of profiling a dataset. It is built fresh on every
// profiling call and shares nothing with other sets.
type ProfileSet struct {
	ID         core.ID                  `json:"id"`
	Source     string                   `json:"source"`
	RowCount   int                      `json:"row_count"`
	Columns    []string                 `json:"columns"`
	Profiles   map[string]ColumnProfile `json:"profiles"`
	Errors     map[string]string        `json:"errors,omitempty"`
	ComputedAt core.Timestamp           `json:"computed_at"`
	DurationMs int64                    `json:"duration_ms"`
}

// NewProfileSet creates an empty set for a source.
func NewProfileSet(source string, rowCount int) *ProfileSet {
	return &ProfileSet{
		ID:         core.NewID(),
		Source:     source,
		RowCount:   rowCount,
		Profiles:   make(map[string]ColumnProfile),
		Errors:     make(map[string]string),
		ComputedAt: core.Now(),
	}
}

// Ordered returns the successfully profiled columns in dataset order.
func (s *ProfileSet) Ordered() []ColumnProfile {
	out := make([]ColumnProfile, 0, len(s.Profiles))
	for _, name := range s.Columns {
		if cp, ok := s.Profiles[name]; ok {
			out = append(out, cp)
		}
	}
	return out
}

// ToMap returns the dictionary-shaped export: column name to profile map.
func (s *ProfileSet) ToMap() map[string]map[string]any {
	out := make(map[string]map[string]any, len(s.Profiles))
	for name, cp := range s.Profiles {
		out[name] = cp.Profile.ToMap()
	}
	return out
}
