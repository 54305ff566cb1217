package excel

import (
	"jprofile/adapters/coercer"
)

// ReaderConfig holds configuration for Excel and CSV data sources
type ReaderConfig struct {
	Sheet          string                 `json:"sheet"`
	Delimiter      rune                   `json:"delimiter"`
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
}

// DefaultReaderConfig returns sensible defaults for dataset loading
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Sheet:          "Sheet1",
		Delimiter:      ',',
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}
