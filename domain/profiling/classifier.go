package profiling

// Classify assigns a column exactly one category from its declared storage
// kind. Values are never inspected, so a string column holding "2023" stays
// text. Columns without a known kind (all missing) default to text.
func Classify(col Column) (Category, error) {
	cat, ok := categoryForKind(col.Kind)
	if !ok {
		return 0, unsupportedKind(col)
	}
	return cat, nil
}

func categoryForKind(kind StorageKind) (Category, bool) {
	switch kind {
	case KindBoolean:
		return CategoryBoolean, true
	case KindInteger, KindFloat:
		return CategoryNumeric, true
	case KindDate, KindDateTime:
		return CategoryTemporal, true
	case KindString, KindObject, KindNull, KindUnknown:
		return CategoryText, true
	}
	return 0, false
}

// kindCarriesNoType reports whether the declared kind says nothing about the
// values, which is the case for columns loaded without any present value.
func kindCarriesNoType(kind StorageKind) bool {
	return kind == KindNull || kind == KindUnknown
}
