package databind

// Features is a bit-set of mapper behavior toggles.
type Features uint32

const (
	// FailOnDuplicateKey rejects documents where a mapping repeats a key.
	// Off, the last writer wins.
	FailOnDuplicateKey Features = 1 << iota
	// FailOnUnknownField rejects object fields with no registered spec.
	FailOnUnknownField
	// EmitDocumentMarkers wraps encoded YAML output in ---/... markers.
	EmitDocumentMarkers
	// QuoteAmbiguousStrings double-quotes encoded strings that would
	// re-tokenize as numbers, booleans or nulls.
	QuoteAmbiguousStrings
)

// DefaultFeatures is the feature set of a fresh Mapper.
const DefaultFeatures = QuoteAmbiguousStrings

// Has reports whether all bits of f are set.
func (fs Features) Has(f Features) bool {
	return fs&f == f
}

// With returns the set with f added.
func (fs Features) With(f Features) Features {
	return fs | f
}

// Without returns the set with f removed.
func (fs Features) Without(f Features) Features {
	return fs &^ f
}
