package tds

// ColumnNameReplacer rewrites a decoded column name. index is the 0-based
// column position and metadata the column's base metadata.
type ColumnNameReplacer func(name string, index int, metadata Metadata) string

// Options is the read-only session configuration consulted while decoding
type Options struct {
	TDSVersion Version

	// AlwaysEncrypted enables column encryption support: the CekTable and
	// per-column crypto metadata are decoded only when it is set.
	AlwaysEncrypted bool

	// ColumnNameReplacer takes precedence over CamelCaseColumns
	ColumnNameReplacer ColumnNameReplacer
	CamelCaseColumns   bool

	// MetadataDecoder decodes base metadata and type info. Nil selects
	// DefaultMetadataDecoder.
	MetadataDecoder MetadataDecoder

	// Observer receives decode lifecycle events. May be nil.
	Observer Observer
}

// DefaultOptions returns options for a TDS 7.4 session without encryption
func DefaultOptions() Options {
	return Options{TDSVersion: Version7_4}
}

func (o Options) metadataDecoder() MetadataDecoder {
	if o.MetadataDecoder != nil {
		return o.MetadataDecoder
	}
	return DefaultMetadataDecoder
}
