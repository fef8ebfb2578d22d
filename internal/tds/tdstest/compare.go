package tdstest

import (
	"github.com/google/go-cmp/cmp"
	"github.com/leengari/tdsmeta/internal/tds"
)

// CmpOptions compares decoded tokens. Data types are table entries and
// compare by identity.
var CmpOptions = []cmp.Option{
	cmp.Comparer(func(a, b *tds.DataType) bool { return a == b }),
}

// Diff returns a human-readable diff of two tokens, empty when equal
func Diff(want, got any) string {
	return cmp.Diff(want, got, CmpOptions...)
}
