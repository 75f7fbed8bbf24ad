package source

import "fmt"

type (
	// LocationID is a stable handle for a deduplicated (file, line) pair.
	LocationID uint32 // индекс в Registry
	// StringID identifies an interned string.
	StringID uint32
)

const (
	// NoLocationID is reserved for the synthetic tree root.
	NoLocationID LocationID = 0
	// NoStringID maps to the empty string.
	NoStringID StringID = 0
)

// Location is an instantiation site reported by the compiler.
type Location struct {
	File string
	Line uint32 // 1-based, as printed by the compiler
}

// String renders the location as file(line), the same shape for every dialect.
func (l Location) String() string {
	return fmt.Sprintf("%s(%d)", l.File, l.Line)
}
