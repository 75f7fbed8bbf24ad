package source

import (
	"fmt"

	"fortio.org/safecast"
)

type locKey struct {
	file StringID
	line uint32
}

// Registry owns every Location seen during a run and hands out LocationIDs.
// Equal (file, line) pairs always map to the same ID; IDs are dense and never
// reused, so callers key maps by LocationID instead of copying paths around.
type Registry struct {
	files *Interner
	byID  []locKey // byID[0] зарезервирован под NoLocationID
	index map[locKey]LocationID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		files: NewInterner(),
		byID:  []locKey{{}},
		index: make(map[locKey]LocationID),
	}
}

// Intern returns the canonical ID for (file, line), creating it on first use.
// File paths are NFC-normalised before interning.
func (r *Registry) Intern(file string, line uint32) LocationID {
	key := locKey{file: r.files.Intern(normalizeFile(file)), line: line}
	if id, ok := r.index[key]; ok {
		return id
	}
	id := LocationID(mustLen32(len(r.byID)))
	r.byID = append(r.byID, key)
	r.index[key] = id
	return id
}

// Find returns the ID for (file, line) without creating it.
func (r *Registry) Find(file string, line uint32) (LocationID, bool) {
	fid, ok := r.files.index[normalizeFile(file)]
	if !ok {
		return NoLocationID, false
	}
	id, ok := r.index[locKey{file: fid, line: line}]
	return id, ok
}

// Lookup returns the location behind id. NoLocationID and unknown IDs yield false.
func (r *Registry) Lookup(id LocationID) (Location, bool) {
	if id == NoLocationID || !r.Has(id) {
		return Location{}, false
	}
	key := r.byID[id]
	return Location{File: r.files.MustLookup(key.file), Line: key.line}, true
}

// MustLookup is Lookup that panics on an invalid ID.
func (r *Registry) MustLookup(id LocationID) Location {
	loc, ok := r.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("invalid location ID %d", id))
	}
	return loc
}

// Has reports whether id was issued by this registry (NoLocationID included).
func (r *Registry) Has(id LocationID) bool {
	return int(id) < len(r.byID)
}

// Len counts NoLocationID too, so it is never less than 1.
func (r *Registry) Len() int {
	return len(r.byID)
}

// Snapshot returns every interned location in ID order; index 0 is the zero Location.
func (r *Registry) Snapshot() []Location {
	out := make([]Location, len(r.byID))
	for i := 1; i < len(r.byID); i++ {
		out[i] = r.MustLookup(LocationID(i))
	}
	return out
}

func mustLen32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("registry overflow: %w", err))
	}
	return v
}
