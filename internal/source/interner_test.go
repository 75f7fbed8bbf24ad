package source

import (
	"fmt"
	"testing"
)

func TestInternerBasic(t *testing.T) {
	interner := NewInterner()

	// NoStringID зарезервирован под пустую строку
	if s, ok := interner.Lookup(NoStringID); !ok || s != "" {
		t.Errorf("NoStringID must map to the empty string, got %q, ok=%v", s, ok)
	}

	id1 := interner.Intern("a.cpp")
	if id1 == NoStringID {
		t.Error("Intern must not return NoStringID for a non-empty string")
	}
	if id2 := interner.Intern("a.cpp"); id1 != id2 {
		t.Errorf("repeated Intern returned different IDs: %d != %d", id1, id2)
	}
	if s, ok := interner.Lookup(id1); !ok || s != "a.cpp" {
		t.Errorf("Lookup returned %q, ok=%v", s, ok)
	}
	if id3 := interner.Intern("b.cpp"); id3 == id1 {
		t.Error("different strings must get different IDs")
	}
	if interner.Len() != 3 {
		t.Errorf("Len = %d, want 3", interner.Len())
	}
}

func TestInternerMustLookupPanics(t *testing.T) {
	interner := NewInterner()
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustLookup must panic for an unknown ID")
		}
	}()
	interner.MustLookup(StringID(9999))
}

func TestInternerSnapshotIsCopy(t *testing.T) {
	interner := NewInterner()
	interner.Intern("hello")

	snapshot := interner.Snapshot()
	snapshot[0] = "modified"
	if s, _ := interner.Lookup(NoStringID); s != "" {
		t.Error("modifying a snapshot must not affect the interner")
	}
}

func TestInternerCopiesInput(t *testing.T) {
	interner := NewInterner()
	buf := []byte("x.hpp")
	id := interner.Intern(string(buf))
	buf[0] = 'y'
	if got := interner.MustLookup(id); got != "x.hpp" {
		t.Fatalf("interned string changed with its source buffer: %q", got)
	}
}

func BenchmarkInternerRepeated(b *testing.B) {
	interner := NewInterner()
	keys := make([]string, 64)
	for i := range keys {
		keys[i] = fmt.Sprintf("include/boost/mpl/file%d.hpp", i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		interner.Intern(keys[i%len(keys)])
	}
}
