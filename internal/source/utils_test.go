package source

import "testing"

func TestTrimLineEnding(t *testing.T) {
	tests := []struct{ in, want string }{
		{"abc\r", "abc"},
		{"abc", "abc"},
		{"a\rb", "a\rb"},
		{"\r", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := string(trimLineEnding([]byte(tt.in))); got != tt.want {
			t.Errorf("trimLineEnding(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRemoveBOM(t *testing.T) {
	got, had := removeBOM([]byte("\ufeffa.cpp"))
	if !had || string(got) != "a.cpp" {
		t.Fatalf("removeBOM = (%q, %v)", got, had)
	}
	got, had = removeBOM([]byte("a.cpp"))
	if had || string(got) != "a.cpp" {
		t.Fatalf("removeBOM without BOM = (%q, %v)", got, had)
	}
}

func TestNormalizeFileNFC(t *testing.T) {
	decomposed := "cafe\u0301.hpp"
	if got := normalizeFile(decomposed); got != "caf\u00e9.hpp" {
		t.Fatalf("normalizeFile(%q) = %q", decomposed, got)
	}
	if got := normalizeFile(`C:\Src\A.cpp`); got != `C:\Src\A.cpp` {
		t.Fatalf("slashes and case must be kept, got %q", got)
	}
}
