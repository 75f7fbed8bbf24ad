package diag

import (
	"testing"
)

func TestBagLimitAndDropped(t *testing.T) {
	bag := NewBag(2)
	r := BagReporter{Bag: bag}

	r.Report(TreeExtraExit, SevInfo, 3, "a")
	r.Report(TreeExtraExit, SevInfo, 4, "b")
	r.Report(TreeExtraExit, SevInfo, 5, "c")

	if bag.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bag.Len())
	}
	if bag.Dropped() != 1 {
		t.Fatalf("Dropped = %d, want 1", bag.Dropped())
	}
	if bag.HasWarnings() {
		t.Fatal("info diagnostics must not count as warnings")
	}
}

func TestBagSortPutsEOFLast(t *testing.T) {
	bag := NewBag(10)
	bag.Add(New(SevInfo, TreeUnterminated, 0, "open"))
	bag.Add(New(SevInfo, TreeExtraExit, 7, "extra"))
	bag.Add(New(SevWarning, ParseMalformedLocation, 7, "bad"))
	bag.Add(New(SevWarning, ParseMalformedLocation, 2, "bad"))

	bag.Sort()

	got := bag.Items()
	wantLines := []uint32{2, 7, 7, 0}
	for i, d := range got {
		if d.Line != wantLines[i] {
			t.Fatalf("item %d line = %d, want %d", i, d.Line, wantLines[i])
		}
	}
	if got[1].Severity != SevWarning {
		t.Fatalf("same-line items must be ordered by severity desc, got %v first", got[1].Severity)
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})

	r.Report(ParseMalformedLocation, SevWarning, 1, "x(y)")
	r.Report(ParseMalformedLocation, SevWarning, 9, "x(y)")
	r.Report(ParseMalformedLocation, SevWarning, 9, "z(q)")

	if bag.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bag.Len())
	}
	if bag.Items()[0].Line != 1 {
		t.Fatalf("first occurrence must win, got line %d", bag.Items()[0].Line)
	}
}

func TestFormatShort(t *testing.T) {
	diags := []Diagnostic{
		New(SevWarning, ParseMalformedLocation, 12, "bad site\nsecond"),
		New(SevInfo, TreeUnterminated, 0, "2 open"),
	}
	want := "warning PRS1001 build.log:12 bad site second\n" +
		"info TRE2002 build.log:EOF 2 open"
	if got := FormatShort(diags, "build.log"); got != want {
		t.Fatalf("unexpected output:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestCodeID(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{ParseMalformedLocation, "PRS1001"},
		{TreeExtraExit, "TRE2001"},
		{DialectAmbiguous, "DLC3002"},
		{IOLoadFileError, "IO4001"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("Code(%d).ID() = %q, want %q", tt.code, got, tt.want)
		}
	}
}
