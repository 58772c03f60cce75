package diag

import (
	"testing"

	"remedy/internal/source"
)

func TestFingerprintStableAcrossVersions(t *testing.T) {
	fs := source.NewFileSet()
	v1 := fs.AddVirtual("a.txt", []byte("x \n"))
	v2, err := fs.Replace(v1, []byte("x \n"))
	if err != nil {
		t.Fatal(err)
	}

	d1 := New("RMD1001", SevWarning, source.Span{File: v1, Start: 1, End: 2}, "trailing whitespace")
	d2 := New("RMD1001", SevWarning, source.Span{File: v2, Start: 1, End: 2}, "trailing whitespace")

	if d1.Fingerprint(fs) != d2.Fingerprint(fs) {
		t.Fatalf("fingerprints differ: %v vs %v", d1.Fingerprint(fs), d2.Fingerprint(fs))
	}
	if got := d1.Fingerprint(fs).Path; got != "a.txt" {
		t.Fatalf("path = %q", got)
	}
	if got := d1.Fingerprint(nil).Path; got != "" {
		t.Fatalf("nil fileset path = %q", got)
	}
}

func TestWithNoteDoesNotAlias(t *testing.T) {
	base := New("X", SevInfo, source.Span{}, "m")
	base.Notes = make([]Note, 0, 4)
	a := base.WithNote(source.Span{Start: 1}, "a")
	b := base.WithNote(source.Span{Start: 2}, "b")
	if a.Notes[0].Msg != "a" || b.Notes[0].Msg != "b" {
		t.Fatalf("notes aliased: %v %v", a.Notes, b.Notes)
	}
	if len(base.Notes) != 0 {
		t.Fatalf("base mutated")
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{"hidden", SevHidden, false},
		{"INFO", SevInfo, false},
		{" warn ", SevWarning, false},
		{"error", SevError, false},
		{"fatal", SevHidden, true},
	}
	for _, tt := range tests {
		got, err := ParseSeverity(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseSeverity(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseSeverity(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if !(SevHidden < SevInfo && SevInfo < SevWarning && SevWarning < SevError) {
		t.Fatal("severities are not ordered")
	}
}
