package source

import (
	"testing"
)

func TestSpanConflicts(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want bool
	}{
		{"disjoint", Span{1, 0, 5}, Span{1, 5, 10}, false},
		{"overlap", Span{1, 0, 6}, Span{1, 5, 10}, true},
		{"nested", Span{1, 0, 10}, Span{1, 3, 4}, true},
		{"two inserts at same point", Span{1, 4, 4}, Span{1, 4, 4}, false},
		{"insert inside range", Span{1, 4, 4}, Span{1, 2, 8}, true},
		{"insert at range end", Span{1, 8, 8}, Span{1, 2, 8}, false},
		{"different files", Span{1, 0, 10}, Span{2, 0, 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Conflicts(tt.b); got != tt.want {
				t.Errorf("Conflicts(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := tt.b.Conflicts(tt.a); got != tt.want {
				t.Errorf("Conflicts(%v, %v) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestSpanCoverAndContains(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 20}
	b := Span{File: 1, Start: 5, End: 12}

	c := a.Cover(b)
	if c != (Span{File: 1, Start: 5, End: 20}) {
		t.Errorf("unexpected cover %v", c)
	}
	if !c.Contains(a) || !c.Contains(b) {
		t.Error("cover must contain both spans")
	}
	if a.Contains(b) {
		t.Error("a must not contain b")
	}
	if got := a.Cover(Span{File: 2, Start: 0, End: 100}); got != a {
		t.Errorf("spans in different files must not merge, got %v", got)
	}
}
