package grid

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCombine(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Point
		want   Point
		wantOK bool
	}{
		{"upper x edge rejected", Pt(29, 0, 0), Pt(1, 0, 0), Point{}, false},
		{"step back from edge", Pt(29, 0, 0), Pt(-1, 0, 0), Pt(28, 0, 0), true},
		{"lower y edge rejected", Pt(0, 0, 5), Pt(0, -1, 0), Point{}, false},
		{"upper z edge rejected", Pt(3, 3, 29), Pt(0, 0, 1), Point{}, false},
		{"origin plus zero", Pt(0, 0, 0), Pt(0, 0, 0), Pt(0, 0, 0), true},
		{"interior", Pt(10, 11, 12), Pt(1, -1, 1), Pt(11, 10, 13), true},
		{"far corner", Pt(28, 28, 28), Pt(1, 1, 1), Pt(29, 29, 29), true},
		{"large offsets cancel", Pt(5, 5, 5), Pt(100, 0, 0).Add(Pt(-100, 0, 0)), Pt(5, 5, 5), true},
		{"huge negative", Pt(0, 0, 0), Pt(-1_000_000, 0, 0), Point{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Combine(tt.a, tt.b)
			if ok != tt.wantOK {
				t.Fatalf("Combine(%v, %v) ok = %v, want %v", tt.a, tt.b, ok, tt.wantOK)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Combine(%v, %v) mismatch (-want +got):\n%s", tt.a, tt.b, diff)
			}
		})
	}
}

func TestCombineIsCommutative(t *testing.T) {
	for p := range Points() {
		for _, off := range Cardinals {
			a, okA := Combine(p, off)
			b, okB := Combine(off, p)
			if a != b || okA != okB {
				t.Fatalf("Combine not commutative for %v and %v", p, off)
			}
		}
	}
}

func TestIndexRoundTrip(t *testing.T) {
	seen := make(map[int]bool, Cells)
	for p := range Points() {
		i := p.Index()
		if i < 0 || i >= Cells {
			t.Fatalf("Index(%v) = %d, out of range", p, i)
		}
		if seen[i] {
			t.Fatalf("Index(%v) = %d collides", p, i)
		}
		seen[i] = true
		if back := FromIndex(i); back != p {
			t.Fatalf("FromIndex(%d) = %v, want %v", i, back, p)
		}
	}
	if len(seen) != Cells {
		t.Errorf("Points yielded %d cells, want %d", len(seen), Cells)
	}
}

func TestPointsOrder(t *testing.T) {
	var first []Point
	for p := range Points() {
		first = append(first, p)
		if len(first) == 3 {
			break
		}
	}
	want := []Point{Pt(0, 0, 0), Pt(0, 0, 1), Pt(0, 0, 2)}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("Points order mismatch (-want +got):\n%s", diff)
	}
}

func TestSlabsPartitionSpace(t *testing.T) {
	counts := New[int]()
	bounds := [][2]int{{0, 7}, {7, 8}, {8, 21}, {21, Extent}}
	for _, b := range bounds {
		for p := range Slab(b[0], b[1]) {
			if p.X < b[0] || p.X >= b[1] {
				t.Fatalf("Slab(%d, %d) yielded %v", b[0], b[1], p)
			}
			counts.Set(p, counts.At(p)+1)
		}
	}
	if n := counts.Count(func(c int) bool { return c != 1 }); n != 0 {
		t.Errorf("%d cells not visited exactly once", n)
	}
}

func TestSlabClampsBounds(t *testing.T) {
	n := 0
	for range Slab(-5, Extent+5) {
		n++
	}
	if n != Cells {
		t.Errorf("clamped slab yielded %d cells, want %d", n, Cells)
	}
}

func TestGridSetAt(t *testing.T) {
	g := New[bool]()
	if g.Count(func(b bool) bool { return b }) != 0 {
		t.Fatal("new grid is not all false")
	}
	g.Set(Pt(1, 2, 3), true)
	g.Set(Pt(29, 29, 29), true)
	if !g.At(Pt(1, 2, 3)) || !g.At(Pt(29, 29, 29)) {
		t.Error("Set values not readable via At")
	}
	if g.At(Pt(3, 2, 1)) {
		t.Error("At(3,2,1) = true, want false")
	}
	if n := g.Count(func(b bool) bool { return b }); n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}
