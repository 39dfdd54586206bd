package tilekey

import "testing"

func TestHilbertRoundTrip(t *testing.T) {
	for z := 0; z <= 12; z++ {
		n := 1 << uint(z)
		// Sample a handful of positions per level rather than the full grid
		// (up to 2^24 tiles at z=12) to keep the test fast.
		for _, pos := range []int{0, 1, n / 3, n / 2, n - 1} {
			if pos < 0 || pos >= n {
				continue
			}
			for _, other := range []int{0, n / 2, n - 1} {
				k := Key{Z: z, X: pos, Y: other}
				id := HilbertID(k)
				got := FromHilbertID(id)
				if got != k {
					t.Fatalf("roundtrip mismatch: %+v -> %d -> %+v", k, id, got)
				}
			}
		}
	}
}

func TestHilbertDistinctPerLevel(t *testing.T) {
	seen := make(map[uint64]Key)
	for z := 0; z <= 6; z++ {
		n := 1 << uint(z)
		for x := 0; x < n; x++ {
			for y := 0; y < n; y++ {
				k := Key{Z: z, X: x, Y: y}
				id := HilbertID(k)
				if prev, ok := seen[id]; ok {
					t.Fatalf("collision: %+v and %+v both map to %d", prev, k, id)
				}
				seen[id] = k
			}
		}
	}
}

func TestParentChildRoundTrip(t *testing.T) {
	k := Key{Z: 5, X: 10, Y: 7}
	for _, c := range k.Children() {
		if c.Parent() != k {
			t.Errorf("child %+v parent = %+v, want %+v", c, c.Parent(), k)
		}
	}
}

func TestGeometricErrorMonotonic(t *testing.T) {
	// Stick to tiles well away from the poles, where the latitude
	// correction cannot overwhelm the per-level halving.
	parents := []Key{
		{Z: 0, X: 0, Y: 0},
		{Z: 3, X: 4, Y: 3},
		{Z: 6, X: 20, Y: 30},
		{Z: 9, X: 200, Y: 250},
	}
	for _, p := range parents {
		pe := GeometricError(p)
		for _, c := range p.Children() {
			ce := GeometricError(c)
			if ce > pe {
				t.Errorf("child error %.6f exceeds parent error %.6f for parent %+v child %+v", ce, pe, p, c)
			}
		}
	}
}

func TestGeometricErrorNonNegative(t *testing.T) {
	for _, k := range []Key{{Z: 0, X: 0, Y: 0}, {Z: 10, X: 5, Y: 1000}, {Z: 20, X: 1, Y: 1}} {
		if GeometricError(k) < 0 {
			t.Errorf("negative geometric error for %+v", k)
		}
	}
}

func TestFromLngLatClampsAndWraps(t *testing.T) {
	k := FromLngLat(4, 190, 89)
	if k.X < 0 || k.X >= 16 || k.Y < 0 || k.Y >= 16 {
		t.Errorf("tile out of range: %+v", k)
	}
}
