package tilestore

import (
	"testing"

	"github.com/mierune/point-tiler/internal/point"
	"github.com/mierune/point-tiler/internal/tilekey"
)

func TestWriteReadRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	key := tilekey.Key{Z: 5, X: 3, Y: 2}
	pts := []point.Point{point.NewWithDefaults(1, 2, 3), point.NewWithDefaults(4, 5, 6)}

	if err := s.Write(key, pts); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read(key)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != len(pts) {
		t.Fatalf("got %d points, want %d", len(got), len(pts))
	}
	for i := range pts {
		if got[i] != pts[i] {
			t.Errorf("point %d mismatch: got %+v, want %+v", i, got[i], pts[i])
		}
	}
}

func TestListLevel(t *testing.T) {
	s := New(t.TempDir())
	keys := []tilekey.Key{{Z: 3, X: 0, Y: 0}, {Z: 3, X: 1, Y: 0}, {Z: 4, X: 0, Y: 0}}
	for _, k := range keys {
		if err := s.Write(k, []point.Point{point.NewWithDefaults(0, 0, 0)}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	level3, err := s.ListLevel(3)
	if err != nil {
		t.Fatalf("ListLevel: %v", err)
	}
	if len(level3) != 2 {
		t.Fatalf("got %d tiles at level 3, want 2", len(level3))
	}
}

func TestListLevelMissingDir(t *testing.T) {
	s := New(t.TempDir())
	keys, err := s.ListLevel(9)
	if err != nil {
		t.Fatalf("ListLevel: %v", err)
	}
	if keys != nil {
		t.Errorf("expected nil keys for a missing level, got %v", keys)
	}
}
