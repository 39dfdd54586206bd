package tiler

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mierune/point-tiler/internal/point"
	"github.com/mierune/point-tiler/internal/reader"
	"github.com/mierune/point-tiler/internal/reproject"
	"github.com/mierune/point-tiler/internal/tilekey"
)

type memSink struct {
	mu    sync.Mutex
	wrote map[tilekey.Key]int
}

func newMemSink() *memSink { return &memSink{wrote: map[tilekey.Key]int{}} }

func (s *memSink) WriteLeaf(key tilekey.Key, points []point.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wrote[key] = len(points)
	return nil
}

func writeCSV(t *testing.T, rows []string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "p.csv")
	content := "x,y,z\n"
	for _, r := range rows {
		content += r + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRunGroupsPointsByLeafTile(t *testing.T) {
	f1 := writeCSV(t, []string{"0,0,0"})
	f2 := writeCSV(t, []string{"90,0,0"})

	open := func(path string) (reader.PointReader, error) {
		return reader.NewCSVReader([]string{path})
	}
	identity, _ := reproject.New(4979, 4979)

	groups, err := Run([]string{f1, f2}, open, identity, 2, 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d leaf tiles, want 2 (one per distinct point)", len(groups))
	}
	total := 0
	for _, pts := range groups {
		total += len(pts)
	}
	if total != 2 {
		t.Fatalf("got %d total points, want 2", total)
	}
}

func TestWriteLeavesCallsSinkForEveryGroup(t *testing.T) {
	groups := map[tilekey.Key][]point.Point{
		{Z: 2, X: 0, Y: 0}: {point.NewWithDefaults(0, 0, 0)},
		{Z: 2, X: 3, Y: 1}: {point.NewWithDefaults(90, 0, 0)},
	}
	sink := newMemSink()
	if err := WriteLeaves(groups, sink, 4); err != nil {
		t.Fatalf("WriteLeaves: %v", err)
	}
	if len(sink.wrote) != len(groups) {
		t.Fatalf("sink saw %d writes, want %d", len(sink.wrote), len(groups))
	}
}

type failingSink struct{}

func (failingSink) WriteLeaf(key tilekey.Key, points []point.Point) error {
	return fmt.Errorf("boom")
}

func TestWriteLeavesPropagatesError(t *testing.T) {
	groups := map[tilekey.Key][]point.Point{
		{Z: 0, X: 0, Y: 0}: {point.NewWithDefaults(0, 0, 0)},
	}
	if err := WriteLeaves(groups, failingSink{}, 2); err == nil {
		t.Fatal("expected error from failing sink to propagate")
	}
}
