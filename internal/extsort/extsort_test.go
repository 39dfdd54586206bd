package extsort

import (
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
	mu     sync.Mutex
	leaves map[tilekey.Key][]point.Point
}

func newMemSink() *memSink { return &memSink{leaves: map[tilekey.Key][]point.Point{}} }

func (s *memSink) WriteLeaf(key tilekey.Key, points []point.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]point.Point, len(points))
	copy(cp, points)
	s.leaves[key] = cp
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

func TestWriteRunsThenMergeGroupsByLeafTile(t *testing.T) {
	f1 := writeCSV(t, []string{"0,0,0", "0.0000001,0,0"})
	f2 := writeCSV(t, []string{"90,0,0"})

	open := func(path string) (reader.PointReader, error) {
		return reader.NewCSVReader([]string{path})
	}
	newTransformer := func() (reproject.Transformer, error) {
		return reproject.New(4979, 4979)
	}

	cfg := Config{Cores: 2, ChunkSize: 10, MaxInFlight: 2, ZMax: 4, TmpDir: t.TempDir()}
	runPaths, err := WriteRuns([]string{f1, f2}, open, newTransformer, cfg)
	if err != nil {
		t.Fatalf("WriteRuns: %v", err)
	}
	if len(runPaths) == 0 {
		t.Fatal("expected at least one run file")
	}
	for _, p := range runPaths {
		defer os.Remove(p)
	}

	sink := newMemSink()
	if err := Merge(runPaths, cfg.ZMax, sink); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	total := 0
	for _, pts := range sink.leaves {
		total += len(pts)
	}
	if total != 3 {
		t.Fatalf("got %d total merged points, want 3", total)
	}
	if len(sink.leaves) != 2 {
		t.Fatalf("got %d leaf tiles, want 2 (two points share a tile, one is far away)", len(sink.leaves))
	}
}
