package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mierune/point-tiler/internal/glb"
	"github.com/mierune/point-tiler/internal/point"
	"github.com/mierune/point-tiler/internal/tilekey"
	"github.com/mierune/point-tiler/internal/tilestore"
)

func TestRunWritesOneGLBPerTile(t *testing.T) {
	store := tilestore.New(t.TempDir())
	outDir := t.TempDir()

	keyA := tilekey.Key{Z: 3, X: 1, Y: 2}
	keyB := tilekey.Key{Z: 3, X: 1, Y: 3}
	pts := []point.Point{
		point.NewWithDefaults(139.70, 35.68, 10),
		point.NewWithDefaults(139.71, 35.69, 12),
		point.NewWithDefaults(139.72, 35.70, 8),
	}
	if err := store.Write(keyA, pts); err != nil {
		t.Fatalf("Write keyA: %v", err)
	}
	if err := store.Write(keyB, pts[:1]); err != nil {
		t.Fatalf("Write keyB: %v", err)
	}

	contents, err := Run(store, outDir, 3, 3, Options{GLB: glb.Options{}}, 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(contents) != 2 {
		t.Fatalf("got %d contents, want 2", len(contents))
	}

	for _, c := range contents {
		full := filepath.Join(outDir, c.GLBPath)
		info, err := os.Stat(full)
		if err != nil {
			t.Fatalf("GLB file missing for %+v: %v", c.Key, err)
		}
		if info.Size() == 0 {
			t.Errorf("GLB file for %+v is empty", c.Key)
		}
		if c.MinLon > c.MaxLon || c.MinLat > c.MaxLat {
			t.Errorf("invalid bounds for %+v: %+v", c.Key, c)
		}
	}
}

func TestRunSkipsEmptyLevels(t *testing.T) {
	store := tilestore.New(t.TempDir())
	outDir := t.TempDir()

	contents, err := Run(store, outDir, 0, 5, Options{}, 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(contents) != 0 {
		t.Fatalf("got %d contents, want 0 for an empty store", len(contents))
	}
}

func TestRunQuantizedOption(t *testing.T) {
	store := tilestore.New(t.TempDir())
	outDir := t.TempDir()

	key := tilekey.Key{Z: 10, X: 5, Y: 5}
	pts := []point.Point{point.NewWithDefaults(140.0, 36.0, 100), point.NewWithDefaults(140.001, 36.001, 105)}
	if err := store.Write(key, pts); err != nil {
		t.Fatalf("Write: %v", err)
	}

	contents, err := Run(store, outDir, 10, 10, Options{GLB: glb.Options{Quantize: true}}, 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	if _, err := os.Stat(filepath.Join(outDir, contents[0].GLBPath)); err != nil {
		t.Fatalf("quantized GLB missing: %v", err)
	}
}
