package workflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mierune/point-tiler/internal/logging"
	"github.com/mierune/point-tiler/internal/pipeline"
	"github.com/mierune/point-tiler/internal/tilestore"
)

func writeCSV(t *testing.T, dir, name string, rows []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := "x,y,z\n"
	for _, r := range rows {
		content += r + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestExpandGlobsDeduplicatesAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "b.csv", []string{"1,1,1"})
	writeCSV(t, dir, "a.csv", []string{"2,2,2"})

	files, err := expandGlobs([]string{filepath.Join(dir, "*.csv"), filepath.Join(dir, "a.csv")})
	if err != nil {
		t.Fatalf("expandGlobs: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2 (deduplicated)", len(files))
	}
	if filepath.Base(files[0]) != "a.csv" || filepath.Base(files[1]) != "b.csv" {
		t.Errorf("files not sorted: %v", files)
	}
}

func TestExpandGlobsNoMatches(t *testing.T) {
	files, err := expandGlobs([]string{filepath.Join(t.TempDir(), "*.csv")})
	if err != nil {
		t.Fatalf("expandGlobs: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("got %d files, want 0", len(files))
	}
}

func TestRunEndToEndInMemory(t *testing.T) {
	dir := t.TempDir()
	csv := writeCSV(t, dir, "points.csv", []string{
		"0,0,0",
		"90,0,0",
	})
	outDir := filepath.Join(dir, "out")

	opts := Options{
		Input:       []string{csv},
		Output:      outDir,
		InputEPSG:   4979,
		OutputEPSG:  4978,
		Min:         0,
		Max:         2,
		MaxMemoryMB: 4096,
		Threads:     2,
	}
	if err := Run(opts, logging.New(false)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := os.Stat(filepath.Join(outDir, "tileset.json")); err != nil {
		t.Fatalf("tileset.json missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "0", "0", "0.glb")); err != nil {
		t.Fatalf("root GLB missing: %v", err)
	}
}

func TestRunRejectsEmptyInput(t *testing.T) {
	opts := Options{
		Input:       []string{filepath.Join(t.TempDir(), "*.csv")},
		Output:      t.TempDir(),
		InputEPSG:   4979,
		OutputEPSG:  4978,
		Min:         0,
		Max:         2,
		MaxMemoryMB: 4096,
		Threads:     2,
	}
	if err := Run(opts, logging.New(false)); err == nil {
		t.Fatal("expected an error for no matching input files")
	}
}

func TestRunExternalSortRejectsImpossibleBudget(t *testing.T) {
	dir := t.TempDir()
	store := tilestore.New(filepath.Join(dir, ".tiles"))

	opts := Options{
		MaxMemoryMB: 1, // 1 MB can't hold one stageAChunkSize-point chunk.
		Threads:     2,
		Output:      dir,
		Max:         2,
	}
	err := runExternalSort(nil, store, opts)
	if err == nil {
		t.Fatal("expected a budget error, got nil")
	}
	kind, ok := pipeline.KindOf(err)
	if !ok || kind != pipeline.BudgetFailure {
		t.Fatalf("got kind %v (ok=%v), want BudgetFailure", kind, ok)
	}
}

func TestDefaultThreadsPositive(t *testing.T) {
	if DefaultThreads() <= 0 {
		t.Fatal("expected a positive default thread count")
	}
}
