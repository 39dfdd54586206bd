package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// expandGlobs expands each input pattern (spec §4.11 step 1) and returns
// the union of matches, deduplicated and sorted for deterministic shard
// assignment downstream. Grounded on the teacher's collectTIFFs
// (cmd/geotiff2pmtiles/main.go), generalized from a fixed .tif/.tiff
// extension check to arbitrary glob patterns since spec §6.1 takes glob
// patterns directly rather than a directory to scan.
func expandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("workflow: glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, fmt.Errorf("workflow: stat %s: %w", m, err)
			}
			if info.IsDir() {
				continue
			}
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// sumSizes totals the byte size of every file, the input-size estimate
// spec §4.11 step 2 compares against the memory budget.
func sumSizes(files []string) (int64, error) {
	var total int64
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			return 0, fmt.Errorf("workflow: stat %s: %w", f, err)
		}
		total += info.Size()
	}
	return total, nil
}

// writeTileset writes the manifest JSON to <output>/tileset.json.
func writeTileset(outputDir string, data []byte) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("workflow: mkdir %s: %w", outputDir, err)
	}
	path := filepath.Join(outputDir, "tileset.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("workflow: write %s: %w", path, err)
	}
	return nil
}
