// Package tiler implements the in-memory tiler (spec §4.6): the fast path
// used when every input file fits comfortably inside the configured memory
// budget.
//
// The read -> transform -> fold -> write pipeline, and the worker-pool
// shape that drives each stage, are adapted from the teacher's pyramid
// generator (tile/generator.go's Generate): a job channel plus a
// sync.WaitGroup-guarded worker pool feeding a buffered error channel. This
// package generalizes that to golang.org/x/sync/errgroup, which collapses
// the teacher's hand-rolled wg+errCh+select boilerplate into one
// first-error-wins group — the same concurrency idiom, fewer moving
// parts.
package tiler

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/mierune/point-tiler/internal/point"
	"github.com/mierune/point-tiler/internal/reader"
	"github.com/mierune/point-tiler/internal/reproject"
	"github.com/mierune/point-tiler/internal/tilekey"
)

// LeafWriter persists one leaf tile's point set. Implementations must be
// safe for concurrent calls with distinct keys (spec §4.6: "each key's
// point list is serialized to its leaf-tile file in parallel").
type LeafWriter interface {
	WriteLeaf(key tilekey.Key, points []point.Point) error
}

// OpenFunc opens one input shard (typically one file) as a PointReader.
type OpenFunc func(path string) (reader.PointReader, error)

// Run executes the in-memory tiling protocol over files, assigning every
// point to its zmax leaf tile, and returns the points grouped by leaf key;
// WriteLeaves hands those groups to a sink.
//
// Fails with the underlying IoFailure/ProjectionFailure classification left
// to the caller (internal/pipeline wraps these); this package only returns
// plain errors.
func Run(files []string, open OpenFunc, transformer reproject.Transformer, zmax, workers int) (map[tilekey.Key][]point.Point, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	points, err := readAll(files, open, workers)
	if err != nil {
		return nil, fmt.Errorf("tiler: read: %w", err)
	}

	if err := transformer.TransformInPlace(points); err != nil {
		return nil, fmt.Errorf("tiler: transform: %w", err)
	}

	return fold(points, zmax, workers), nil
}

// WriteLeaves serializes every grouped leaf tile in parallel via sink.
func WriteLeaves(groups map[tilekey.Key][]point.Point, sink LeafWriter, workers int) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	type entry struct {
		key    tilekey.Key
		points []point.Point
	}
	entries := make([]entry, 0, len(groups))
	for k, pts := range groups {
		entries = append(entries, entry{k, pts})
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for _, e := range entries {
		e := e
		g.Go(func() error {
			if err := sink.WriteLeaf(e.key, e.points); err != nil {
				return fmt.Errorf("tiler: write leaf %+v: %w", e.key, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// readAll reads every file on its own goroutine and concatenates the
// results in file order once all readers finish (spec §4.6: "read all
// points across all input files in parallel ... concatenate into a single
// collection").
func readAll(files []string, open OpenFunc, workers int) ([]point.Point, error) {
	results := make([][]point.Point, len(files))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			r, err := open(f)
			if err != nil {
				return fmt.Errorf("open %s: %w", f, err)
			}
			defer r.Close()

			pts, err := reader.ReadAll(r)
			if err != nil {
				return fmt.Errorf("read %s: %w", f, err)
			}
			results[i] = pts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, pts := range results {
		total += len(pts)
	}
	all := make([]point.Point, 0, total)
	for _, pts := range results {
		all = append(all, pts...)
	}
	return all, nil
}

// fold assigns every point to its zmax leaf tile, folding in parallel via
// worker-local maps reduced by key-union (spec §4.6).
func fold(points []point.Point, zmax, workers int) map[tilekey.Key][]point.Point {
	if len(points) == 0 {
		return map[tilekey.Key][]point.Point{}
	}
	if workers > len(points) {
		workers = len(points)
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (len(points) + workers - 1) / workers
	partials := make([]map[tilekey.Key][]point.Point, workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		start := w * chunkSize
		if start >= len(points) {
			partials[w] = map[tilekey.Key][]point.Point{}
			continue
		}
		end := start + chunkSize
		if end > len(points) {
			end = len(points)
		}
		g.Go(func() error {
			local := map[tilekey.Key][]point.Point{}
			for _, p := range points[start:end] {
				key := tilekey.FromLngLat(zmax, p.X, p.Y)
				local[key] = append(local[key], p)
			}
			partials[w] = local
			return nil
		})
	}
	g.Wait() // fold never fails: no I/O, no fallible transform

	merged := map[tilekey.Key][]point.Point{}
	for _, local := range partials {
		for k, pts := range local {
			merged[k] = append(merged[k], pts...)
		}
	}
	return merged
}
