// Package aggregate implements the quadtree aggregator (spec §4.8): level
// by level from zmax-1 down to zmin, each parent tile's point set is the
// union of its (already-materialized) children's point sets.
//
// The per-level worker pool folding into thread-local maps, then reducing
// by key-union, repeats the same pattern internal/tiler's in-memory fold
// uses and the teacher's pyramid Generate loop uses across zoom levels
// (tile/generator.go): work one zoom level at a time, parallel within the
// level, quiesce before moving to the next.
package aggregate

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mierune/point-tiler/internal/point"
	"github.com/mierune/point-tiler/internal/tilekey"
	"github.com/mierune/point-tiler/internal/tilestore"
)

// Run materializes every parent tile from zmax-1 down to zmin inclusive,
// reading child tiles and writing parent tiles through store. Child files
// are never deleted (spec §4.8: "they remain on disk for §4.9").
func Run(store *tilestore.Store, zmin, zmax, workers int) error {
	if workers <= 0 {
		workers = 1
	}
	for z := zmax - 1; z >= zmin; z-- {
		if err := aggregateLevel(store, z, workers); err != nil {
			return fmt.Errorf("aggregate: level %d: %w", z, err)
		}
	}
	return nil
}

func aggregateLevel(store *tilestore.Store, z, workers int) error {
	children, err := store.ListLevel(z + 1)
	if err != nil {
		return fmt.Errorf("list children at level %d: %w", z+1, err)
	}
	if len(children) == 0 {
		return nil
	}

	chunks := chunkKeys(children, workers)
	partials := make([]map[tilekey.Key][]point.Point, len(chunks))

	var g errgroup.Group
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			local := map[tilekey.Key][]point.Point{}
			for _, childKey := range chunk {
				pts, err := store.Read(childKey)
				if err != nil {
					return fmt.Errorf("read child %+v: %w", childKey, err)
				}
				parentKey := childKey.Parent()
				local[parentKey] = append(local[parentKey], pts...)
			}
			partials[i] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	merged := map[tilekey.Key][]point.Point{}
	for _, local := range partials {
		for k, pts := range local {
			merged[k] = append(merged[k], pts...)
		}
	}

	var wg errgroup.Group
	wg.SetLimit(workers)
	for parentKey, pts := range merged {
		parentKey, pts := parentKey, pts
		wg.Go(func() error {
			if err := store.Write(parentKey, pts); err != nil {
				return fmt.Errorf("write parent %+v: %w", parentKey, err)
			}
			return nil
		})
	}
	return wg.Wait()
}

func chunkKeys(keys []tilekey.Key, workers int) [][]tilekey.Key {
	if workers > len(keys) {
		workers = len(keys)
	}
	if workers < 1 {
		workers = 1
	}
	chunkSize := (len(keys) + workers - 1) / workers
	var chunks [][]tilekey.Key
	for i := 0; i < len(keys); i += chunkSize {
		end := i + chunkSize
		if end > len(keys) {
			end = len(keys)
		}
		chunks = append(chunks, keys[i:end])
	}
	return chunks
}
