// Package export implements tile content export (spec §4.9): each
// intermediate tile file becomes one GLB, plus a content record (geographic
// bounds, output path) the manifest builder folds into tileset.json.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/mierune/point-tiler/internal/decimate"
	"github.com/mierune/point-tiler/internal/glb"
	"github.com/mierune/point-tiler/internal/reproject"
	"github.com/mierune/point-tiler/internal/tilekey"
	"github.com/mierune/point-tiler/internal/tilestore"
)

// Content is one exported tile's record, consumed by internal/manifest.
type Content struct {
	Key          tilekey.Key
	MinLon, MinLat, MinHeight float64
	MaxLon, MaxLat, MaxHeight float64
	GLBPath      string // relative to the output root
}

// Options carries the internal/glb encoder options. The reprojection to
// geocentric coordinates (spec §4.9 step 3) is always EPSG:4979 ->
// EPSG:4978 and is not configurable here.
type Options struct {
	GLB glb.Options
}

// Run exports every tile file at every level in [zmin, zmax], in parallel
// at tile granularity across all levels simultaneously (spec §4.9:
// "Parallelism: tile granularity, across all levels simultaneously").
func Run(store *tilestore.Store, outputDir string, zmin, zmax int, opts Options, workers int) ([]Content, error) {
	if workers <= 0 {
		workers = 1
	}

	var keys []tilekey.Key
	for z := zmin; z <= zmax; z++ {
		level, err := store.ListLevel(z)
		if err != nil {
			return nil, fmt.Errorf("export: list level %d: %w", z, err)
		}
		keys = append(keys, level...)
	}

	contents := make([]Content, len(keys))
	ok := make([]bool, len(keys))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			c, err := exportTile(store, outputDir, key, opts)
			if err != nil {
				return fmt.Errorf("export: tile %+v: %w", key, err)
			}
			contents[i] = c
			ok[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Content, 0, len(contents))
	for i, c := range contents {
		if ok[i] {
			out = append(out, c)
		}
	}
	return out, nil
}

func exportTile(store *tilestore.Store, outputDir string, key tilekey.Key, opts Options) (Content, error) {
	pts, err := store.Read(key)
	if err != nil {
		return Content{}, fmt.Errorf("read: %w", err)
	}
	if len(pts) == 0 {
		return Content{}, fmt.Errorf("empty tile")
	}

	content := Content{Key: key}
	content.MinLon, content.MinLat, content.MinHeight = pts[0].X, pts[0].Y, pts[0].Z
	content.MaxLon, content.MaxLat, content.MaxHeight = pts[0].X, pts[0].Y, pts[0].Z
	for _, p := range pts[1:] {
		if p.X < content.MinLon {
			content.MinLon = p.X
		}
		if p.Y < content.MinLat {
			content.MinLat = p.Y
		}
		if p.Z < content.MinHeight {
			content.MinHeight = p.Z
		}
		if p.X > content.MaxLon {
			content.MaxLon = p.X
		}
		if p.Y > content.MaxLat {
			content.MaxLat = p.Y
		}
		if p.Z > content.MaxHeight {
			content.MaxHeight = p.Z
		}
	}

	ecef, err := reproject.New(reproject.EPSGWGS84Geographic3D, reproject.EPSGWGS84Geocentric)
	if err != nil {
		return Content{}, fmt.Errorf("reproject setup: %w", err)
	}

	if err := ecef.TransformInPlace(pts); err != nil {
		return Content{}, fmt.Errorf("reproject: %w", err)
	}
	for i := range pts {
		pts[i] = reproject.AxisSwap(pts[i])
	}

	voxelSize := tilekey.GeometricError(key) * 0.1
	decimated := decimate.Decimate(pts, voxelSize)

	vertices := make([]glb.Vertex, len(decimated))
	for i, p := range decimated {
		vertices[i] = glb.Vertex{X: p.X, Y: p.Y, Z: p.Z, R: p.R, G: p.G, B: p.B}
	}

	data, err := glb.Encode(vertices, opts.GLB)
	if err != nil {
		return Content{}, fmt.Errorf("encode GLB: %w", err)
	}

	relPath := filepath.Join(strconv.Itoa(key.Z), strconv.Itoa(key.X), strconv.Itoa(key.Y)+".glb")
	if err := writeFile(filepath.Join(outputDir, relPath), data); err != nil {
		return Content{}, fmt.Errorf("write GLB: %w", err)
	}
	content.GLBPath = relPath
	return content, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
