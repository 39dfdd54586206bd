// Package tilestore persists and retrieves the intermediate tile files of
// spec §6.2: one file per tile, at path `<root>/<z>/<x>/<y>.bin`, holding a
// point sequence in the fixed-record encoding of internal/point. Every
// pipeline stage that produces or consumes a tile's point set (the
// in-memory and external-sort tilers, the quadtree aggregator, the tile
// content exporter) goes through this package rather than touching the
// filesystem directly.
package tilestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mierune/point-tiler/internal/point"
	"github.com/mierune/point-tiler/internal/tilekey"
)

// Store is a directory of intermediate tile files rooted at Dir.
type Store struct {
	Dir string
}

// New returns a Store rooted at dir. The directory is created lazily by
// WriteLeaf/Write, not here.
func New(dir string) *Store {
	return &Store{Dir: dir}
}

// Path returns the on-disk path for a tile key, without touching the
// filesystem.
func (s *Store) Path(key tilekey.Key) string {
	return filepath.Join(s.Dir, strconv.Itoa(key.Z), strconv.Itoa(key.X), strconv.Itoa(key.Y)+".bin")
}

// WriteLeaf implements both internal/tiler.LeafWriter and
// internal/extsort.LeafWriter.
func (s *Store) WriteLeaf(key tilekey.Key, points []point.Point) error {
	return s.Write(key, points)
}

// Write persists points as the tile file for key, creating parent
// directories as needed.
func (s *Store) Write(key tilekey.Key, points []point.Point) error {
	path := s.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("tilestore: mkdir for %+v: %w", key, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tilestore: create %s: %w", path, err)
	}
	defer f.Close()
	if err := point.WriteSequence(f, points); err != nil {
		return fmt.Errorf("tilestore: write %s: %w", path, err)
	}
	return nil
}

// Read decodes the tile file for key. Returns an error wrapping
// os.ErrNotExist if the tile has no file.
func (s *Store) Read(key tilekey.Key) ([]point.Point, error) {
	path := s.Path(key)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pts, err := point.ReadSequence(f)
	if err != nil {
		return nil, fmt.Errorf("tilestore: read %s: %w", path, err)
	}
	return pts, nil
}

// ListLevel enumerates every tile key with a file on disk at zoom z.
func (s *Store) ListLevel(z int) ([]tilekey.Key, error) {
	levelDir := filepath.Join(s.Dir, strconv.Itoa(z))
	xDirs, err := os.ReadDir(levelDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tilestore: list level %d: %w", z, err)
	}

	var keys []tilekey.Key
	for _, xd := range xDirs {
		if !xd.IsDir() {
			continue
		}
		x, err := strconv.Atoi(xd.Name())
		if err != nil {
			continue
		}
		yFiles, err := os.ReadDir(filepath.Join(levelDir, xd.Name()))
		if err != nil {
			return nil, fmt.Errorf("tilestore: list %s: %w", filepath.Join(levelDir, xd.Name()), err)
		}
		for _, yf := range yFiles {
			name := yf.Name()
			if !strings.HasSuffix(name, ".bin") {
				continue
			}
			y, err := strconv.Atoi(strings.TrimSuffix(name, ".bin"))
			if err != nil {
				continue
			}
			keys = append(keys, tilekey.Key{Z: z, X: x, Y: y})
		}
	}
	return keys, nil
}
