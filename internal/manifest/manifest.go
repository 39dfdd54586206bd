// Package manifest builds the Cesium 3D Tiles 1.1 tileset.json (spec
// §4.10) from the tile content records internal/export produces: a tree of
// nodes mirroring the quadtree, each carrying a region bounding volume, a
// geometric error, and (every level is exported, not just leaves) a content
// reference to its own GLB.
package manifest

import (
	"fmt"
	"math"
	"sort"

	gojson "github.com/goccy/go-json"

	"github.com/mierune/point-tiler/internal/export"
	"github.com/mierune/point-tiler/internal/glb"
	"github.com/mierune/point-tiler/internal/tilekey"
)

// rootGeometricError is the sentinel spec §4.10 assigns to the synthetic
// root node wrapping every zmin-level tile ("a sentinel large value, e.g.
// 1e100" — §4.10; the original Rust exporter uses the identical constant).
const rootGeometricError = 1e100

// Asset is the glTF/3D-Tiles version stamp, always 1.1 per spec §6.2.
type Asset struct {
	Version string `json:"version"`
}

// Region is a Cesium region bounding volume: [west, south, east, north,
// minHeight, maxHeight], longitude/latitude in radians (spec's
// original_source note: the Rust exporter emits radians, not degrees).
type Region struct {
	Region [6]float64 `json:"region"`
}

// BoundingVolume wraps the one bounding-volume kind this builder emits.
type BoundingVolume struct {
	Region [6]float64 `json:"region"`
}

// Content is a tile's reference to its GLB, relative to the output root.
type Content struct {
	URI string `json:"uri"`
}

// Node is one entry in the tileset tree.
type Node struct {
	BoundingVolume BoundingVolume `json:"boundingVolume"`
	GeometricError float64        `json:"geometricError"`
	Refine         string         `json:"refine,omitempty"`
	Content        *Content       `json:"content,omitempty"`
	Children       []*Node        `json:"children,omitempty"`
}

// Tileset is the root document, marshaled as tileset.json.
type Tileset struct {
	Asset              Asset    `json:"asset"`
	GeometricError     float64  `json:"geometricError"`
	Root               *Node    `json:"root"`
	ExtensionsUsed     []string `json:"extensionsUsed,omitempty"`
	ExtensionsRequired []string `json:"extensionsRequired,omitempty"`
}

// Build assembles the tileset tree from contents. extensionsUsed lists the
// glTF extension names actually exercised across the tileset's GLBs
// (KHR_mesh_quantization, EXT_meshopt_compression), aggregated once at the
// tileset root rather than repeated per tile (spec's original_source note).
func Build(contents []export.Content, opts glb.Options) (*Tileset, error) {
	if len(contents) == 0 {
		return nil, fmt.Errorf("manifest: no tile content to build a tileset from")
	}

	byKey := make(map[tilekey.Key]export.Content, len(contents))
	childrenOf := make(map[tilekey.Key][]tilekey.Key)
	zmin := contents[0].Key.Z
	for _, c := range contents {
		byKey[c.Key] = c
		if c.Key.Z < zmin {
			zmin = c.Key.Z
		}
	}
	for _, c := range contents {
		if c.Key.Z == zmin {
			continue
		}
		parent := c.Key.Parent()
		childrenOf[parent] = append(childrenOf[parent], c.Key)
	}
	for k := range childrenOf {
		sort.Slice(childrenOf[k], func(i, j int) bool {
			return lessKey(childrenOf[k][i], childrenOf[k][j])
		})
	}

	var roots []tilekey.Key
	for _, c := range contents {
		if c.Key.Z == zmin {
			roots = append(roots, c.Key)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return lessKey(roots[i], roots[j]) })

	rootNodes := make([]*Node, 0, len(roots))
	for _, k := range roots {
		rootNodes = append(rootNodes, buildNode(k, byKey, childrenOf))
	}

	root := &Node{
		BoundingVolume: unionRegion(rootNodes),
		GeometricError: rootGeometricError,
		Refine:         "REPLACE",
		Children:       rootNodes,
	}

	ts := &Tileset{
		Asset:          Asset{Version: "1.1"},
		GeometricError: rootGeometricError,
		Root:           root,
	}
	if opts.Quantize {
		ts.ExtensionsUsed = append(ts.ExtensionsUsed, glb.ExtensionKHRMeshQuantization)
	}
	if opts.Meshopt {
		ts.ExtensionsUsed = append(ts.ExtensionsUsed, glb.ExtensionMeshoptCompression)
	}
	if len(ts.ExtensionsUsed) > 0 {
		ts.ExtensionsRequired = append([]string(nil), ts.ExtensionsUsed...)
	}
	return ts, nil
}

func buildNode(key tilekey.Key, byKey map[tilekey.Key]export.Content, childrenOf map[tilekey.Key][]tilekey.Key) *Node {
	c := byKey[key]
	node := &Node{
		BoundingVolume: regionOf(c),
		GeometricError: tilekey.GeometricError(key),
		Refine:         "REPLACE",
		Content:        &Content{URI: c.GLBPath},
	}
	for _, childKey := range childrenOf[key] {
		node.Children = append(node.Children, buildNode(childKey, byKey, childrenOf))
	}
	return node
}

func regionOf(c export.Content) BoundingVolume {
	const deg2rad = math.Pi / 180.0
	return BoundingVolume{Region: [6]float64{
		c.MinLon * deg2rad,
		c.MinLat * deg2rad,
		c.MaxLon * deg2rad,
		c.MaxLat * deg2rad,
		c.MinHeight,
		c.MaxHeight,
	}}
}

// unionRegion returns the bounding region enclosing every node's region,
// for the synthetic root wrapping every zmin-level tile.
func unionRegion(nodes []*Node) BoundingVolume {
	if len(nodes) == 0 {
		return BoundingVolume{}
	}
	r := nodes[0].BoundingVolume.Region
	for _, n := range nodes[1:] {
		o := n.BoundingVolume.Region
		if o[0] < r[0] {
			r[0] = o[0]
		}
		if o[1] < r[1] {
			r[1] = o[1]
		}
		if o[2] > r[2] {
			r[2] = o[2]
		}
		if o[3] > r[3] {
			r[3] = o[3]
		}
		if o[4] < r[4] {
			r[4] = o[4]
		}
		if o[5] > r[5] {
			r[5] = o[5]
		}
	}
	return BoundingVolume{Region: r}
}

func lessKey(a, b tilekey.Key) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// MarshalPretty renders ts as pretty-printed JSON, the tileset.json format
// spec §6.2 requires.
func MarshalPretty(ts *Tileset) ([]byte, error) {
	return gojson.MarshalIndent(ts, "", "  ")
}
