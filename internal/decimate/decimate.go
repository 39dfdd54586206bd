// Package decimate implements the voxel decimator of spec §4.4: one
// representative point per occupied voxel, nearest to the voxel center,
// output in Morton order.
//
// The voxel-selection rule is grounded on
// pcd-core/pointcloud/decimation/decimator.rs's VoxelDecimator: floor each
// axis by voxel_size to get an integer voxel index, keep the point closest
// to that voxel's center, and on an exact tie keep whichever point arrived
// first. The Morton-ordered output is this repo's addition (spec §4.4,
// §8.5): downstream compression benefits from vertex locality, so points
// are re-sorted by the Morton code of their voxel index before being
// handed to the GLB encoder.
package decimate

import (
	"math"
	"sort"

	"github.com/mierune/point-tiler/internal/point"
)

// Decimate reduces points to at most one representative per voxel of the
// given size, ordered by the Morton code of each surviving voxel's index.
// An empty or non-positive voxelSize returns points unchanged in input
// order (no decimation requested).
func Decimate(points []point.Point, voxelSize float64) []point.Point {
	if voxelSize <= 0 || len(points) == 0 {
		return points
	}

	type candidate struct {
		dist  float64
		point point.Point
		morton uint64
		order int // input order, for stable tie-breaking within a voxel
	}

	best := make(map[voxelIndex]candidate, len(points))
	for i, p := range points {
		idx := voxelIndexOf(p, voxelSize)
		center := voxelCenter(idx, voxelSize)
		d := squaredDistance(p, center)

		cur, ok := best[idx]
		if !ok || d < cur.dist {
			best[idx] = candidate{
				dist:   d,
				point:  p,
				morton: mortonCode(idx),
				order:  i,
			}
		}
	}

	out := make([]candidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].morton != out[j].morton {
			return out[i].morton < out[j].morton
		}
		return out[i].order < out[j].order
	})

	result := make([]point.Point, len(out))
	for i, c := range out {
		result[i] = c.point
	}
	return result
}

type voxelIndex struct {
	x, y, z int64
}

func voxelIndexOf(p point.Point, voxelSize float64) voxelIndex {
	return voxelIndex{
		x: int64(math.Floor(p.X / voxelSize)),
		y: int64(math.Floor(p.Y / voxelSize)),
		z: int64(math.Floor(p.Z / voxelSize)),
	}
}

func voxelCenter(idx voxelIndex, voxelSize float64) point.Point {
	return point.Point{
		X: (float64(idx.x) + 0.5) * voxelSize,
		Y: (float64(idx.y) + 0.5) * voxelSize,
		Z: (float64(idx.z) + 0.5) * voxelSize,
	}
}

func squaredDistance(a, b point.Point) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return dx*dx + dy*dy + dz*dz
}
