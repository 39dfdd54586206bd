// Package tilekey implements the quadtree tile-key math of spec §4.1:
// longitude/latitude → (z,x,y), Hilbert ids as a locality-preserving sort
// key, parent/child relations, and the geometric-error schedule consumed by
// the manifest builder.
//
// The coordinate math is adapted from the teacher's web-mercator tiling in
// coord/mercator.go; this package generalizes the zoom range to spec's
// [0, 30] and adds the Hilbert inverse the teacher never needed (it only
// ever sorts by Hilbert index, never decodes one back to a tile).
package tilekey

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	// MaxZoom is the highest zoom level a tile key may express (spec §3.2).
	MaxZoom = 30
	// EarthCircumference is the equatorial circumference in meters.
	EarthCircumference = 40075016.685578488
)

// Key identifies one quadtree tile.
type Key struct {
	Z, X, Y int
}

// Parent returns the quadtree parent of k. Calling Parent on a z=0 key is
// undefined (callers must not walk above the configured root zoom).
func (k Key) Parent() Key {
	return Key{Z: k.Z - 1, X: k.X / 2, Y: k.Y / 2}
}

// Children returns the four quadtree children of k.
func (k Key) Children() [4]Key {
	cz := k.Z + 1
	cx, cy := k.X*2, k.Y*2
	return [4]Key{
		{Z: cz, X: cx, Y: cy},
		{Z: cz, X: cx + 1, Y: cy},
		{Z: cz, X: cx, Y: cy + 1},
		{Z: cz, X: cx + 1, Y: cy + 1},
	}
}

// FromLngLat computes the tile key at zoom z containing (lon, lat), using
// web-mercator-style tiling. Longitude wraps at ±180°; latitude clamps at
// the standard mercator bounds (~±85.0511°). Out-of-range input clamps
// silently rather than erroring (spec §4.1).
func FromLngLat(z int, lon, lat float64) Key {
	lon = wrapLongitude(lon)
	lat = clampLatitude(lat)

	n := math.Exp2(float64(z))
	x := int(math.Floor((lon + 180.0) / 360.0 * n))

	latRad := lat * math.Pi / 180.0
	y := int(math.Floor((1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n))

	maxIdx := int(n) - 1
	x = clampInt(x, 0, maxIdx)
	y = clampInt(y, 0, maxIdx)
	return Key{Z: z, X: x, Y: y}
}

// Bounds returns the WGS84 lon/lat bounding box of a tile as an orb.Bound;
// CenterLat uses it for the geometric-error latitude correction.
func Bounds(k Key) orb.Bound {
	n := math.Exp2(float64(k.Z))
	minLon := float64(k.X)/n*360.0 - 180.0
	maxLon := float64(k.X+1)/n*360.0 - 180.0
	maxLat := mercatorRowToLat(float64(k.Y), n)
	minLat := mercatorRowToLat(float64(k.Y+1), n)
	return orb.Bound{
		Min: orb.Point{minLon, minLat},
		Max: orb.Point{maxLon, maxLat},
	}
}

// CenterLat returns the latitude (degrees) at the vertical center of tile k,
// used by geometric_error's cosine-latitude correction.
func CenterLat(k Key) float64 {
	b := Bounds(k)
	return (b.Min[1] + b.Max[1]) / 2
}

func mercatorRowToLat(row, n float64) float64 {
	return math.Atan(math.Sinh(math.Pi*(1.0-2.0*row/n))) * 180.0 / math.Pi
}

func wrapLongitude(lon float64) float64 {
	lon = math.Mod(lon+180.0, 360.0)
	if lon < 0 {
		lon += 360.0
	}
	return lon - 180.0
}

func clampLatitude(lat float64) float64 {
	const bound = 85.05112878
	if lat > bound {
		return bound
	}
	if lat < -bound {
		return -bound
	}
	return lat
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
