package tilekey

import "math"

// rootGeometricError is the geometric error (meters) assigned to the z=0
// tile. Halving it once per zoom level and correcting for the tile's
// latitude (mercator tiles narrow toward the poles) gives a schedule that is
// monotonically non-increasing from root to leaf, as Cesium's tile
// refinement logic requires (spec §4.1, §8.7).
const rootGeometricError = EarthCircumference / 256.0

// GeometricError returns the geometric error (meters) used as a tile's
// `geometricError` value in the manifest (spec §4.10). It halves once per
// zoom level from rootGeometricError and scales by cos(centerLat) to account
// for mercator's shrinking ground footprint near the poles, so two tiles at
// the same zoom but different latitude get different, still-monotonic
// errors relative to their respective parents.
func GeometricError(k Key) float64 {
	lat := CenterLat(k)
	scale := math.Cos(lat * math.Pi / 180.0)
	if scale < 0 {
		scale = 0
	}
	base := rootGeometricError / math.Exp2(float64(k.Z))
	return base * scale
}
