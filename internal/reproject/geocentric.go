package reproject

import (
	"math"

	"github.com/mierune/point-tiler/internal/point"
)

// WGS84 ellipsoid constants (meters, dimensionless).
const (
	wgs84SemiMajorAxis  = 6378137.0
	wgs84Flattening     = 1.0 / 298.257223563
	wgs84EccentricitySq = wgs84Flattening * (2.0 - wgs84Flattening)
)

// geocentricTransformer converts geographic coordinates (lon, lat in
// degrees, ellipsoidal height in meters) to geocentric ECEF (meters), using
// the standard closed-form geodetic-to-ECEF conversion. This is the one
// EPSG:4979 -> EPSG:4978 pair the contract (spec §4.3, §9) names directly;
// it is exact for the WGS84 ellipsoid and requires no external grid data,
// unlike the general-purpose reprojection the real contract abstracts over.
type geocentricTransformer struct{}

func (geocentricTransformer) TransformInPlace(points []point.Point) error {
	for i := range points {
		points[i].X, points[i].Y, points[i].Z = geodeticToECEF(points[i].X, points[i].Y, points[i].Z)
	}
	return nil
}

// geodeticToECEF converts (lon, lat) in degrees and height in meters to
// ECEF X, Y, Z in meters.
func geodeticToECEF(lonDeg, latDeg, height float64) (x, y, z float64) {
	lon := lonDeg * math.Pi / 180.0
	lat := latDeg * math.Pi / 180.0

	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	sinLon, cosLon := math.Sin(lon), math.Cos(lon)

	// Prime vertical radius of curvature.
	n := wgs84SemiMajorAxis / math.Sqrt(1.0-wgs84EccentricitySq*sinLat*sinLat)

	x = (n + height) * cosLat * cosLon
	y = (n + height) * cosLat * sinLon
	z = (n*(1.0-wgs84EccentricitySq) + height) * sinLat
	return x, y, z
}

// AxisSwap applies the fixed (X,Y,Z) -> (X,Z,-Y) axis-swap spec §4.3
// requires after reprojecting to geocentric coordinates, to match the
// target rendering convention (glTF's Y-up against ECEF's Z-up). It is not
// part of the Transformer contract: callers apply it once, after the
// reprojection transform, immediately before export (spec §4.5, §4.9).
func AxisSwap(p point.Point) point.Point {
	p.X, p.Y, p.Z = p.X, p.Z, -p.Y
	return p
}
