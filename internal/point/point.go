// Package point defines the fixed-size point record (spec §3.1) shared by
// every stage of the pipeline, from the streaming reader through GLB export.
package point

// Point is a single sample from the source point cloud. Its x/y/z semantics
// depend on the pipeline stage: projected planar coordinates right after
// reading, geographic lon/lat/height after reprojection to the common
// reference, or geocentric ECEF (post axis-swap) once exported.
//
// Point is plain data, fixed size, and freely copyable — stages pass it by
// value and never retain pointers into a shared buffer.
type Point struct {
	X, Y, Z float64

	R, G, B uint16 // white (65535,65535,65535) when the source has no color

	HasIntensity bool
	Intensity    uint16

	HasReturnNumber bool
	ReturnNumber    uint8

	Classification string // short string; empty means absent

	HasScannerChannel bool
	ScannerChannel    uint8

	HasScanAngle bool
	ScanAngle    float32

	HasUserData bool
	UserData    uint8

	HasPointSourceID bool
	PointSourceID    uint16

	HasGPSTime bool
	GPSTime    float64
}

// White returns the default color used when a source point carries none.
func White() (r, g, b uint16) { return 0xFFFF, 0xFFFF, 0xFFFF }

// NewWithDefaults returns a Point with white color and no optional attributes set.
func NewWithDefaults(x, y, z float64) Point {
	r, g, b := White()
	return Point{X: x, Y: y, Z: z, R: r, G: g, B: b}
}
