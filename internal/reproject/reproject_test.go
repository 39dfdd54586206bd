package reproject

import (
	"math"
	"testing"

	"github.com/mierune/point-tiler/internal/point"
)

func TestIdentityTransformerNoOp(t *testing.T) {
	tr, err := New(EPSGWGS84Geographic3D, EPSGWGS84Geographic3D)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pts := []point.Point{point.NewWithDefaults(140.0, 36.0, 10.0)}
	if err := tr.TransformInPlace(pts); err != nil {
		t.Fatalf("TransformInPlace: %v", err)
	}
	if pts[0].X != 140.0 || pts[0].Y != 36.0 || pts[0].Z != 10.0 {
		t.Errorf("identity transform changed point: %+v", pts[0])
	}
}

func TestUnsupportedPairErrors(t *testing.T) {
	if _, err := New(9999, 8888); err == nil {
		t.Fatal("expected error for unsupported EPSG pair")
	}
}

func TestGeocentricOnEquatorPrimeMeridian(t *testing.T) {
	tr, err := New(EPSGWGS84Geographic3D, EPSGWGS84Geocentric)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pts := []point.Point{point.NewWithDefaults(0, 0, 0)}
	if err := tr.TransformInPlace(pts); err != nil {
		t.Fatalf("TransformInPlace: %v", err)
	}
	// At (0,0,0) geodetic, ECEF should land on the equator/prime-meridian
	// point, at the semi-major axis radius, on the X axis.
	if math.Abs(pts[0].X-wgs84SemiMajorAxis) > 1e-6 {
		t.Errorf("X = %v, want ~%v", pts[0].X, wgs84SemiMajorAxis)
	}
	if math.Abs(pts[0].Y) > 1e-6 || math.Abs(pts[0].Z) > 1e-6 {
		t.Errorf("Y/Z should be ~0, got %v, %v", pts[0].Y, pts[0].Z)
	}
}

func TestGeocentricAtPole(t *testing.T) {
	tr, _ := New(EPSGWGS84Geographic3D, EPSGWGS84Geocentric)
	pts := []point.Point{point.NewWithDefaults(0, 90, 0)}
	tr.TransformInPlace(pts)
	if math.Abs(pts[0].X) > 1e-6 || math.Abs(pts[0].Y) > 1e-6 {
		t.Errorf("X/Y should be ~0 at the pole, got %v, %v", pts[0].X, pts[0].Y)
	}
	if pts[0].Z <= 0 {
		t.Errorf("Z should be positive at the north pole, got %v", pts[0].Z)
	}
}

func TestAxisSwap(t *testing.T) {
	p := point.NewWithDefaults(1, 2, 3)
	swapped := AxisSwap(p)
	if swapped.X != 1 || swapped.Y != 3 || swapped.Z != -2 {
		t.Errorf("AxisSwap = %+v, want X=1,Y=3,Z=-2", swapped)
	}
}
