// Package reproject implements the coordinate-reprojection contract of
// spec §4.3: an in-place batch transform between a declared input
// reference system and a common geographic reference, plus the fixed
// geocentric axis-swap applied on export.
//
// The contract mirrors the external collaborator the distilled spec treats
// as out of scope (a thin wrapper the original implementation builds over
// PROJ, in coordinate-transformer/src/transformer.rs): single-threaded,
// constructed per worker, transforms a batch of points in place. This
// package supplies the identity transformer always, and a concrete
// geographic-to-geocentric transformer for the one EPSG pair spec §4.3.3
// names explicitly (4979 -> 4978); arbitrary EPSG pairs are out of scope,
// same as the upstream reader formats this repo does not implement.
package reproject

import (
	"fmt"

	"github.com/mierune/point-tiler/internal/point"
)

// EPSG codes named by the contract (spec §4.3, §9).
const (
	EPSGWGS84Geographic3D = 4979
	EPSGWGS84Geocentric   = 4978
)

// Transformer batch-transforms points in place. A Transformer is
// single-threaded; the pipeline constructs one per worker (spec §5).
type Transformer interface {
	TransformInPlace(points []point.Point) error
}

// New returns the transformer for the declared input/output EPSG pair. Equal
// codes yield the zero-cost identity transformer. The only non-identity pair
// currently implemented is WGS84 geographic 3D -> WGS84 geocentric.
func New(inputEPSG, outputEPSG int) (Transformer, error) {
	if inputEPSG == outputEPSG {
		return identityTransformer{}, nil
	}
	if inputEPSG == EPSGWGS84Geographic3D && outputEPSG == EPSGWGS84Geocentric {
		return geocentricTransformer{}, nil
	}
	return nil, fmt.Errorf("reproject: unsupported EPSG pair %d -> %d", inputEPSG, outputEPSG)
}

// identityTransformer leaves points unchanged (spec §4.3: "If input and
// output identifiers are equal, returns an identity transformer
// (zero-cost)").
type identityTransformer struct{}

func (identityTransformer) TransformInPlace(points []point.Point) error { return nil }
