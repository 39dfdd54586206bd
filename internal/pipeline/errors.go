// Package pipeline defines the stage-error taxonomy spec §7 requires: a
// small set of failure kinds every stage wraps its errors in, so the
// driver can report "a single-line message naming the stage and the
// failure kind". cmd/pointtiler exits with status 1 for every kind.
//
// Every other stage returns plain fmt.Errorf-wrapped errors internally
// (cog.Reader and pmtiles.Writer in the teacher do the same); this package
// only adds the outermost Kind tag the driver needs, mirroring how
// cmd/geotiff2pmtiles/main.go turns any stage failure into one log.Fatalf
// line naming the operation ("Tile generation: %v", "Creating PMTiles
// writer: %v", and so on) without inventing a deeper exception hierarchy.
package pipeline

import (
	"errors"
	"fmt"
)

// Kind names one of the failure categories spec §7 enumerates.
type Kind int

const (
	// InputFailure: glob expanded to empty, unsupported extension, mixed
	// extensions across the input set.
	InputFailure Kind = iota
	// IoFailure: any failure reading/writing scratch or output files.
	IoFailure
	// FormatFailure: malformed input point record (structural).
	FormatFailure
	// DecodeFailure: malformed input point record (mid-file, unreadable).
	DecodeFailure
	// ProjectionFailure: invalid EPSG, missing reference data, numerical
	// transform failure.
	ProjectionFailure
	// EncodeFailure: GLB encoder unable to produce output.
	EncodeFailure
	// BudgetFailure: an impossible memory budget (chunk_size × point_size
	// exceeds the budget and cannot be reduced).
	BudgetFailure
)

func (k Kind) String() string {
	switch k {
	case InputFailure:
		return "InputFailure"
	case IoFailure:
		return "IoFailure"
	case FormatFailure:
		return "FormatFailure"
	case DecodeFailure:
		return "DecodeFailure"
	case ProjectionFailure:
		return "ProjectionFailure"
	case EncodeFailure:
		return "EncodeFailure"
	case BudgetFailure:
		return "BudgetFailure"
	default:
		return "UnknownFailure"
	}
}

// StageError names the stage and failure kind behind a wrapped error, the
// one-line shape spec §7's "Propagation policy" requires at the driver
// boundary.
type StageError struct {
	Stage string
	Kind  Kind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Wrap builds a *StageError naming stage and kind around err. Returns nil
// if err is nil, so call sites can wrap the result of a function call
// unconditionally.
func Wrap(stage string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Kind: kind, Err: err}
}

// KindOf extracts the Kind from err if it (or something it wraps) is a
// *StageError. The second return is false for any other error, including
// nil.
func KindOf(err error) (Kind, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}
