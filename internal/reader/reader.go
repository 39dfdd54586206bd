// Package reader implements the streaming point source of spec §4.2: a
// small PointReader interface plus concrete readers for the input formats
// the pipeline accepts.
package reader

import (
	"io"

	"github.com/mierune/point-tiler/internal/point"
)

// PointReader yields points one at a time. NextPoint returns (p, nil) for
// each point, then (zero Point, io.EOF) once the source is exhausted. A
// reader is not safe for concurrent use; callers that want parallel reading
// open one reader per input file (internal/tiler, internal/extsort).
type PointReader interface {
	NextPoint() (point.Point, error)
	Close() error
}

// ReadAll drains r into a slice, for the in-memory workflow and for tests.
func ReadAll(r PointReader) ([]point.Point, error) {
	var out []point.Point
	for {
		p, err := r.NextPoint()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
}
