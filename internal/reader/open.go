package reader

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Open groups files by extension and returns the matching reader. Mixed
// extensions across the input set are rejected: spec §4.2 assumes one
// format per run.
func Open(files []string) (PointReader, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("reader: no input files given")
	}
	ext := strings.ToLower(filepath.Ext(files[0]))
	for _, f := range files[1:] {
		if e := strings.ToLower(filepath.Ext(f)); e != ext {
			return nil, fmt.Errorf("reader: mixed input extensions %q and %q", ext, e)
		}
	}
	switch ext {
	case ".csv", ".txt":
		return NewCSVReader(files)
	case ".las", ".laz":
		return NewLASReader(files)
	default:
		return nil, fmt.Errorf("reader: unsupported input extension %q", ext)
	}
}
