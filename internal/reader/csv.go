package reader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mierune/point-tiler/internal/point"
)

// csvAttributeNames lists every column CSVReader recognizes, matched to
// header names case-insensitively and ignoring '_'/'-' separators (so
// "ScanAngle", "scan_angle" and "scan-angle" are all the same column).
var csvAttributeNames = []string{
	"x", "y", "z",
	"intensity", "return_number", "classification", "scanner_channel",
	"scan_angle", "user_data", "point_source_id", "gps_time",
	"r", "g", "b", "red", "green", "blue",
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "_", "")
	h = strings.ReplaceAll(h, "-", "")
	return h
}

// fieldMapping maps a recognized attribute name to its column index.
type fieldMapping map[string]int

func buildFieldMapping(headers []string, hasHeaders bool) (fieldMapping, error) {
	mapping := fieldMapping{}
	if hasHeaders {
		for idx, h := range headers {
			nh := normalizeHeader(h)
			for _, attr := range csvAttributeNames {
				if nh == normalizeHeader(attr) {
					mapping[attr] = idx
					break
				}
			}
		}
	} else {
		for idx, attr := range csvAttributeNames {
			mapping[attr] = idx
		}
	}
	for _, required := range []string{"x", "y", "z"} {
		if _, ok := mapping[required]; !ok {
			return nil, fmt.Errorf("reader: required column %q not found in CSV headers", required)
		}
	}
	return mapping, nil
}

func (m fieldMapping) value(record []string, field string) (string, bool) {
	idx, ok := m[field]
	if !ok || idx >= len(record) {
		return "", false
	}
	return record[idx], true
}

func (m fieldMapping) optional(record []string, field string) (string, bool) {
	v, ok := m.value(record, field)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// CSVReader reads points from one or more delimited text files (spec §4.2,
// §6.1's "CSV/TXT" input format). Column order is free: headers are matched
// by name, or, for headerless files, assumed to follow csvAttributeNames in
// order.
type CSVReader struct {
	files     []string
	fileIdx   int
	cur       *os.File
	csvr      *csv.Reader
	mapping   fieldMapping
}

// NewCSVReader opens the first of files and reads its header row right
// away, so a missing required column is reported here; later files are
// opened as NextPoint reaches them.
func NewCSVReader(files []string) (*CSVReader, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("reader: no input files given")
	}
	r := &CSVReader{files: files}
	if err := r.openNext(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *CSVReader) openNext() error {
	if r.cur != nil {
		r.cur.Close()
		r.cur = nil
		r.csvr = nil
	}
	if r.fileIdx >= len(r.files) {
		return nil
	}
	path := r.files[r.fileIdx]
	r.fileIdx++

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("reader: open %s: %w", path, err)
	}
	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	headers, err := cr.Read()
	if err != nil {
		f.Close()
		return fmt.Errorf("reader: read header of %s: %w", path, err)
	}
	// The first row is a header row if any non-blank cell is not a number.
	hasHeaders := false
	for _, h := range headers {
		s := strings.TrimSpace(h)
		if s == "" {
			continue
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			hasHeaders = true
			break
		}
	}
	mapping, err := buildFieldMapping(headers, hasHeaders)
	if err != nil {
		f.Close()
		return fmt.Errorf("reader: %s: %w", path, err)
	}

	r.cur = f
	r.csvr = cr
	r.mapping = mapping

	if !hasHeaders {
		// The "header" row we just consumed was actually the first data row;
		// re-open and let the caller read it as data.
		f.Close()
		f, err = os.Open(path)
		if err != nil {
			return fmt.Errorf("reader: reopen %s: %w", path, err)
		}
		cr = csv.NewReader(f)
		cr.FieldsPerRecord = -1
		r.cur = f
		r.csvr = cr
	}
	return nil
}

// NextPoint implements PointReader.
func (r *CSVReader) NextPoint() (point.Point, error) {
	for {
		if r.csvr == nil {
			return point.Point{}, io.EOF
		}
		record, err := r.csvr.Read()
		if err == io.EOF {
			if err := r.openNext(); err != nil {
				return point.Point{}, err
			}
			if r.csvr == nil {
				return point.Point{}, io.EOF
			}
			continue
		}
		if err != nil {
			return point.Point{}, fmt.Errorf("reader: read record: %w", err)
		}
		return r.parsePoint(record)
	}
}

func (r *CSVReader) parsePoint(record []string) (point.Point, error) {
	x, err := r.parseRequiredFloat(record, "x")
	if err != nil {
		return point.Point{}, err
	}
	y, err := r.parseRequiredFloat(record, "y")
	if err != nil {
		return point.Point{}, err
	}
	z, err := r.parseRequiredFloat(record, "z")
	if err != nil {
		return point.Point{}, err
	}

	p := point.NewWithDefaults(x, y, z)
	if v, ok := r.firstOf(record, "r", "red"); ok {
		p.R = parseChannel(v)
	}
	if v, ok := r.firstOf(record, "g", "green"); ok {
		p.G = parseChannel(v)
	}
	if v, ok := r.firstOf(record, "b", "blue"); ok {
		p.B = parseChannel(v)
	}

	if v, ok := r.mapping.optional(record, "intensity"); ok {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			p.HasIntensity, p.Intensity = true, uint16(n)
		}
	}
	if v, ok := r.mapping.optional(record, "return_number"); ok {
		if n, err := strconv.ParseUint(v, 10, 8); err == nil {
			p.HasReturnNumber, p.ReturnNumber = true, uint8(n)
		}
	}
	if v, ok := r.mapping.optional(record, "classification"); ok {
		p.Classification = v
	}
	if v, ok := r.mapping.optional(record, "scanner_channel"); ok {
		if n, err := strconv.ParseUint(v, 10, 8); err == nil {
			p.HasScannerChannel, p.ScannerChannel = true, uint8(n)
		}
	}
	if v, ok := r.mapping.optional(record, "scan_angle"); ok {
		if n, err := strconv.ParseFloat(v, 32); err == nil {
			p.HasScanAngle, p.ScanAngle = true, float32(n)
		}
	}
	if v, ok := r.mapping.optional(record, "user_data"); ok {
		if n, err := strconv.ParseUint(v, 10, 8); err == nil {
			p.HasUserData, p.UserData = true, uint8(n)
		}
	}
	if v, ok := r.mapping.optional(record, "point_source_id"); ok {
		if n, err := strconv.ParseUint(v, 10, 16); err == nil {
			p.HasPointSourceID, p.PointSourceID = true, uint16(n)
		}
	}
	if v, ok := r.mapping.optional(record, "gps_time"); ok {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			p.HasGPSTime, p.GPSTime = true, n
		}
	}

	return p, nil
}

func (r *CSVReader) parseRequiredFloat(record []string, field string) (float64, error) {
	v, ok := r.mapping.value(record, field)
	if !ok {
		return 0, fmt.Errorf("reader: missing %q field", field)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("reader: parse %q = %q: %w", field, v, err)
	}
	return f, nil
}

func (r *CSVReader) firstOf(record []string, fields ...string) (string, bool) {
	for _, f := range fields {
		if v, ok := r.mapping.optional(record, f); ok {
			return v, true
		}
	}
	return "", false
}

func parseChannel(s string) uint16 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	if f < 0 {
		return 0
	}
	if f > 65535 {
		return 65535
	}
	return uint16(f)
}

// Close releases the currently open file, if any.
func (r *CSVReader) Close() error {
	if r.cur != nil {
		return r.cur.Close()
	}
	return nil
}
