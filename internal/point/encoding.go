package point

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// RecordSize is the fixed, little-endian on-disk size of one encoded Point.
// Keeping every record the same width is what makes the intermediate tile
// file format (spec §6.2) round-trip and concatenate trivially: there is no
// framing to get wrong, so two encoded sequences appended on disk decode as
// the concatenation of the two point sequences.
const RecordSize = 66

const (
	flagIntensity = 1 << iota
	flagReturnNumber
	flagScannerChannel
	flagScanAngle
	flagUserData
	flagPointSourceID
	flagGPSTime
)

const classificationFieldLen = 16

// EncodeTo appends the fixed-size encoding of p to buf and returns the
// extended slice. buf must have at least RecordSize bytes of spare capacity
// for this to avoid reallocating.
func EncodeTo(buf []byte, p Point) []byte {
	var rec [RecordSize]byte

	binary.LittleEndian.PutUint64(rec[0:8], math.Float64bits(p.X))
	binary.LittleEndian.PutUint64(rec[8:16], math.Float64bits(p.Y))
	binary.LittleEndian.PutUint64(rec[16:24], math.Float64bits(p.Z))

	binary.LittleEndian.PutUint16(rec[24:26], p.R)
	binary.LittleEndian.PutUint16(rec[26:28], p.G)
	binary.LittleEndian.PutUint16(rec[28:30], p.B)

	var flags byte
	if p.HasIntensity {
		flags |= flagIntensity
	}
	if p.HasReturnNumber {
		flags |= flagReturnNumber
	}
	if p.HasScannerChannel {
		flags |= flagScannerChannel
	}
	if p.HasScanAngle {
		flags |= flagScanAngle
	}
	if p.HasUserData {
		flags |= flagUserData
	}
	if p.HasPointSourceID {
		flags |= flagPointSourceID
	}
	if p.HasGPSTime {
		flags |= flagGPSTime
	}
	rec[30] = flags

	binary.LittleEndian.PutUint16(rec[31:33], p.Intensity)
	rec[33] = p.ReturnNumber

	class := []byte(p.Classification)
	if len(class) > classificationFieldLen {
		class = class[:classificationFieldLen]
	}
	copy(rec[34:34+classificationFieldLen], class)

	off := 34 + classificationFieldLen // 50
	rec[off] = p.ScannerChannel
	binary.LittleEndian.PutUint32(rec[off+1:off+5], math.Float32bits(p.ScanAngle))
	rec[off+5] = p.UserData
	binary.LittleEndian.PutUint16(rec[off+6:off+8], p.PointSourceID)
	binary.LittleEndian.PutUint64(rec[off+8:off+16], math.Float64bits(p.GPSTime))

	return append(buf, rec[:]...)
}

// Decode decodes one fixed-size record from buf[0:RecordSize].
func Decode(buf []byte) (Point, error) {
	if len(buf) < RecordSize {
		return Point{}, fmt.Errorf("point: short record (%d of %d bytes)", len(buf), RecordSize)
	}

	var p Point
	p.X = math.Float64frombits(binary.LittleEndian.Uint64(buf[0:8]))
	p.Y = math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16]))
	p.Z = math.Float64frombits(binary.LittleEndian.Uint64(buf[16:24]))

	p.R = binary.LittleEndian.Uint16(buf[24:26])
	p.G = binary.LittleEndian.Uint16(buf[26:28])
	p.B = binary.LittleEndian.Uint16(buf[28:30])

	flags := buf[30]
	p.HasIntensity = flags&flagIntensity != 0
	p.HasReturnNumber = flags&flagReturnNumber != 0
	p.HasScannerChannel = flags&flagScannerChannel != 0
	p.HasScanAngle = flags&flagScanAngle != 0
	p.HasUserData = flags&flagUserData != 0
	p.HasPointSourceID = flags&flagPointSourceID != 0
	p.HasGPSTime = flags&flagGPSTime != 0

	p.Intensity = binary.LittleEndian.Uint16(buf[31:33])
	p.ReturnNumber = buf[33]

	class := buf[34 : 34+classificationFieldLen]
	end := 0
	for end < len(class) && class[end] != 0 {
		end++
	}
	p.Classification = string(class[:end])

	off := 34 + classificationFieldLen
	p.ScannerChannel = buf[off]
	p.ScanAngle = math.Float32frombits(binary.LittleEndian.Uint32(buf[off+1 : off+5]))
	p.UserData = buf[off+5]
	p.PointSourceID = binary.LittleEndian.Uint16(buf[off+6 : off+8])
	p.GPSTime = math.Float64frombits(binary.LittleEndian.Uint64(buf[off+8 : off+16]))

	return p, nil
}

// EncodeSequence encodes every point in seq back to back. Concatenating the
// output of two EncodeSequence calls and decoding it yields the
// concatenation of the two input sequences (spec §8.3).
func EncodeSequence(seq []Point) []byte {
	buf := make([]byte, 0, len(seq)*RecordSize)
	for _, p := range seq {
		buf = EncodeTo(buf, p)
	}
	return buf
}

// DecodeSequence decodes a byte slice produced by EncodeSequence (or any
// concatenation thereof) back into a point sequence.
func DecodeSequence(buf []byte) ([]Point, error) {
	if len(buf)%RecordSize != 0 {
		return nil, fmt.Errorf("point: buffer length %d is not a multiple of record size %d", len(buf), RecordSize)
	}
	n := len(buf) / RecordSize
	out := make([]Point, n)
	for i := 0; i < n; i++ {
		p, err := Decode(buf[i*RecordSize : (i+1)*RecordSize])
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// WriteSequence streams an encoded sequence to w without materializing the
// full byte slice, for use by stages that hold many points in memory.
func WriteSequence(w io.Writer, seq []Point) error {
	var rec [RecordSize]byte
	for _, p := range seq {
		b := EncodeTo(rec[:0], p)
		if _, err := w.Write(b); err != nil {
			return fmt.Errorf("point: write record: %w", err)
		}
	}
	return nil
}

// ReadSequence decodes every record from r until EOF.
func ReadSequence(r io.Reader) ([]Point, error) {
	var buf [RecordSize]byte
	var out []Point
	for {
		_, err := io.ReadFull(r, buf[:])
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("point: read record: %w", err)
		}
		p, err := Decode(buf[:])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
}
