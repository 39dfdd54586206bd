package point

import (
	"bytes"
	"testing"
)

func samplePoints() []Point {
	return []Point{
		NewWithDefaults(1, 2, 3),
		{
			X: -10.5, Y: 20.25, Z: 0,
			R: 100, G: 200, B: 300,
			HasIntensity: true, Intensity: 4096,
			HasReturnNumber: true, ReturnNumber: 2,
			Classification:  "ground",
			HasScannerChannel: true, ScannerChannel: 1,
			HasScanAngle: true, ScanAngle: -12.5,
			HasUserData: true, UserData: 7,
			HasPointSourceID: true, PointSourceID: 42,
			HasGPSTime: true, GPSTime: 123456.789,
		},
		{X: 0, Y: 0, Z: 0},
	}
}

func TestRoundTrip(t *testing.T) {
	seq := samplePoints()
	encoded := EncodeSequence(seq)
	decoded, err := DecodeSequence(encoded)
	if err != nil {
		t.Fatalf("DecodeSequence: %v", err)
	}
	if len(decoded) != len(seq) {
		t.Fatalf("got %d points, want %d", len(decoded), len(seq))
	}
	for i := range seq {
		if decoded[i] != seq[i] {
			t.Errorf("point %d: got %+v, want %+v", i, decoded[i], seq[i])
		}
	}
}

func TestConcatenation(t *testing.T) {
	s1 := samplePoints()[:2]
	s2 := samplePoints()[2:]

	enc1 := EncodeSequence(s1)
	enc2 := EncodeSequence(s2)
	combined := append(append([]byte{}, enc1...), enc2...)

	decoded, err := DecodeSequence(combined)
	if err != nil {
		t.Fatalf("DecodeSequence: %v", err)
	}
	want := append(append([]Point{}, s1...), s2...)
	if len(decoded) != len(want) {
		t.Fatalf("got %d points, want %d", len(decoded), len(want))
	}
	for i := range want {
		if decoded[i] != want[i] {
			t.Errorf("point %d: got %+v, want %+v", i, decoded[i], want[i])
		}
	}
}

func TestClassificationTruncation(t *testing.T) {
	p := NewWithDefaults(1, 1, 1)
	p.Classification = "this-classification-string-is-way-too-long-for-the-field"
	enc := EncodeTo(nil, p)
	decoded, err := Decode(enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded.Classification) > classificationFieldLen {
		t.Errorf("classification not truncated: %q", decoded.Classification)
	}
}

func TestWriteReadSequence(t *testing.T) {
	seq := samplePoints()
	var buf bytes.Buffer
	if err := WriteSequence(&buf, seq); err != nil {
		t.Fatalf("WriteSequence: %v", err)
	}
	decoded, err := ReadSequence(&buf)
	if err != nil {
		t.Fatalf("ReadSequence: %v", err)
	}
	if len(decoded) != len(seq) {
		t.Fatalf("got %d points, want %d", len(decoded), len(seq))
	}
}

func TestDecodeSequenceBadLength(t *testing.T) {
	_, err := DecodeSequence(make([]byte, RecordSize+1))
	if err == nil {
		t.Fatal("expected error for non-multiple-of-RecordSize buffer")
	}
}
