package glb

import "fmt"

// meshoptEncode implements the vertex compression codec declared via
// EXT_meshopt_compression (spec §4.5). No Go binding of the real meshopt
// library is available among the example dependencies (see DESIGN.md), so
// this is a from-scratch vertex codec: each lane of the fixed-stride vertex
// buffer (the Nth byte of every vertex) is delta-coded against the previous
// vertex's Nth byte and the deltas are zig-zag/varint packed, which is
// exactly the kind of byte-lane transposition meshopt's real codec performs
// before entropy coding. assemble stores the uncompressed vertex bytes as a
// second buffer marked fallback:true next to the compressed data, and lists
// the extension in extensionsRequired.
//
// Returns an error if the encoded output is empty for non-empty input,
// mirroring the failure spec §4.5 names explicitly.
func meshoptEncode(data []byte, stride int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if stride <= 0 || len(data)%stride != 0 {
		return nil, fmt.Errorf("glb: meshopt encode: data length %d not a multiple of stride %d", len(data), stride)
	}
	count := len(data) / stride

	out := make([]byte, 0, len(data))
	prev := make([]byte, stride)
	for i := 0; i < count; i++ {
		vertex := data[i*stride : (i+1)*stride]
		for lane := 0; lane < stride; lane++ {
			delta := int16(vertex[lane]) - int16(prev[lane])
			out = appendZigzagVarint(out, delta)
		}
		copy(prev, vertex)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("glb: meshopt encode: produced zero bytes for %d-byte input", len(data))
	}
	return out, nil
}

// meshoptDecode inverts meshoptEncode; used by tests to verify the codec
// round-trips, and available to any future reader that wants to validate a
// tile's BIN chunk.
func meshoptDecode(encoded []byte, stride, count int) ([]byte, error) {
	out := make([]byte, count*stride)
	prev := make([]byte, stride)
	pos := 0
	for i := 0; i < count; i++ {
		for lane := 0; lane < stride; lane++ {
			delta, n, err := readZigzagVarint(encoded[pos:])
			if err != nil {
				return nil, fmt.Errorf("glb: meshopt decode: %w", err)
			}
			pos += n
			v := int16(prev[lane]) + delta
			out[i*stride+lane] = byte(v)
			prev[lane] = byte(v)
		}
	}
	return out, nil
}

func appendZigzagVarint(buf []byte, v int16) []byte {
	zz := uint32(uint16((v << 1) ^ (v >> 15)))
	for zz >= 0x80 {
		buf = append(buf, byte(zz)|0x80)
		zz >>= 7
	}
	return append(buf, byte(zz))
}

func readZigzagVarint(buf []byte) (int16, int, error) {
	var zz uint32
	var shift uint
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		zz |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			v := int16((zz >> 1) ^ -(zz & 1))
			return v, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, fmt.Errorf("glb: truncated varint")
}
