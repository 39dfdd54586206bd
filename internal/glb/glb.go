// Package glb builds the binary glTF (GLB) container for one tile (spec
// §4.5): a single mesh, one POINTS primitive with POSITION and COLOR_0,
// optionally 16-bit quantized and/or meshopt-compressed.
//
// The container framing (12-byte header, length-prefixed JSON and BIN
// chunks) is the standard GLB layout; JSON encoding uses goccy/go-json, the
// fast drop-in encoding/json replacement internal/manifest also uses for
// tileset.json. Byte
// assembly goes through valyala/bytebufferpool to avoid a fresh allocation
// per tile in the export stage's worker pool (spec §4.9 runs one exporter
// per tile, potentially thousands per run).
package glb

import (
	"encoding/binary"
	"fmt"
	"math"

	gojson "github.com/goccy/go-json"
	"github.com/valyala/bytebufferpool"
)

const (
	glbMagic       = 0x46546C67 // "glTF"
	glbVersion     = 2
	chunkTypeJSON  = 0x4E4F534A // "JSON"
	chunkTypeBIN   = 0x004E4942 // "BIN\0"
	chunkAlignment = 8

	colorAttributeSize = 4 // RGB8 + 1 pad byte, same in both layouts
)

// Options configures the encoder (spec §4.5's "Configuration options").
type Options struct {
	Quantize bool
	Meshopt  bool
}

// Encode builds one GLB document containing vertices. The node translation
// is derived here, not supplied by the caller: it is the component-wise
// minimum corner of vertices (float path) or the quantization offset
// (quantized path), the exact value subtracted from every position before
// it is packed into the buffer, so translation + stored-position always
// reconstructs the original coordinate (spec §4.5's node-translation
// invariant).
func Encode(vertices []Vertex, opts Options) ([]byte, error) {
	if opts.Quantize {
		return encodeQuantized(vertices, opts.Meshopt)
	}
	return encodeFloat(vertices, opts.Meshopt)
}

// layout bundles what the two vertex formats (quantized vs float) have in
// common going into assemble.
type layout struct {
	stride                int
	positionComponentType int
	normalized            bool
	colorByteOffset       int
	scale                 [3]float64
	posMin, posMax        [3]float64
}

func encodeFloat(vertices []Vertex, meshopt bool) ([]byte, error) {
	const stride = 16 // 12B position float32 x3 + 3B color + 1B pad
	min, max := positionBounds(vertices)

	buf := make([]byte, len(vertices)*stride)
	for i, v := range vertices {
		off := i * stride
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(v.X-min[0])))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(float32(v.Y-min[1])))
		binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(float32(v.Z-min[2])))
		buf[off+12] = colorTo8(v.R)
		buf[off+13] = colorTo8(v.G)
		buf[off+14] = colorTo8(v.B)
		// buf[off+15] left zero: pad byte.
	}

	lay := layout{
		stride:                stride,
		positionComponentType: componentTypeFloat,
		colorByteOffset:       stride - colorAttributeSize,
		scale:                 [3]float64{1, 1, 1},
		posMin:                [3]float64{0, 0, 0},
		posMax:                [3]float64{max[0] - min[0], max[1] - min[1], max[2] - min[2]},
	}
	return assemble(buf, len(vertices), min, lay, meshopt)
}

func encodeQuantized(vertices []Vertex, meshopt bool) ([]byte, error) {
	const stride = 12 // 6B position u16x3 + 2B pad + 3B color + 1B pad
	offset, commonScale := bounds(vertices)

	buf := make([]byte, len(vertices)*stride)
	for i, v := range vertices {
		off := i * stride
		binary.LittleEndian.PutUint16(buf[off:], quantizeComponent((v.X-offset[0])/commonScale))
		binary.LittleEndian.PutUint16(buf[off+2:], quantizeComponent((v.Y-offset[1])/commonScale))
		binary.LittleEndian.PutUint16(buf[off+4:], quantizeComponent((v.Z-offset[2])/commonScale))
		// buf[off+6:off+8] left zero: pad.
		buf[off+8] = colorTo8(v.R)
		buf[off+9] = colorTo8(v.G)
		buf[off+10] = colorTo8(v.B)
		// buf[off+11] left zero: pad.
	}

	lay := layout{
		stride:                stride,
		positionComponentType: componentTypeUnsignedShort,
		normalized:            true,
		colorByteOffset:       stride - colorAttributeSize,
		scale:                 [3]float64{commonScale, commonScale, commonScale},
		posMin:                [3]float64{0, 0, 0},
		posMax:                [3]float64{1, 1, 1},
	}
	// offset is both the quantization zero-point subtracted above and the
	// node translation: translation + stored·scale always reconstructs v.
	return assemble(buf, len(vertices), offset, lay, meshopt)
}

func positionBounds(vertices []Vertex) (min, max [3]float64) {
	if len(vertices) == 0 {
		return min, max
	}
	min = [3]float64{vertices[0].X, vertices[0].Y, vertices[0].Z}
	max = min
	for _, v := range vertices[1:] {
		for axis, val := range [3]float64{v.X, v.Y, v.Z} {
			if val < min[axis] {
				min[axis] = val
			}
			if val > max[axis] {
				max[axis] = val
			}
		}
	}
	return min, max
}

// assemble builds the glTF JSON document around an already-encoded,
// interleaved vertex buffer and wraps the result in the GLB container.
// POSITION and COLOR_0 share one interleaved buffer view; they differ only
// in accessor byte offset within each vertex.
func assemble(vertexBuf []byte, count int, translation [3]float64, lay layout, meshopt bool) ([]byte, error) {
	doc := document{
		Asset: asset{Version: "2.0"},
		Scene: 0,
		Scenes: []scene{{Nodes: []int{0}}},
		Nodes: []node{{
			Mesh:        0,
			Translation: translation,
			Scale:       lay.scale,
		}},
		Meshes: []mesh{{
			Primitives: []primitive{{
				Attributes: map[string]int{"POSITION": 0, "COLOR_0": 1},
				Mode:       primitiveModePoints,
			}},
		}},
		Accessors: []accessor{
			{
				BufferView:    0,
				ComponentType: lay.positionComponentType,
				Count:         count,
				Type:          "VEC3",
				Normalized:    lay.normalized,
				Min:           lay.posMin[:],
				Max:           lay.posMax[:],
			},
			{
				BufferView:    0,
				ByteOffset:    lay.colorByteOffset,
				ComponentType: componentTypeUnsignedByte,
				Count:         count,
				Type:          "VEC3",
				Normalized:    true,
			},
		},
	}

	var extensionsUsed, extensionsRequired []string
	if lay.normalized {
		extensionsUsed = append(extensionsUsed, extKHRMeshQuantization)
		extensionsRequired = append(extensionsRequired, extKHRMeshQuantization)
	}

	var binChunk []byte
	if meshopt && len(vertexBuf) > 0 {
		compressed, err := meshoptEncode(vertexBuf, lay.stride)
		if err != nil {
			return nil, fmt.Errorf("glb: %w", err)
		}
		extensionsUsed = append(extensionsUsed, extMeshoptCompressionID)
		extensionsRequired = append(extensionsRequired, extMeshoptCompressionID)

		// Two-buffer layout: buffer 0 carries the compressed data declared
		// via EXT_meshopt_compression on buffer view 0; buffer 1 is the
		// uncompressed fallback, marked fallback:true, for viewers without
		// the extension. Both accessors' buffer view (0) points at the
		// compressed data; the fallback buffer exists only so a
		// non-supporting viewer has somewhere to decode into.
		doc.BufferViews = []bufferView{{
			Buffer: 0, ByteOffset: 0, ByteLength: len(compressed), ByteStride: lay.stride,
			Extensions: &bufferViewExtension{ExtMeshoptCompression: &extMeshoptCompression{
				Buffer: 1, ByteLength: len(vertexBuf), ByteStride: lay.stride, Count: count, Mode: "ATTRIBUTES",
			}},
		}}
		doc.Buffers = []buffer{
			{ByteLength: len(compressed)},
			{ByteLength: len(vertexBuf), Fallback: true},
		}
		binChunk = append(append([]byte{}, compressed...), vertexBuf...)
		// buffer 1 (the fallback) starts right after buffer 0's bytes in
		// the shared BIN chunk.
		doc.BufferViews[0].Extensions.ExtMeshoptCompression.ByteOffset = len(compressed)
	} else {
		doc.BufferViews = []bufferView{{
			Buffer: 0, ByteOffset: 0, ByteLength: len(vertexBuf), ByteStride: lay.stride,
		}}
		doc.Buffers = []buffer{{ByteLength: len(vertexBuf)}}
		binChunk = vertexBuf
	}

	doc.ExtensionsUsed = dedupe(extensionsUsed)
	doc.ExtensionsRequired = dedupe(extensionsRequired)

	jsonBytes, err := gojson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("glb: marshal glTF JSON: %w", err)
	}
	return writeContainer(jsonBytes, binChunk)
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// writeContainer assembles the 12-byte GLB header plus the length-prefixed
// JSON and BIN chunks, each padded to chunkAlignment bytes.
func writeContainer(jsonBytes, binBytes []byte) ([]byte, error) {
	out := bytebufferpool.Get()
	defer bytebufferpool.Put(out)

	paddedJSON := padChunk(jsonBytes, ' ')
	paddedBIN := padChunk(binBytes, 0)

	totalLen := 12 + 8 + len(paddedJSON) + 8 + len(paddedBIN)

	var header [12]byte
	binary.LittleEndian.PutUint32(header[0:], glbMagic)
	binary.LittleEndian.PutUint32(header[4:], glbVersion)
	binary.LittleEndian.PutUint32(header[8:], uint32(totalLen))
	out.Write(header[:])

	writeChunk(out, chunkTypeJSON, paddedJSON)
	writeChunk(out, chunkTypeBIN, paddedBIN)

	result := make([]byte, out.Len())
	copy(result, out.Bytes())
	return result, nil
}

func writeChunk(out *bytebufferpool.ByteBuffer, chunkType uint32, data []byte) {
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(hdr[4:], chunkType)
	out.Write(hdr[:])
	out.Write(data)
}

func padChunk(data []byte, padByte byte) []byte {
	rem := len(data) % chunkAlignment
	if rem == 0 {
		return data
	}
	pad := chunkAlignment - rem
	out := make([]byte, len(data)+pad)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = padByte
	}
	return out
}
