package glb

// The glTF JSON document model below is the minimal subset spec §4.5
// requires: one mesh, one POINTS primitive, POSITION + COLOR_0, and the
// two vertex-compression extensions. Field naming and the
// EXT_meshopt_compression shape follow
// cesiumtiles-gltf-json's models/extensions/buffer_view (the one
// upstream Rust crate with enough of the wire format spelled out to ground
// this against), translated to Go's encoding/json (here goccy/go-json)
// struct-tag conventions.

type document struct {
	Asset              asset       `json:"asset"`
	ExtensionsUsed     []string    `json:"extensionsUsed,omitempty"`
	ExtensionsRequired []string    `json:"extensionsRequired,omitempty"`
	Scene              int         `json:"scene"`
	Scenes             []scene     `json:"scenes"`
	Nodes              []node      `json:"nodes"`
	Meshes             []mesh      `json:"meshes"`
	Accessors          []accessor  `json:"accessors"`
	BufferViews        []bufferView `json:"bufferViews"`
	Buffers            []buffer    `json:"buffers"`
}

type asset struct {
	Version string `json:"version"`
}

type scene struct {
	Nodes []int `json:"nodes"`
}

type node struct {
	Mesh        int        `json:"mesh"`
	Translation [3]float64 `json:"translation"`
	Scale       [3]float64 `json:"scale,omitempty"`
}

type mesh struct {
	Primitives []primitive `json:"primitives"`
}

// glTF primitive mode POINTS.
const primitiveModePoints = 0

type primitive struct {
	Attributes map[string]int `json:"attributes"`
	Mode       int            `json:"mode"`
}

type accessor struct {
	BufferView    int       `json:"bufferView"`
	ByteOffset    int       `json:"byteOffset,omitempty"`
	ComponentType int       `json:"componentType"`
	Count         int       `json:"count"`
	Type          string    `json:"type"`
	Normalized    bool      `json:"normalized,omitempty"`
	Min           []float64 `json:"min,omitempty"`
	Max           []float64 `json:"max,omitempty"`
}

// glTF accessor componentType constants used here.
const (
	componentTypeUnsignedShort = 5123
	componentTypeFloat         = 5126
	componentTypeUnsignedByte  = 5121
)

type bufferView struct {
	Buffer     int                  `json:"buffer"`
	ByteOffset int                  `json:"byteOffset"`
	ByteLength int                  `json:"byteLength"`
	ByteStride int                  `json:"byteStride,omitempty"`
	Extensions *bufferViewExtension `json:"extensions,omitempty"`
}

type bufferViewExtension struct {
	ExtMeshoptCompression *extMeshoptCompression `json:"EXT_meshopt_compression"`
}

type extMeshoptCompression struct {
	Buffer     int    `json:"buffer"`
	ByteOffset int    `json:"byteOffset,omitempty"`
	ByteLength int    `json:"byteLength"`
	ByteStride int     `json:"byteStride"`
	Count      int    `json:"count"`
	Mode       string `json:"mode"`
	Filter     string `json:"filter,omitempty"`
}

type buffer struct {
	ByteLength int    `json:"byteLength"`
	URI        string `json:"uri,omitempty"` // empty: refers to the GLB's embedded BIN chunk
	Fallback   bool   `json:"fallback,omitempty"`
}

const (
	extKHRMeshQuantization  = "KHR_mesh_quantization"
	extMeshoptCompressionID = "EXT_meshopt_compression"
)

// Exported extension-name constants, for callers outside this package that
// need to declare a tileset-wide extensionsUsed list (internal/manifest).
const (
	ExtensionKHRMeshQuantization = extKHRMeshQuantization
	ExtensionMeshoptCompression  = extMeshoptCompressionID
)
