// Package workflow is the driver spec §4.11 names: expand inputs, pick
// the in-memory or external-sort tiling path by a memory-budget estimate,
// then run the aggregator, exporter, and manifest builder in sequence.
// Stages never overlap ("sequential-by-stage orchestration", spec §5) —
// this mirrors the teacher's cmd/geotiff2pmtiles/main.go, which runs
// cog.OpenAll, then tile.Generate, then pmtiles writer.Finalize back to
// back rather than pipelining across them.
package workflow

import (
	"fmt"
	"path/filepath"
	"unsafe"

	"github.com/klauspost/cpuid/v2"

	"github.com/mierune/point-tiler/internal/aggregate"
	"github.com/mierune/point-tiler/internal/export"
	"github.com/mierune/point-tiler/internal/extsort"
	"github.com/mierune/point-tiler/internal/glb"
	"github.com/mierune/point-tiler/internal/logging"
	"github.com/mierune/point-tiler/internal/manifest"
	"github.com/mierune/point-tiler/internal/pipeline"
	"github.com/mierune/point-tiler/internal/point"
	"github.com/mierune/point-tiler/internal/reader"
	"github.com/mierune/point-tiler/internal/reproject"
	"github.com/mierune/point-tiler/internal/tiler"
	"github.com/mierune/point-tiler/internal/tilestore"
)

// stageAChunkSize is the nominal chunk_size spec §4.7 uses in its channel
// capacity formula (10,000,000, "tunable"). Left as a constant here rather
// than a CLI flag since §6.1 exposes no flag for it.
const stageAChunkSize = 10_000_000

// pointSize is the in-memory accounting constant spec §3.1/§9 describes as
// "on the order of 96 bytes... implementers should either measure actual
// size at startup or document the chosen constant" — measured rather than
// hardcoded, so it tracks the Point struct's real layout.
var pointSize = int(unsafe.Sizeof(point.Point{}))

// Options configures one end-to-end run, matching spec §6.1's CLI flags.
type Options struct {
	Input        []string
	Output       string
	InputEPSG    int
	OutputEPSG   int
	Min, Max     int
	MaxMemoryMB  int
	Threads      int
	Quantize     bool
	GzipCompress bool
}

// DefaultThreads returns 2×cores, spec §4.11's default worker-pool size.
func DefaultThreads() int {
	cores := cpuid.CPU.PhysicalCores
	if cores <= 0 {
		cores = cpuid.CPU.LogicalCores
	}
	if cores <= 0 {
		cores = 1
	}
	return 2 * cores
}

// Run executes the full pipeline: expand → tile → aggregate → export →
// manifest. log may be nil, in which case diagnostics are discarded.
func Run(opts Options, log *logging.Logger) error {
	log.Verbosef("CPU: %s, %d physical core(s), %d logical, L2=%d L3=%d",
		cpuid.CPU.BrandName, cpuid.CPU.PhysicalCores, cpuid.CPU.LogicalCores,
		cpuid.CPU.Cache.L2, cpuid.CPU.Cache.L3)

	files, err := expandGlobs(opts.Input)
	if err != nil {
		return pipeline.Wrap("workflow", pipeline.InputFailure, err)
	}
	if len(files) == 0 {
		return pipeline.Wrap("workflow", pipeline.InputFailure, fmt.Errorf("no input files matched %v", opts.Input))
	}
	log.Verbosef("Expanded %d input file(s)", len(files))

	sizeBytes, err := sumSizes(files)
	if err != nil {
		return pipeline.Wrap("workflow", pipeline.IoFailure, err)
	}
	budgetBytes := int64(opts.MaxMemoryMB) * 1024 * 1024
	inMemory := sizeBytes <= budgetBytes
	log.Verbosef("Input size estimate: %d bytes, budget: %d bytes, path: %s",
		sizeBytes, budgetBytes, pathLabel(inMemory))

	store := tilestore.New(filepath.Join(opts.Output, ".tiles"))
	transformer, err := reproject.New(opts.InputEPSG, opts.OutputEPSG)
	if err != nil {
		return pipeline.Wrap("tiler", pipeline.ProjectionFailure, err)
	}

	if inMemory {
		if err := runInMemory(files, transformer, store, opts); err != nil {
			return err
		}
	} else {
		if err := runExternalSort(files, store, opts); err != nil {
			return err
		}
	}
	log.Verbosef("Leaf tiling complete")

	if err := aggregate.Run(store, opts.Min, opts.Max, opts.Threads); err != nil {
		return pipeline.Wrap("aggregate", pipeline.IoFailure, err)
	}
	log.Verbosef("Aggregation complete: levels %d..%d", opts.Min, opts.Max-1)

	glbOpts := glb.Options{Quantize: opts.Quantize}
	contents, err := export.Run(store, opts.Output, opts.Min, opts.Max, export.Options{GLB: glbOpts}, opts.Threads)
	if err != nil {
		return pipeline.Wrap("export", pipeline.EncodeFailure, err)
	}
	log.Verbosef("Exported %d tile(s)", len(contents))

	ts, err := manifest.Build(contents, glbOpts)
	if err != nil {
		return pipeline.Wrap("manifest", pipeline.IoFailure, err)
	}
	data, err := manifest.MarshalPretty(ts)
	if err != nil {
		return pipeline.Wrap("manifest", pipeline.IoFailure, err)
	}
	if err := writeTileset(opts.Output, data); err != nil {
		return pipeline.Wrap("manifest", pipeline.IoFailure, err)
	}
	log.Verbosef("Wrote tileset.json")
	return nil
}

// openOne adapts reader.Open (which takes a file set, to support readers
// whose logical "file" spans several paths) to the single-path OpenFunc
// contract internal/tiler and internal/extsort use: both shard work one
// input file at a time.
func openOne(path string) (reader.PointReader, error) {
	return reader.Open([]string{path})
}

func runInMemory(files []string, transformer reproject.Transformer, store *tilestore.Store, opts Options) error {
	groups, err := tiler.Run(files, openOne, transformer, opts.Max, opts.Threads)
	if err != nil {
		return pipeline.Wrap("tiler", pipeline.IoFailure, err)
	}
	if err := tiler.WriteLeaves(groups, store, opts.Threads); err != nil {
		return pipeline.Wrap("tiler", pipeline.IoFailure, err)
	}
	return nil
}

func runExternalSort(files []string, store *tilestore.Store, opts Options) error {
	budgetBytes := int64(opts.MaxMemoryMB) * 1024 * 1024
	chunkBytes := int64(stageAChunkSize) * int64(pointSize)
	if chunkBytes > budgetBytes {
		return pipeline.Wrap("extsort", pipeline.BudgetFailure, fmt.Errorf(
			"a single %d-point chunk (%d bytes) already exceeds the %d MB memory budget; raise --max-memory-mb",
			stageAChunkSize, chunkBytes, opts.MaxMemoryMB))
	}

	capacity := int(budgetBytes / chunkBytes)
	if minCapacity := opts.Threads * 2; capacity < minCapacity {
		capacity = minCapacity
	}

	cfg := extsort.Config{
		Cores:       opts.Threads,
		ChunkSize:   stageAChunkSize,
		MaxInFlight: capacity,
		ZMax:        opts.Max,
		TmpDir:      filepath.Join(opts.Output, ".runs"),
	}
	newTransformer := func() (reproject.Transformer, error) {
		return reproject.New(opts.InputEPSG, opts.OutputEPSG)
	}
	runs, err := extsort.WriteRuns(files, openOne, newTransformer, cfg)
	if err != nil {
		return pipeline.Wrap("extsort", pipeline.IoFailure, err)
	}
	if err := extsort.Merge(runs, opts.Max, store); err != nil {
		return pipeline.Wrap("extsort", pipeline.IoFailure, err)
	}
	return nil
}

func pathLabel(inMemory bool) string {
	if inMemory {
		return "in-memory"
	}
	return "external-sort"
}
