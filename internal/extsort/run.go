// Package extsort implements the bounded-memory external-sort tiler (spec
// §4.7): reader threads stream and transform points in chunks, each chunk
// is tagged with its leaf Hilbert id and written out pre-sorted as a run
// file, then a k-way merge folds the runs into per-tile-group files.
//
// The bounded-channel producer/writer shape is adapted from the teacher's
// disk-backed tile store (tile/diskstore.go's ioLoop): a dedicated
// goroutine owns sequential writes to one file while a producer hands it
// buffers over an unbuffered channel. In place of the teacher's sync.Cond
// wait loop, the producer's send blocks until the writer takes the buffer,
// which keeps memory bounded.
package extsort

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/mierune/point-tiler/internal/point"
	"github.com/mierune/point-tiler/internal/reader"
	"github.com/mierune/point-tiler/internal/reproject"
	"github.com/mierune/point-tiler/internal/tilekey"
)

// runRecordSize is one (hilbert_id, encoded point) pair as written to a run
// file: 8 bytes for the id so Stage B can merge without re-deriving tile
// keys from coordinates.
const runRecordSize = 8 + point.RecordSize

// OpenFunc opens one input shard as a PointReader.
type OpenFunc func(path string) (reader.PointReader, error)

// NewTransformerFunc constructs a fresh, single-threaded Transformer; Stage
// A calls this once per reader thread (spec §5: "Thread-local transformer
// instances: one per reader; never shared").
type NewTransformerFunc func() (reproject.Transformer, error)

// Config controls Stage A's resource envelope.
type Config struct {
	Cores       int // reader thread count; also the run-file fan-out
	ChunkSize   int // points buffered before a reader flushes a run chunk
	MaxInFlight int // weight of the run writer's per-chunk semaphore (see startRunWriter)
	ZMax        int // leaf zoom level
	TmpDir      string
}

// WriteRuns shards files across cfg.Cores reader threads. Each thread owns
// a private transformer and a chunkSize buffer; when the buffer fills, it
// is transformed, tagged with each point's leaf Hilbert id, sorted, and
// handed to a dedicated writer goroutine that appends it to that thread's
// run file. Returns the paths of the run files written (spec §4.7).
func WriteRuns(files []string, open OpenFunc, newTransformer NewTransformerFunc, cfg Config) ([]string, error) {
	if cfg.Cores <= 0 {
		cfg.Cores = 1
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1 << 16
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 2
	}

	shards := shardFiles(files, cfg.Cores)
	runFiles := make([]string, len(shards))

	var g errgroup.Group
	for i, shard := range shards {
		i, shard := i, shard
		if len(shard) == 0 {
			continue
		}
		g.Go(func() error {
			path, err := runShard(shard, open, newTransformer, cfg)
			if err != nil {
				return err
			}
			runFiles[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := runFiles[:0]
	for _, p := range runFiles {
		if p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

func shardFiles(files []string, cores int) [][]string {
	shards := make([][]string, cores)
	for i, f := range files {
		shards[i%cores] = append(shards[i%cores], f)
	}
	return shards
}

// runShard is one reader thread's worth of Stage A: stream its shard,
// transform and tag each full buffer, sort it by Hilbert id, and hand it to
// a dedicated writer goroutine for this shard's run file.
func runShard(shard []string, open OpenFunc, newTransformer NewTransformerFunc, cfg Config) (string, error) {
	transformer, err := newTransformer()
	if err != nil {
		return "", fmt.Errorf("extsort: new transformer: %w", err)
	}

	runPath, writeCh, writeErrCh, writerDone := startRunWriter(cfg.TmpDir, cfg.MaxInFlight)

	var buf []point.Point
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if err := transformer.TransformInPlace(buf); err != nil {
			return fmt.Errorf("extsort: transform: %w", err)
		}
		tagged := tagAndSort(buf, cfg.ZMax)
		select {
		case writeCh <- tagged:
		case err := <-writeErrCh:
			return err
		}
		buf = nil
		return nil
	}

	for _, f := range shard {
		r, err := open(f)
		if err != nil {
			close(writeCh)
			<-writerDone
			return "", fmt.Errorf("extsort: open %s: %w", f, err)
		}
		for {
			p, err := r.NextPoint()
			if err != nil {
				break // io.EOF or a reader error; either way this file is done
			}
			buf = append(buf, p)
			if len(buf) >= cfg.ChunkSize {
				if ferr := flush(); ferr != nil {
					r.Close()
					close(writeCh)
					<-writerDone
					return "", ferr
				}
			}
		}
		r.Close()
	}
	if err := flush(); err != nil {
		close(writeCh)
		<-writerDone
		return "", err
	}

	close(writeCh)
	<-writerDone
	select {
	case err := <-writeErrCh:
		return "", err
	default:
	}
	return runPath, nil
}

type taggedRecord struct {
	hilbertID uint64
	p         point.Point
}

func tagAndSort(buf []point.Point, zmax int) []taggedRecord {
	out := make([]taggedRecord, len(buf))
	for i, p := range buf {
		key := tilekey.FromLngLat(zmax, p.X, p.Y)
		out[i] = taggedRecord{hilbertID: tilekey.HilbertID(key), p: p}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].hilbertID < out[j].hilbertID })
	return out
}

// startRunWriter starts the dedicated goroutine that owns sequential writes
// to one run file, reading tagged chunks off writeCh. writeCh is
// unbuffered, so a reader's send blocks until the writer takes the chunk;
// that is the backpressure mechanism (spec §4.7: "send blocks when full").
// The writer also holds one unit of a maxInFlight-weighted semaphore while
// it writes a chunk. Only the writer acquires it, so it never blocks, and
// maxInFlight does not limit how many chunks wait for the writer.
func startRunWriter(tmpDir string, maxInFlight int) (path string, writeCh chan []taggedRecord, errCh chan error, done chan struct{}) {
	writeCh = make(chan []taggedRecord)
	errCh = make(chan error, 1)
	done = make(chan struct{})

	f, ferr := os.CreateTemp(tmpDir, "point-tiler-run-"+uuid.NewString()+"-*.bin")
	if ferr != nil {
		errCh <- fmt.Errorf("extsort: create run file: %w", ferr)
		close(done)
		return "", writeCh, errCh, done
	}
	path = f.Name()

	sem := semaphore.NewWeighted(int64(maxInFlight))

	go func() {
		defer close(done)
		defer f.Close()
		w := bufio.NewWriterSize(f, 1<<20)
		var rec [runRecordSize]byte
		for chunk := range writeCh {
			if err := sem.Acquire(context.Background(), 1); err != nil {
				continue
			}
			for _, tr := range chunk {
				binary.LittleEndian.PutUint64(rec[0:8], tr.hilbertID)
				encodePointInto(rec[8:], tr.p)
				if _, err := w.Write(rec[:]); err != nil {
					select {
					case errCh <- fmt.Errorf("extsort: write run: %w", err):
					default:
					}
				}
			}
			sem.Release(1)
		}
		if err := w.Flush(); err != nil {
			select {
			case errCh <- fmt.Errorf("extsort: flush run: %w", err):
			default:
			}
		}
	}()

	return path, writeCh, errCh, done
}

// encodePointInto encodes p into dst, which must have exactly
// point.RecordSize bytes of capacity (dst[:0] reuses that capacity in
// place rather than allocating).
func encodePointInto(dst []byte, p point.Point) {
	point.EncodeTo(dst[:0], p)
}
