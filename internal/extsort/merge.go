package extsort

import (
	"bufio"
	"container/heap"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/mierune/point-tiler/internal/point"
	"github.com/mierune/point-tiler/internal/tilekey"
)

// LeafWriter persists one leaf tile's point set (same contract as
// internal/tiler.LeafWriter; repeated here so this package has no
// dependency on the in-memory tiler).
type LeafWriter interface {
	WriteLeaf(key tilekey.Key, points []point.Point) error
}

// runReader streams (hilbertID, Point) pairs out of one sorted run file.
type runReader struct {
	f   *os.File
	r   *bufio.Reader
	buf [runRecordSize]byte
}

func openRunReader(path string) (*runReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &runReader{f: f, r: bufio.NewReaderSize(f, 1<<20)}, nil
}

func (rr *runReader) next() (uint64, point.Point, error) {
	if _, err := io.ReadFull(rr.r, rr.buf[:]); err != nil {
		return 0, point.Point{}, err // io.EOF at a clean boundary
	}
	id := binary.LittleEndian.Uint64(rr.buf[0:8])
	p, err := point.Decode(rr.buf[8:])
	if err != nil {
		return 0, point.Point{}, fmt.Errorf("extsort: decode run record: %w", err)
	}
	return id, p, nil
}

func (rr *runReader) close() { rr.f.Close() }

// mergeHeapItem is one run's current head record.
type mergeHeapItem struct {
	hilbertID uint64
	p         point.Point
	runIdx    int
}

type mergeHeap []mergeHeapItem

func (h mergeHeap) Len() int            { return len(h) }
func (h mergeHeap) Less(i, j int) bool  { return h[i].hilbertID < h[j].hilbertID }
func (h mergeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x interface{}) { *h = append(*h, x.(mergeHeapItem)) }
func (h *mergeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Merge performs the Stage B k-way merge (spec §4.7): runs, each already
// sorted by Hilbert id, are merged in Hilbert order; every maximal run of
// records sharing one Hilbert id is a complete leaf tile and is handed to
// sink as soon as it is known to be complete (no two runs can still be
// holding more records for an id smaller than the current merge frontier).
func Merge(runPaths []string, zmax int, sink LeafWriter) error {
	readers := make([]*runReader, 0, len(runPaths))
	defer func() {
		for _, rr := range readers {
			rr.close()
		}
	}()

	h := &mergeHeap{}
	heap.Init(h)
	for _, path := range runPaths {
		rr, err := openRunReader(path)
		if err != nil {
			return fmt.Errorf("extsort: open run %s: %w", path, err)
		}
		readers = append(readers, rr)
		if err := pushNext(h, rr, len(readers)-1); err != nil {
			return err
		}
	}

	var curID uint64
	var curPoints []point.Point
	haveCur := false

	flush := func() error {
		if !haveCur || len(curPoints) == 0 {
			return nil
		}
		key := tilekey.FromHilbertID(curID)
		if key.Z != zmax {
			return fmt.Errorf("extsort: merged leaf %+v at unexpected zoom (want %d)", key, zmax)
		}
		if err := sink.WriteLeaf(key, curPoints); err != nil {
			return fmt.Errorf("extsort: write leaf %+v: %w", key, err)
		}
		return nil
	}

	for h.Len() > 0 {
		item := heap.Pop(h).(mergeHeapItem)
		if !haveCur || item.hilbertID != curID {
			if err := flush(); err != nil {
				return err
			}
			curID = item.hilbertID
			curPoints = curPoints[:0]
			haveCur = true
		}
		curPoints = append(curPoints, item.p)

		if err := pushNext(h, readers[item.runIdx], item.runIdx); err != nil {
			return err
		}
	}
	return flush()
}

func pushNext(h *mergeHeap, rr *runReader, runIdx int) error {
	id, p, err := rr.next()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	heap.Push(h, mergeHeapItem{hilbertID: id, p: p, runIdx: runIdx})
	return nil
}
