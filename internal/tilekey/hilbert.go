package tilekey

// Hilbert ids are a locality-preserving sort key (spec §3.2, §4.1): the
// external-sort tiler (internal/extsort) sorts points by this value so that
// spatially close points land close together on disk, which is what makes
// the k-way merge produce contiguous per-tile runs cheaply.
//
// The curve math (xyToHilbert/hilbertToXY) is the same bit-twiddling the
// teacher uses purely as a sort key in coord/hilbert.go and
// pmtiles/directory.go's ZXYToTileID; this package additionally inverts it
// (from_hilbert_id), which the teacher never needed since it only ever
// sorts by the value, never decodes one back to a tile.

// levelOffset returns the number of tiles at all zoom levels below z, i.e.
// sum(4^i for i in [0, z)). Adding this to a within-level Hilbert index
// gives a ID that is unique and invertible across the whole zoom range,
// mirroring pmtiles.ZXYToTileID's cumulative numbering.
func levelOffset(z int) uint64 {
	var acc uint64
	for i := 0; i < z; i++ {
		n := uint64(1) << uint(i)
		acc += n * n
	}
	return acc
}

// HilbertID maps a tile key to a 64-bit id such that spatially close tiles
// at the same zoom receive close ids (spec §3.2).
func HilbertID(k Key) uint64 {
	n := uint64(1) << uint(k.Z)
	return levelOffset(k.Z) + xyToHilbert(uint64(k.X), uint64(k.Y), n)
}

// FromHilbertID inverts HilbertID. Valid for ids produced by HilbertID with
// z in [0, tilekey.MaxZoom].
func FromHilbertID(id uint64) Key {
	z := 0
	offset := uint64(0)
	for {
		n := uint64(1) << uint(z)
		levelSize := n * n
		if id < offset+levelSize {
			break
		}
		offset += levelSize
		z++
		if z > MaxZoom {
			// id out of the representable range; return the deepest level's
			// last tile rather than looping forever.
			n := uint64(1) << uint(MaxZoom)
			x, y := hilbertToXY(n*n-1, n)
			return Key{Z: MaxZoom, X: int(x), Y: int(y)}
		}
	}
	n := uint64(1) << uint(z)
	x, y := hilbertToXY(id-offset, n)
	return Key{Z: z, X: int(x), Y: int(y)}
}

// xyToHilbert converts (x, y) to a Hilbert curve index within an n x n grid
// (n a power of two).
func xyToHilbert(x, y, n uint64) uint64 {
	var d uint64
	for s := n / 2; s > 0; s /= 2 {
		var rx, ry uint64
		if (x & s) > 0 {
			rx = 1
		}
		if (y & s) > 0 {
			ry = 1
		}
		d += s * s * ((3 * rx) ^ ry)
		x, y = rotate(s, x, y, rx, ry)
	}
	return d
}

// hilbertToXY inverts xyToHilbert.
func hilbertToXY(d, n uint64) (x, y uint64) {
	for s := uint64(1); s < n; s *= 2 {
		rx := 1 & (d / 2)
		ry := 1 & (d ^ rx)
		x, y = rotate(s, x, y, rx, ry)
		x += s * rx
		y += s * ry
		d /= 4
	}
	return x, y
}

// rotate performs the Hilbert quadrant rotation shared by both directions.
func rotate(s, x, y, rx, ry uint64) (uint64, uint64) {
	if ry == 0 {
		if rx == 1 {
			x = s - 1 - x
			y = s - 1 - y
		}
		x, y = y, x
	}
	return x, y
}
