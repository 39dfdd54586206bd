package decimate

// mortonBits is the number of bits of each voxel axis index packed into the
// Morton code (spec §4.4: "3D Morton code of the voxel index (21 bits per
// axis, biased to unsigned so negative indices work)"). 3*21 = 63 bits fits
// in a uint64.
const mortonBits = 21

// mortonBias shifts a signed voxel index into the unsigned range the Morton
// interleaving requires, centered so indices within +/-2^20 of the origin
// (which covers any plausible voxel grid for this pipeline) stay positive.
const mortonBias = int64(1) << (mortonBits - 1)

func mortonCode(idx voxelIndex) uint64 {
	x := biasedComponent(idx.x)
	y := biasedComponent(idx.y)
	z := biasedComponent(idx.z)
	return spreadBits(x) | spreadBits(y)<<1 | spreadBits(z)<<2
}

func biasedComponent(v int64) uint64 {
	biased := v + mortonBias
	if biased < 0 {
		biased = 0
	}
	const mask = (int64(1) << mortonBits) - 1
	if biased > mask {
		biased = mask
	}
	return uint64(biased)
}

// spreadBits interleaves zero bits between each of the low mortonBits bits
// of v, the standard "magic numbers" bit-spreading trick for 3D Morton
// codes.
func spreadBits(v uint64) uint64 {
	v &= (1 << mortonBits) - 1
	v = (v | (v << 32)) & 0x1f00000000ffff
	v = (v | (v << 16)) & 0x1f0000ff0000ff
	v = (v | (v << 8)) & 0x100f00f00f00f00f
	v = (v | (v << 4)) & 0x10c30c30c30c30c3
	v = (v | (v << 2)) & 0x1249249249249249
	return v
}
