package terrain

import "voxelgate.dev/internal/sim/coords"

// Generate deterministically produces the payload for a chunk that has never
// been saved. The same (seed, cc) pair always yields an identical chunk, so
// a chunk regenerated after an unload without modification is
// indistinguishable from the first generation.
func Generate(seed int64, cc coords.Chunk) *Chunk {
	ch := NewChunk()

	baseY := cc.Y * Edge
	for z := 0; z < Edge; z++ {
		for x := 0; x < Edge; x++ {
			h := surfaceHeight(seed, cc.X*Edge+int64(x), cc.Z*Edge+int64(z))
			for y := 0; y < Edge; y++ {
				wy := baseY + int64(y)
				switch {
				case wy > h:
					// air, already zero
				case wy == h:
					ch.Set(x, y, z, BlockGrass)
				case wy >= h-3:
					ch.Set(x, y, z, BlockDirt)
				default:
					ch.Set(x, y, z, BlockStone)
				}
			}
		}
	}
	return ch
}

// surfaceHeight is a cheap value-noise heightline: a seeded integer hash of
// the column smoothed into a small band around y=8.
func surfaceHeight(seed, wx, wz int64) int64 {
	h := mix(seed, wx>>2, wz>>2)
	return 6 + int64(h%5)
}

func mix(seed, a, b int64) uint64 {
	x := uint64(seed) ^ uint64(a)*0x9e3779b97f4a7c15 ^ uint64(b)*0xc2b2ae3d27d4eb4f
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
