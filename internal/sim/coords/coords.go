package coords

// Chunk is a chunk coordinate: the stable external identity of one chunk of
// world data, independent of whether the chunk is currently resident.
type Chunk struct {
	X, Y, Z int64
}

// Add returns c offset by (dx, dy, dz).
func (c Chunk) Add(dx, dy, dz int64) Chunk {
	return Chunk{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

// Range describes the set of chunk coordinates a player at a given chunk
// position wants resident: a square of horizontal radius R around the center
// column, spanning vertical chunks [YMin, YMax].
type Range struct {
	Center Chunk
	R      int64
	YMin   int64
	YMax   int64
}

// Contains reports whether c falls inside the range.
func (r Range) Contains(c Chunk) bool {
	if c.Y < r.YMin || c.Y > r.YMax {
		return false
	}
	dx := c.X - r.Center.X
	dz := c.Z - r.Center.Z
	return dx >= -r.R && dx <= r.R && dz >= -r.R && dz <= r.R
}

// Each calls fn for every coordinate in the range, in a deterministic order
// (y, then z, then x ascending).
func (r Range) Each(fn func(Chunk)) {
	for y := r.YMin; y <= r.YMax; y++ {
		for z := r.Center.Z - r.R; z <= r.Center.Z+r.R; z++ {
			for x := r.Center.X - r.R; x <= r.Center.X+r.R; x++ {
				fn(Chunk{X: x, Y: y, Z: z})
			}
		}
	}
}

// Count returns the number of coordinates in the range.
func (r Range) Count() int {
	side := 2*r.R + 1
	return int(side * side * (r.YMax - r.YMin + 1))
}

// FloorDiv divides a by b rounding toward negative infinity. b must be
// positive. Chunk coordinates of negative world positions depend on this
// rather than on Go's truncating division.
func FloorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Mod returns the non-negative remainder of a modulo b. b must be positive.
func Mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// ChunkAt returns the chunk coordinate containing world position (x, y, z)
// for cubic chunks of the given edge length.
func ChunkAt(x, y, z, edge int64) Chunk {
	return Chunk{
		X: FloorDiv(x, edge),
		Y: FloorDiv(y, edge),
		Z: FloorDiv(z, edge),
	}
}
