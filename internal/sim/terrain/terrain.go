// Package terrain holds the chunk payload type and the fallback generator
// used when a requested chunk has never been saved.
package terrain

// Edge is the edge length of a cubic chunk, in blocks.
const Edge = 16

// BlocksPerChunk is the number of block cells in one chunk.
const BlocksPerChunk = Edge * Edge * Edge

// Block ids used by the generator. The palette is deliberately tiny; payload
// content is a collaborator concern, not something the lifecycle core
// inspects.
const (
	BlockAir uint16 = iota
	BlockStone
	BlockDirt
	BlockGrass
)

// Chunk is one chunk's payload: a dense block array in x-fastest, then z,
// then y order.
type Chunk struct {
	Blocks []uint16
}

// NewChunk allocates an all-air chunk.
func NewChunk() *Chunk {
	return &Chunk{Blocks: make([]uint16, BlocksPerChunk)}
}

// At returns the block at local coordinates (x, y, z).
func (c *Chunk) At(x, y, z int) uint16 {
	return c.Blocks[blockIndex(x, y, z)]
}

// Set stores a block at local coordinates (x, y, z).
func (c *Chunk) Set(x, y, z int, b uint16) {
	c.Blocks[blockIndex(x, y, z)] = b
}

func blockIndex(x, y, z int) int {
	return x + z*Edge + y*Edge*Edge
}
