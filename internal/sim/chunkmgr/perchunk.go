package chunkmgr

import (
	"fmt"

	"voxelgate.dev/internal/sim/coords"
)

// PerChunk is sparse per-chunk storage of T, kept in synchrony with a
// Directory by construction: Add after Directory.Insert, Remove alongside
// Directory.Remove. Entries are addressed by (coordinate, index) pairs and
// the stored coordinate is checked on every access; a mismatch means some
// structure fell out of synchrony and is reported loudly rather than read
// through.
type PerChunk[T any] struct {
	entries map[int]perChunkEntry[T]
}

type perChunkEntry[T any] struct {
	cc  coords.Chunk
	val T
}

// NewPerChunk constructs empty per-chunk storage.
func NewPerChunk[T any]() *PerChunk[T] {
	return &PerChunk[T]{entries: make(map[int]perChunkEntry[T])}
}

// Add inserts a value for (cc, ci). The index must be vacant.
func (p *PerChunk[T]) Add(cc coords.Chunk, ci int, val T) {
	if e, ok := p.entries[ci]; ok {
		panic(fmt.Sprintf("chunkmgr: per-chunk add at occupied index %d (%v vs %v)", ci, e.cc, cc))
	}
	p.entries[ci] = perChunkEntry[T]{cc: cc, val: val}
}

// Remove deletes and returns the value for (cc, ci).
func (p *PerChunk[T]) Remove(cc coords.Chunk, ci int) T {
	e := p.entry(cc, ci)
	delete(p.entries, ci)
	return e.val
}

// Get returns the value for (cc, ci).
func (p *PerChunk[T]) Get(cc coords.Chunk, ci int) T {
	return p.entry(cc, ci).val
}

// Set replaces the value for (cc, ci), which must be present.
func (p *PerChunk[T]) Set(cc coords.Chunk, ci int, val T) {
	p.entry(cc, ci)
	p.entries[ci] = perChunkEntry[T]{cc: cc, val: val}
}

// Len returns the number of present entries.
func (p *PerChunk[T]) Len() int { return len(p.entries) }

func (p *PerChunk[T]) entry(cc coords.Chunk, ci int) perChunkEntry[T] {
	e, ok := p.entries[ci]
	if !ok {
		panic(fmt.Sprintf("chunkmgr: per-chunk access at vacant index %d (%v)", ci, cc))
	}
	if e.cc != cc {
		panic(fmt.Sprintf("chunkmgr: per-chunk coordinate mismatch at index %d: have %v, asked %v", ci, e.cc, cc))
	}
	return e
}
