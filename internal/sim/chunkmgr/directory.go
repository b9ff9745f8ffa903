package chunkmgr

import (
	"fmt"

	"voxelgate.dev/internal/sim/coords"
	"voxelgate.dev/internal/sim/slot"
)

// Directory is the bidirectional map between chunk coordinates and serverside
// chunk indices for chunks in the loaded state. Indices come from a reusable
// slot space: an index is only meaningful while its chunk stays loaded, and
// may later be reissued to an unrelated chunk.
type Directory struct {
	byCoord map[coords.Chunk]int
	byIndex map[int]coords.Chunk
	slots   slot.Space
}

// NewDirectory constructs an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		byCoord: make(map[coords.Chunk]int),
		byIndex: make(map[int]coords.Chunk),
	}
}

// Insert adds cc to the loaded set and returns its assigned chunk index.
// Inserting a coordinate that is already present is a caller bug.
func (d *Directory) Insert(cc coords.Chunk) int {
	if _, ok := d.byCoord[cc]; ok {
		panic(fmt.Sprintf("chunkmgr: directory insert of already-loaded %v", cc))
	}
	ci := d.slots.Acquire()
	d.byCoord[cc] = ci
	d.byIndex[ci] = cc
	return ci
}

// Remove deletes cc from the loaded set and frees its index for reuse,
// returning the index it held.
func (d *Directory) Remove(cc coords.Chunk) int {
	ci, ok := d.byCoord[cc]
	if !ok {
		panic(fmt.Sprintf("chunkmgr: directory remove of absent %v", cc))
	}
	delete(d.byCoord, cc)
	delete(d.byIndex, ci)
	d.slots.Release(ci)
	return ci
}

// Lookup returns the index for cc, if loaded.
func (d *Directory) Lookup(cc coords.Chunk) (int, bool) {
	ci, ok := d.byCoord[cc]
	return ci, ok
}

// CoordOf returns the coordinate currently holding index ci.
func (d *Directory) CoordOf(ci int) (coords.Chunk, bool) {
	cc, ok := d.byIndex[ci]
	return cc, ok
}

// Len returns the number of loaded chunks.
func (d *Directory) Len() int { return len(d.byCoord) }

// Each calls fn for every loaded (coordinate, index) pair.
func (d *Directory) Each(fn func(coords.Chunk, int)) {
	for cc, ci := range d.byCoord {
		fn(cc, ci)
	}
}
