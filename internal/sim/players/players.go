// Package players manages the space of connected-player handles and sparse
// per-player storage.
//
// A Key is a slot index plus a generation counter. Indices are reused after a
// player leaves, so the generation guards against storage keyed by a stale
// handle silently aliasing a newer player in the same slot.
package players

import (
	"fmt"

	"voxelgate.dev/internal/sim/slot"
)

// Key is an opaque handle to a connected player. The zero value is not a
// valid key.
type Key struct {
	idx int
	gen uint64
}

// Index exposes the underlying slot index, e.g. for logging.
func (k Key) Index() int { return k.idx }

func (k Key) String() string { return fmt.Sprintf("player(%d#%d)", k.idx, k.gen) }

// KeySpace allocates player keys. Adding a key should be followed by
// inserting into every PerPlayer structure, and removing by removing from
// every PerPlayer structure.
type KeySpace struct {
	slots slot.Space
	gens  map[int]uint64
	ctr   uint64
}

// NewKeySpace constructs an empty key space.
func NewKeySpace() *KeySpace {
	return &KeySpace{gens: make(map[int]uint64)}
}

// Add allocates a new player key.
func (s *KeySpace) Add() Key {
	s.ctr++
	idx := s.slots.Acquire()
	s.gens[idx] = s.ctr
	return Key{idx: idx, gen: s.ctr}
}

// Remove frees a player key. The key must be current.
func (s *KeySpace) Remove(k Key) {
	s.check(k)
	delete(s.gens, k.idx)
	s.slots.Release(k.idx)
}

// Contains reports whether k is a current key.
func (s *KeySpace) Contains(k Key) bool {
	gen, ok := s.gens[k.idx]
	return ok && gen == k.gen
}

// Len returns the number of current keys.
func (s *KeySpace) Len() int { return s.slots.Len() }

// Each calls fn for every current key.
func (s *KeySpace) Each(fn func(Key)) {
	for idx, gen := range s.gens {
		fn(Key{idx: idx, gen: gen})
	}
}

func (s *KeySpace) check(k Key) {
	gen, ok := s.gens[k.idx]
	if !ok || gen != k.gen {
		panic(fmt.Sprintf("players: stale or unknown key %v", k))
	}
}

// PerPlayer is sparse storage of T keyed by player. It must be kept in
// synchrony with a KeySpace by construction: Insert after KeySpace.Add,
// Remove alongside KeySpace.Remove. Access through a stale key panics.
type PerPlayer[T any] struct {
	entries map[int]perPlayerEntry[T]
}

type perPlayerEntry[T any] struct {
	gen uint64
	val T
}

// NewPerPlayer constructs empty per-player storage.
func NewPerPlayer[T any]() *PerPlayer[T] {
	return &PerPlayer[T]{entries: make(map[int]perPlayerEntry[T])}
}

// Insert adds an entry for k. The slot must be vacant.
func (p *PerPlayer[T]) Insert(k Key, val T) {
	if e, ok := p.entries[k.idx]; ok && e.gen == k.gen {
		panic(fmt.Sprintf("players: duplicate insert for %v", k))
	}
	p.entries[k.idx] = perPlayerEntry[T]{gen: k.gen, val: val}
}

// Remove deletes and returns the entry for k.
func (p *PerPlayer[T]) Remove(k Key) T {
	e := p.entry(k)
	delete(p.entries, k.idx)
	return e.val
}

// Get returns the entry for k.
func (p *PerPlayer[T]) Get(k Key) T {
	return p.entry(k).val
}

// Set replaces the entry for k, which must be present.
func (p *PerPlayer[T]) Set(k Key, val T) {
	p.entry(k)
	p.entries[k.idx] = perPlayerEntry[T]{gen: k.gen, val: val}
}

// Contains reports whether an entry exists for k.
func (p *PerPlayer[T]) Contains(k Key) bool {
	e, ok := p.entries[k.idx]
	return ok && e.gen == k.gen
}

// Each calls fn for every present entry.
func (p *PerPlayer[T]) Each(fn func(Key, T)) {
	for idx, e := range p.entries {
		fn(Key{idx: idx, gen: e.gen}, e.val)
	}
}

// Len returns the number of present entries.
func (p *PerPlayer[T]) Len() int { return len(p.entries) }

func (p *PerPlayer[T]) entry(k Key) perPlayerEntry[T] {
	e, ok := p.entries[k.idx]
	if !ok || e.gen != k.gen {
		panic(fmt.Sprintf("players: no entry for %v", k))
	}
	return e
}
