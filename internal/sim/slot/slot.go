// Package slot provides a reusable small-integer index space: acquire hands
// out the smallest index not currently in use, release returns an index for
// reuse. Both the serverside chunk index space and each player's clientside
// chunk index space are built on it.
package slot

import (
	"container/heap"
	"fmt"
)

// Space is a reusable index allocator. The zero value is ready to use.
type Space struct {
	next int // indices >= next have never been handed out
	free intHeap
	used map[int]struct{}
}

// Acquire returns the smallest free index.
func (s *Space) Acquire() int {
	var idx int
	if len(s.free) > 0 {
		idx = heap.Pop(&s.free).(int)
	} else {
		idx = s.next
		s.next++
	}
	if s.used == nil {
		s.used = make(map[int]struct{})
	}
	s.used[idx] = struct{}{}
	return idx
}

// Release frees an acquired index for reuse. Releasing an index that is not
// in use is a caller bug.
func (s *Space) Release(idx int) {
	if _, ok := s.used[idx]; !ok {
		panic(fmt.Sprintf("slot: release of index %d not in use", idx))
	}
	delete(s.used, idx)
	heap.Push(&s.free, idx)
}

// InUse reports whether idx is currently acquired.
func (s *Space) InUse(idx int) bool {
	_, ok := s.used[idx]
	return ok
}

// Len returns the number of indices currently acquired.
func (s *Space) Len() int {
	return len(s.used)
}

type intHeap []int

func (h intHeap) Len() int            { return len(h) }
func (h intHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h intHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *intHeap) Push(x interface{}) { *h = append(*h, x.(int)) }
func (h *intHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
