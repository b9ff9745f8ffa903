package chunkmgr

import (
	"container/list"
	"fmt"

	"voxelgate.dev/internal/sim/coords"
)

// DefaultAddChunkBudget is the number of chunk deliveries a freshly added
// player may receive before it has to grant more budget. Combined with the
// client-side grant flow it bounds how many chunks are in transit to one
// client at any instant.
const DefaultAddChunkBudget = 20

// ccci identifies a loaded chunk in the delivery queue.
type ccci struct {
	cc coords.Chunk
	ci int
}

// addChunkBudget manages, for a single player, the limited rate at which
// chunks may be delivered into that player's session. Deliveries that the
// current budget does not cover wait in a FIFO queue until the player grants
// more.
type addChunkBudget struct {
	budget int
	queue  *list.List               // of ccci, front is delivered first
	queued map[ccci]*list.Element   // for O(1) cancellation
	known  map[ccci]struct{}        // every currently loaded chunk, queued or not
}

// newAddChunkBudget constructs a budget seeded with the currently loaded
// chunk set, so its bookkeeping starts consistent with the directory.
func newAddChunkBudget(chunks *Directory) *addChunkBudget {
	b := &addChunkBudget{
		budget: DefaultAddChunkBudget,
		queue:  list.New(),
		queued: make(map[ccci]*list.Element),
		known:  make(map[ccci]struct{}),
	}
	chunks.Each(func(cc coords.Chunk, ci int) {
		b.known[ccci{cc, ci}] = struct{}{}
	})
	return b
}

// onChunkAdded records a chunk newly loaded on the server.
func (b *addChunkBudget) onChunkAdded(cc coords.Chunk, ci int) {
	b.known[ccci{cc, ci}] = struct{}{}
}

// onChunkRemoved records a chunk leaving the server. The chunk must not be
// queued; interests are withdrawn before a chunk can unload.
func (b *addChunkBudget) onChunkRemoved(cc coords.Chunk, ci int) {
	key := ccci{cc, ci}
	if _, ok := b.queued[key]; ok {
		panic(fmt.Sprintf("chunkmgr: budget removal of still-queued chunk %v", cc))
	}
	delete(b.known, key)
}

// mayDeliverNow consumes one unit of budget and returns true if the chunk can
// be delivered immediately. Otherwise it enqueues the chunk for later release
// and returns false.
func (b *addChunkBudget) mayDeliverNow(cc coords.Chunk, ci int) bool {
	key := ccci{cc, ci}
	if _, ok := b.known[key]; !ok {
		panic(fmt.Sprintf("chunkmgr: budget asked about unknown chunk %v", cc))
	}
	if _, ok := b.queued[key]; ok {
		panic(fmt.Sprintf("chunkmgr: duplicate delivery attempt for queued chunk %v", cc))
	}
	if b.budget > 0 {
		b.budget--
		return true
	}
	b.queued[key] = b.queue.PushBack(key)
	return false
}

// cancelQueued removes a chunk from the pending-delivery queue.
func (b *addChunkBudget) cancelQueued(cc coords.Chunk, ci int) {
	key := ccci{cc, ci}
	el, ok := b.queued[key]
	if !ok {
		panic(fmt.Sprintf("chunkmgr: cancel of chunk %v not in delivery queue", cc))
	}
	b.queue.Remove(el)
	delete(b.queued, key)
}

// grant adds delivery budget.
func (b *addChunkBudget) grant(amount int) {
	b.budget += amount
}

// pollReady pops the next queued chunk if budget allows it, consuming one
// unit. Returns false when the queue is empty or the budget is exhausted.
func (b *addChunkBudget) pollReady() (coords.Chunk, int, bool) {
	if b.budget == 0 {
		return coords.Chunk{}, 0, false
	}
	front := b.queue.Front()
	if front == nil {
		return coords.Chunk{}, 0, false
	}
	b.budget--
	key := front.Value.(ccci)
	b.queue.Remove(front)
	delete(b.queued, key)
	return key.cc, key.ci, true
}
