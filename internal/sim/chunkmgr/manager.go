// Package chunkmgr decides which chunks of the unbounded world are resident
// in server memory, which players have each resident chunk mirrored into
// their session, and how chunks move between absent, loading, and loaded
// under overlapping demand from many players.
//
// Every chunk that is loading or loaded carries a load request count: the
// number of independent reasons it must remain resident. A chunk client
// interest is a relation between a player and a coordinate meaning that
// player wants the chunk mirrored; creating or destroying an interest
// increments or decrements the load request count automatically. A count
// transition 0->1 starts a load, a transition to 0 unloads (or cancels the
// pending load).
//
// The manager is owned by a single goroutine and never blocks. Outward side
// effects are queued, not performed: after any mutating call the owner must
// drain the effect queue with DrainEffects and apply the effects in order
// before relying on manager state being externally visible, unless the
// method's comment says draining is not required.
package chunkmgr

import (
	"fmt"

	"voxelgate.dev/internal/sim/coords"
	"voxelgate.dev/internal/sim/players"
	"voxelgate.dev/internal/sim/slot"
	"voxelgate.dev/internal/sim/terrain"
)

// noDelivery marks a (loaded chunk, player) pair with no clientside index:
// the chunk has not been delivered into that player's session.
const noDelivery = -1

// Manager is the chunk lifecycle and interest manager. Construct with New.
type Manager struct {
	effects []Effect

	// serverside space of loaded chunks
	chunks *Directory

	// for each player, that player's clientside chunk index space
	clientsideChunks *players.PerPlayer[*slot.Space]

	// for each loaded chunk, for each player, the clientside index if the
	// chunk is delivered to that player, else noDelivery
	clientsideCIs *PerChunk[*players.PerPlayer[int]]

	// for each player, the delivery rate limiter
	addBudget *players.PerPlayer[*addChunkBudget]

	// for each loaded chunk, its load request count (always > 0)
	loadCount *PerChunk[uint64]

	// for each loaded chunk, whether its current state is fully persisted
	saved *PerChunk[bool]

	// chunks requested from the loader but not yet ready
	loading map[coords.Chunk]*loadingChunk
}

// loadingChunk is the ephemeral state of a chunk between the load request
// and the ready callback.
type loadingChunk struct {
	abort     *AbortHandle
	loadCount uint64
	interest  map[players.Key]struct{}
}

// ReadyChunk is the loader's completion value for one requested chunk.
type ReadyChunk struct {
	CC        coords.Chunk
	Payload   *terrain.Chunk
	Persisted bool
}

// New constructs a manager with no chunks and no players.
func New() *Manager {
	return &Manager{
		chunks:           NewDirectory(),
		clientsideChunks: players.NewPerPlayer[*slot.Space](),
		clientsideCIs:    NewPerChunk[*players.PerPlayer[int]](),
		addBudget:        players.NewPerPlayer[*addChunkBudget](),
		loadCount:        NewPerChunk[uint64](),
		saved:            NewPerChunk[bool](),
		loading:          make(map[coords.Chunk]*loadingChunk),
	}
}

// Chunks returns the directory of loaded chunks. Read-only use.
func (m *Manager) Chunks() *Directory { return m.chunks }

// IsLoading reports whether cc has a pending load request.
func (m *Manager) IsLoading(cc coords.Chunk) bool {
	_, ok := m.loading[cc]
	return ok
}

// ClientsideIndex returns the clientside index of a loaded chunk for one
// player, if the chunk is currently delivered to that player.
func (m *Manager) ClientsideIndex(cc coords.Chunk, ci int, pk players.Key) (int, bool) {
	csi := m.clientsideCIs.Get(cc, ci).Get(pk)
	return csi, csi != noDelivery
}

// DrainEffects pops every queued effect in FIFO order and hands it to fn.
// Applying them in that order is part of the manager's contract; an
// AddChunkToClient must never be applied before the AddChunk that introduced
// its serverside index.
func (m *Manager) DrainEffects(fn func(Effect)) {
	for len(m.effects) > 0 {
		e := m.effects[0]
		m.effects = m.effects[1:]
		fn(e)
	}
}

// PendingEffects returns the number of undrained effects.
func (m *Manager) PendingEffects() int { return len(m.effects) }

// AddPlayer initializes delivery state for a newly connected player: an
// empty clientside index space, a fresh delivery budget seeded with the
// currently loaded set, and an absent-delivery entry for every loaded chunk.
//
// Draining the effect queue is not required after this call.
func (m *Manager) AddPlayer(pk players.Key) {
	m.clientsideChunks.Insert(pk, &slot.Space{})
	m.addBudget.Insert(pk, newAddChunkBudget(m.chunks))
	m.chunks.Each(func(cc coords.Chunk, ci int) {
		m.clientsideCIs.Get(cc, ci).Insert(pk, noDelivery)
	})
}

// RemovePlayer tears down a departing player. The caller supplies the
// player's current chunk interests; each is removed with its load-count side
// effects (possibly unloading chunks) but without per-client effects, since
// the session is gone and there is nothing to tell it.
func (m *Manager) RemovePlayer(pk players.Key, interests []coords.Chunk) {
	for _, cc := range interests {
		m.removeInterest(pk, cc, false)
	}

	m.clientsideChunks.Remove(pk)
	m.addBudget.Remove(pk)
	m.chunks.Each(func(cc coords.Chunk, ci int) {
		m.clientsideCIs.Get(cc, ci).Remove(pk)
	})
	for _, lc := range m.loading {
		delete(lc.interest, pk)
	}
}

// IncrLoadRequest increments the load request count for cc, creating the
// chunk in the loading state (and emitting RequestLoad) on the 0->1
// transition.
func (m *Manager) IncrLoadRequest(cc coords.Chunk) {
	if ci, ok := m.chunks.Lookup(cc); ok {
		m.loadCount.Set(cc, ci, m.loadCount.Get(cc, ci)+1)
		return
	}
	if lc, ok := m.loading[cc]; ok {
		lc.loadCount++
		return
	}
	abort := NewAbortHandle()
	m.loading[cc] = &loadingChunk{
		abort:     abort,
		loadCount: 1,
		interest:  make(map[players.Key]struct{}),
	}
	m.effects = append(m.effects, RequestLoad{CC: cc, Abort: abort})
}

// DecrLoadRequest decrements the load request count for cc. Must pair with a
// previous direct IncrLoadRequest call; decrementing an absent coordinate is
// a caller bug. A count reaching 0 unloads the chunk (if loaded) or cancels
// the pending load (if loading).
func (m *Manager) DecrLoadRequest(cc coords.Chunk) {
	if ci, ok := m.chunks.Lookup(cc); ok {
		count := m.loadCount.Get(cc, ci)
		if count > 1 {
			m.loadCount.Set(cc, ci, count-1)
			return
		}
		m.removeChunk(cc, ci)
		return
	}
	if lc, ok := m.loading[cc]; ok {
		if lc.loadCount > 1 {
			lc.loadCount--
			return
		}
		delete(m.loading, cc)
		lc.abort.Abort()
		return
	}
	panic(fmt.Sprintf("chunkmgr: load request decrement for %v, which is neither loaded nor loading", cc))
}

// AddInterest creates a chunk client interest between pk and cc, incrementing
// the load request count. If the chunk is already loaded, delivery to the
// player is attempted immediately, subject to that player's budget; if still
// loading, the player is marked for delivery once ready. Adding the same
// interest twice without an intervening RemoveInterest is a caller bug.
func (m *Manager) AddInterest(pk players.Key, cc coords.Chunk) {
	m.IncrLoadRequest(cc)

	if ci, ok := m.chunks.Lookup(cc); ok {
		if m.clientsideCIs.Get(cc, ci).Get(pk) != noDelivery {
			panic(fmt.Sprintf("chunkmgr: duplicate interest for %v in %v", pk, cc))
		}
		m.attemptDelivery(cc, ci, pk)
		return
	}
	// IncrLoadRequest guarantees a loading entry exists here.
	lc := m.loading[cc]
	if _, dup := lc.interest[pk]; dup {
		panic(fmt.Sprintf("chunkmgr: duplicate interest for %v in %v", pk, cc))
	}
	lc.interest[pk] = struct{}{}
}

// RemoveInterest destroys the chunk client interest between pk and cc,
// retracting a delivered chunk (emitting RemoveChunkFromClient), cancelling a
// queued delivery, or clearing a loading interest flag as appropriate, then
// decrements the load request count. Must pair with a previous AddInterest.
func (m *Manager) RemoveInterest(pk players.Key, cc coords.Chunk) {
	m.removeInterest(pk, cc, true)
}

// IncreaseBudget grants a player additional delivery budget, then delivers
// every queued chunk the budget now covers, in queue order.
func (m *Manager) IncreaseBudget(pk players.Key, amount int) {
	b := m.addBudget.Get(pk)
	b.grant(amount)
	for {
		cc, ci, ok := b.pollReady()
		if !ok {
			return
		}
		m.addChunkToClient(cc, ci, pk)
	}
}

// OnChunkReady transitions a chunk from loading to loaded: the load count
// and interest flags move out of the loading entry, a serverside index is
// assigned, AddChunk is emitted, and delivery is attempted for every
// interested player. A ready callback for a coordinate no longer in the
// loading set (a load that lost the race with its own cancellation) is
// ignored.
func (m *Manager) OnChunkReady(rc ReadyChunk) {
	lc, ok := m.loading[rc.CC]
	if !ok {
		return
	}
	delete(m.loading, rc.CC)

	ci := m.chunks.Insert(rc.CC)

	clientside := players.NewPerPlayer[int]()
	m.clientsideChunks.Each(func(pk players.Key, _ *slot.Space) {
		clientside.Insert(pk, noDelivery)
	})
	m.clientsideCIs.Add(rc.CC, ci, clientside)
	m.loadCount.Add(rc.CC, ci, lc.loadCount)
	m.saved.Add(rc.CC, ci, rc.Persisted)
	m.addBudget.Each(func(_ players.Key, b *addChunkBudget) {
		b.onChunkAdded(rc.CC, ci)
	})

	m.effects = append(m.effects, AddChunk{
		CC:        rc.CC,
		CI:        ci,
		Payload:   rc.Payload,
		Persisted: rc.Persisted,
	})

	for pk := range lc.interest {
		m.attemptDelivery(rc.CC, ci, pk)
	}
}

// MarkSaved records that a loaded chunk's current state is fully persisted.
//
// Draining the effect queue is not required after this call.
func (m *Manager) MarkSaved(cc coords.Chunk, ci int) {
	m.saved.Set(cc, ci, true)
}

// MarkUnsaved records that a loaded chunk has unpersisted modifications.
//
// Draining the effect queue is not required after this call.
func (m *Manager) MarkUnsaved(cc coords.Chunk, ci int) {
	m.saved.Set(cc, ci, false)
}

// IsSaved reports whether a loaded chunk is marked persisted.
func (m *Manager) IsSaved(cc coords.Chunk, ci int) bool {
	return m.saved.Get(cc, ci)
}

// UnsavedChunks calls fn for every loaded chunk not marked persisted.
func (m *Manager) UnsavedChunks(fn func(coords.Chunk, int)) {
	m.chunks.Each(func(cc coords.Chunk, ci int) {
		if !m.saved.Get(cc, ci) {
			fn(cc, ci)
		}
	})
}

// removeChunk unloads a loaded chunk whose load request count reached 0. No
// player may still have the chunk delivered; interests are always withdrawn
// first.
func (m *Manager) removeChunk(cc coords.Chunk, ci int) {
	persisted := m.saved.Remove(cc, ci)
	clientside := m.clientsideCIs.Remove(cc, ci)
	clientside.Each(func(pk players.Key, csi int) {
		if csi != noDelivery {
			panic(fmt.Sprintf("chunkmgr: unloading %v while still delivered to %v", cc, pk))
		}
	})
	m.loadCount.Remove(cc, ci)
	m.addBudget.Each(func(_ players.Key, b *addChunkBudget) {
		b.onChunkRemoved(cc, ci)
	})
	m.chunks.Remove(cc)
	m.effects = append(m.effects, RemoveChunk{CC: cc, CI: ci, Persisted: persisted})
}

// attemptDelivery delivers a loaded chunk to a player now if the player's
// budget allows it; otherwise the budget has queued the delivery and it will
// happen on a later IncreaseBudget.
func (m *Manager) attemptDelivery(cc coords.Chunk, ci int, pk players.Key) {
	if m.addBudget.Get(pk).mayDeliverNow(cc, ci) {
		m.addChunkToClient(cc, ci, pk)
	}
}

// addChunkToClient allocates a clientside index and emits AddChunkToClient.
func (m *Manager) addChunkToClient(cc coords.Chunk, ci int, pk players.Key) {
	csi := m.clientsideChunks.Get(pk).Acquire()
	m.clientsideCIs.Get(cc, ci).Set(pk, csi)
	m.effects = append(m.effects, AddChunkToClient{
		CC:           cc,
		CI:           ci,
		Player:       pk,
		ClientsideCI: csi,
	})
}

// removeInterest is RemoveInterest with control over whether per-client
// effects are emitted. emitClient is false when triggered by the player
// disconnecting: the delivery bookkeeping is still unwound, but there is no
// session left to notify.
func (m *Manager) removeInterest(pk players.Key, cc coords.Chunk, emitClient bool) {
	if ci, ok := m.chunks.Lookup(cc); ok {
		clientside := m.clientsideCIs.Get(cc, ci)
		if csi := clientside.Get(pk); csi != noDelivery {
			clientside.Set(pk, noDelivery)
			m.clientsideChunks.Get(pk).Release(csi)
			if emitClient {
				m.effects = append(m.effects, RemoveChunkFromClient{
					CC:           cc,
					CI:           ci,
					Player:       pk,
					ClientsideCI: csi,
				})
			}
		} else {
			// Not delivered yet, so it must be waiting in the player's
			// delivery queue.
			m.addBudget.Get(pk).cancelQueued(cc, ci)
		}
	} else if lc, ok := m.loading[cc]; ok {
		if _, present := lc.interest[pk]; !present {
			panic(fmt.Sprintf("chunkmgr: interest removal for %v in %v with no interest recorded", pk, cc))
		}
		delete(lc.interest, pk)
	}

	m.DecrLoadRequest(cc)
}
