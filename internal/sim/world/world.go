// Package world is the single-threaded authoritative runtime. It owns the
// chunk lifecycle manager, the loaded payloads, and all player sessions.
// All state must be accessed only from the world loop goroutine; transports
// talk to it over channels.
package world

import (
	stdlog "log"
	"sync/atomic"

	"voxelgate.dev/internal/persistence/chunkdb"
	plog "voxelgate.dev/internal/persistence/log"
	"voxelgate.dev/internal/protocol"
	"voxelgate.dev/internal/sim/chunkmgr"
	"voxelgate.dev/internal/sim/coords"
	"voxelgate.dev/internal/sim/loader"
	"voxelgate.dev/internal/sim/players"
	"voxelgate.dev/internal/sim/terrain"
	"voxelgate.dev/internal/sim/tuning"
)

// ChunkLoader services load requests off the world goroutine. Satisfied by
// *loader.Loader.
type ChunkLoader interface {
	Enqueue(loader.Request)
}

type Config struct {
	Tuning tuning.Tuning

	// Store may be nil; the world then never persists chunks.
	Store *chunkdb.Store

	Loader ChunkLoader
	// Ready carries finished loads back from the loader.
	Ready <-chan chunkmgr.ReadyChunk

	Logger    *stdlog.Logger
	Lifecycle *plog.LifecycleLogger
}

type World struct {
	cfg Config

	tick atomic.Uint64

	mgr      *chunkmgr.Manager
	keys     *players.KeySpace
	sessions *players.PerPlayer[*session]
	byAgent  map[string]players.Key

	// Payloads of loaded chunks, owned here; the manager only tracks
	// lifecycle state.
	payloads map[coords.Chunk]*terrain.Chunk

	// Agents that disconnected without BYE, reclaimable by resume token.
	parked map[string]parkedAgent

	join  chan JoinRequest
	leave chan leaveReq
	inbox chan Envelope
	stop  chan struct{}

	// Sessions whose outbound queue overflowed; detached at the next tick.
	kicked []players.Key

	nextAgentNum atomic.Uint64
}

type parkedAgent struct {
	agentID string
	name    string
	pos     [3]int64
}

// JoinRequest is a HELLO from a transport. Resp receives exactly one
// JoinResponse.
type JoinRequest struct {
	Name        string
	ResumeToken string
	Out         chan []byte
	Resp        chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
	// ErrCode is a protocol error code; empty on success.
	ErrCode string
}

// Envelope is one post-handshake client message, tagged with the session's
// agent identity by the transport.
type Envelope struct {
	AgentID string
	Move    *protocol.MoveMsg
	Accept  *protocol.AcceptChunksMsg
}

func New(cfg Config) *World {
	return &World{
		cfg:      cfg,
		mgr:      chunkmgr.New(),
		keys:     players.NewKeySpace(),
		sessions: players.NewPerPlayer[*session](),
		byAgent:  map[string]players.Key{},
		payloads: map[coords.Chunk]*terrain.Chunk{},
		parked:   map[string]parkedAgent{},
		join:     make(chan JoinRequest, 64),
		leave:    make(chan leaveReq, 64),
		inbox:    make(chan Envelope, 1024),
		stop:     make(chan struct{}),
	}
}

// Join hands a HELLO to the world loop.
func (w *World) Join(req JoinRequest) { w.join <- req }

type leaveReq struct {
	agentID  string
	graceful bool
}

// Leave reports that an agent's connection ended. Graceful is true for an
// explicit BYE; a dropped connection parks the agent for resume instead.
func (w *World) Leave(agentID string, graceful bool) {
	w.leave <- leaveReq{agentID: agentID, graceful: graceful}
}

// Submit hands a decoded client message to the world loop.
func (w *World) Submit(env Envelope) { w.inbox <- env }

func (w *World) Tick() uint64 { return w.tick.Load() }

func (w *World) TickRateHz() int { return w.cfg.Tuning.TickRateHz }

func (w *World) logf(format string, args ...any) {
	if w.cfg.Logger != nil {
		w.cfg.Logger.Printf(format, args...)
	}
}

func (w *World) lifecycle(e plog.LifecycleEntry) {
	e.Tick = w.tick.Load()
	if err := w.cfg.Lifecycle.WriteEntry(e); err != nil {
		w.logf("lifecycle log: %v", err)
	}
}
