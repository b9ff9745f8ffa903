package chunkmgr

import (
	"voxelgate.dev/internal/sim/coords"
	"voxelgate.dev/internal/sim/players"
	"voxelgate.dev/internal/sim/terrain"
)

// Effect is one unit of follow-up work the rest of the server must apply.
// The manager never performs outward side effects inline; it appends effects
// to its queue in call order, and consumers must drain and apply them in
// exactly that order. An AddChunkToClient, for example, is only ever queued
// after the AddChunk that introduced its serverside index.
type Effect interface {
	effect()
}

// RequestLoad asks the loader to produce the chunk's payload. Unless the
// handle is aborted first, the loader eventually hands a ReadyChunk back to
// the manager's owner, which calls OnChunkReady.
type RequestLoad struct {
	CC    coords.Chunk
	Abort *AbortHandle
}

// AddChunk announces that a chunk entered the loaded state and was assigned a
// serverside index. Persisted reports whether the payload came from the save
// store rather than the generator.
type AddChunk struct {
	CC        coords.Chunk
	CI        int
	Payload   *terrain.Chunk
	Persisted bool
}

// RemoveChunk announces that a chunk left the loaded state and its index was
// reclaimed. Persisted carries the chunk's saved flag at removal so the
// consumer can write back a dirty chunk before dropping its payload.
type RemoveChunk struct {
	CC        coords.Chunk
	CI        int
	Persisted bool
}

// AddChunkToClient announces that a loaded chunk was delivered to one player
// and assigned a clientside index in that player's own index space.
type AddChunkToClient struct {
	CC           coords.Chunk
	CI           int
	Player       players.Key
	ClientsideCI int
}

// RemoveChunkFromClient announces that a previously delivered chunk was
// retracted from one player and its clientside index reclaimed.
type RemoveChunkFromClient struct {
	CC           coords.Chunk
	CI           int
	Player       players.Key
	ClientsideCI int
}

func (RequestLoad) effect()           {}
func (AddChunk) effect()              {}
func (RemoveChunk) effect()           {}
func (AddChunkToClient) effect()      {}
func (RemoveChunkFromClient) effect() {}
