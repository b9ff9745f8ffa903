package world

import (
	plog "voxelgate.dev/internal/persistence/log"
	"voxelgate.dev/internal/protocol"
	"voxelgate.dev/internal/sim/chunkmgr"
	"voxelgate.dev/internal/sim/coords"
	"voxelgate.dev/internal/sim/loader"
)

// drainEffects applies every queued lifecycle effect, in order. The queue
// must be empty before the world acts on lifecycle state again.
func (w *World) drainEffects() {
	w.mgr.DrainEffects(func(e chunkmgr.Effect) {
		switch e := e.(type) {
		case chunkmgr.RequestLoad:
			w.cfg.Loader.Enqueue(loader.Request{CC: e.CC, Abort: e.Abort})
			w.lifecycle(plog.LifecycleEntry{Event: "load_start", CX: e.CC.X, CY: e.CC.Y, CZ: e.CC.Z})

		case chunkmgr.AddChunk:
			w.payloads[e.CC] = e.Payload
			w.lifecycle(plog.LifecycleEntry{Event: "chunk_added", CX: e.CC.X, CY: e.CC.Y, CZ: e.CC.Z, Saved: e.Persisted})

		case chunkmgr.RemoveChunk:
			if !e.Persisted {
				w.saveChunk(e.CC)
			}
			delete(w.payloads, e.CC)
			w.lifecycle(plog.LifecycleEntry{Event: "chunk_removed", CX: e.CC.X, CY: e.CC.Y, CZ: e.CC.Z, Saved: e.Persisted})

		case chunkmgr.AddChunkToClient:
			s := w.sessions.Get(e.Player)
			w.send(s, protocol.AddChunkMsg{
				Type:            protocol.TypeAddChunk,
				ProtocolVersion: protocol.Version,
				Pos:             [3]int64{e.CC.X, e.CC.Y, e.CC.Z},
				ClientsideIdx:   e.ClientsideCI,
				Blocks:          protocol.EncodeBlocks(w.payloads[e.CC]),
			})

		case chunkmgr.RemoveChunkFromClient:
			s := w.sessions.Get(e.Player)
			w.send(s, protocol.RemoveChunkMsg{
				Type:            protocol.TypeRemoveChunk,
				ProtocolVersion: protocol.Version,
				Pos:             [3]int64{e.CC.X, e.CC.Y, e.CC.Z},
				ClientsideIdx:   e.ClientsideCI,
			})
		}
	})
}

func (w *World) saveChunk(cc coords.Chunk) {
	if w.cfg.Store == nil {
		return
	}
	ch := w.payloads[cc]
	if ch == nil {
		return
	}
	if err := w.cfg.Store.Put(cc, ch); err != nil {
		w.logf("save chunk (%d,%d,%d): %v", cc.X, cc.Y, cc.Z, err)
	}
}

// saveSweep persists every loaded chunk not yet marked saved. Chunks that
// fail to write stay unsaved and are retried on the next sweep.
func (w *World) saveSweep() {
	if w.cfg.Store == nil {
		return
	}
	type entry struct {
		cc coords.Chunk
		ci int
	}
	var dirty []entry
	w.mgr.UnsavedChunks(func(cc coords.Chunk, ci int) {
		dirty = append(dirty, entry{cc: cc, ci: ci})
	})
	for _, d := range dirty {
		ch := w.payloads[d.cc]
		if ch == nil {
			continue
		}
		if err := w.cfg.Store.Put(d.cc, ch); err != nil {
			w.logf("save sweep (%d,%d,%d): %v", d.cc.X, d.cc.Y, d.cc.Z, err)
			continue
		}
		w.mgr.MarkSaved(d.cc, d.ci)
	}
	if len(dirty) > 0 {
		w.logf("save sweep persisted %d chunks", len(dirty))
	}
}
