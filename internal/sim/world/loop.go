package world

import (
	"context"
	"time"

	"voxelgate.dev/internal/sim/chunkmgr"
)

// Run drives the world until ctx is cancelled or Stop is called. Channel
// receives only collect work; all state changes happen in step, at tick
// boundaries.
func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.Tuning.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingJoins []JoinRequest
	var pendingLeaves []leaveReq
	var pendingMsgs []Envelope
	var pendingReady []chunkmgr.ReadyChunk

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			pendingJoins = append(pendingJoins, req)
		case req := <-w.leave:
			pendingLeaves = append(pendingLeaves, req)
		case env := <-w.inbox:
			pendingMsgs = append(pendingMsgs, env)
		case rc := <-w.cfg.Ready:
			pendingReady = append(pendingReady, rc)
		case <-ticker.C:
			w.step(pendingJoins, pendingLeaves, pendingMsgs, pendingReady)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingMsgs = pendingMsgs[:0]
			pendingReady = pendingReady[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// StepOnce advances the world by a single tick with the same ordering as the
// server loop. Intended for deterministic tests.
func (w *World) StepOnce(joins []JoinRequest, leaves []leaveReq, msgs []Envelope, ready []chunkmgr.ReadyChunk) uint64 {
	tick := w.tick.Load()
	w.step(joins, leaves, msgs, ready)
	return tick
}

func (w *World) step(joins []JoinRequest, leaves []leaveReq, msgs []Envelope, ready []chunkmgr.ReadyChunk) {
	nowTick := w.tick.Load()

	// Sessions that overflowed during the previous tick's drain leave
	// first, as dropped connections.
	for _, pk := range w.kicked {
		if w.sessions.Contains(pk) {
			w.detach(pk, false)
		}
	}
	w.kicked = w.kicked[:0]

	for _, req := range leaves {
		w.handleLeave(req)
	}
	for _, req := range joins {
		w.handleJoin(req)
	}
	for _, env := range msgs {
		w.handleEnvelope(env)
	}
	for _, rc := range ready {
		w.mgr.OnChunkReady(rc)
	}

	w.drainEffects()

	if n := w.cfg.Tuning.SaveEveryTicks; n > 0 && nowTick > 0 && nowTick%uint64(n) == 0 {
		w.saveSweep()
	}

	w.tick.Add(1)
}
