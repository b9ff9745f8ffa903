package world

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	plog "voxelgate.dev/internal/persistence/log"
	"voxelgate.dev/internal/protocol"
	"voxelgate.dev/internal/sim/coords"
	"voxelgate.dev/internal/sim/players"
	"voxelgate.dev/internal/sim/terrain"
)

// OutQueueSize bounds the per-session outbound queue. ADD_CHUNK traffic is
// already capped by the client's delivery grants, so overflow means a client
// that stopped reading; the session is then detached.
const OutQueueSize = 256

type session struct {
	agentID string
	name    string
	token   string
	key     players.Key
	out     chan []byte

	pos       [3]int64
	interests map[coords.Chunk]struct{}

	// Set when the outbound queue overflowed; the loop detaches the
	// session at the next tick boundary.
	overflowed bool
}

func (w *World) handleJoin(req JoinRequest) {
	if req.Out == nil || req.Name == "" {
		if req.Resp != nil {
			req.Resp <- JoinResponse{ErrCode: protocol.ErrProtoBadRequest}
		}
		return
	}

	agentID := ""
	pos := [3]int64{0, int64(terrain.Edge), 0}
	name := req.Name

	if req.ResumeToken != "" {
		pa, ok := w.parked[req.ResumeToken]
		if !ok {
			if req.Resp != nil {
				req.Resp <- JoinResponse{ErrCode: protocol.ErrBadResumeToken}
			}
			return
		}
		delete(w.parked, req.ResumeToken)
		agentID = pa.agentID
		name = pa.name
		pos = pa.pos
	} else {
		agentID = fmt.Sprintf("A%06d", w.nextAgentNum.Add(1))
	}

	if _, taken := w.byAgent[agentID]; taken {
		if req.Resp != nil {
			req.Resp <- JoinResponse{ErrCode: protocol.ErrNameTaken}
		}
		return
	}

	pk := w.keys.Add()
	s := &session{
		agentID:   agentID,
		name:      name,
		token:     uuid.NewString(),
		key:       pk,
		out:       req.Out,
		pos:       pos,
		interests: map[coords.Chunk]struct{}{},
	}
	w.sessions.Insert(pk, s)
	w.byAgent[agentID] = pk
	w.mgr.AddPlayer(pk)

	w.lifecycle(plog.LifecycleEntry{Event: "join", Agent: agentID})
	w.logf("join %s (%s) as %s", agentID, name, pk)

	w.applyInterests(s)

	if req.Resp != nil {
		req.Resp <- JoinResponse{Welcome: w.buildWelcome(s)}
	}
}

func (w *World) buildWelcome(s *session) protocol.WelcomeMsg {
	t := w.cfg.Tuning
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		AgentID:         s.agentID,
		ResumeToken:     s.token,
		WorldParams: protocol.WorldParams{
			TickRateHz: t.TickRateHz,
			ChunkSize:  [3]int{terrain.Edge, terrain.Edge, terrain.Edge},
			ChunksY:    int(t.WorldChunksY),
			ViewRadius: t.ViewRadius,
			Seed:       t.Seed,
		},
	}
}

func (w *World) handleLeave(req leaveReq) {
	pk, ok := w.byAgent[req.agentID]
	if !ok {
		return
	}
	w.detach(pk, req.graceful)
}

func (w *World) detach(pk players.Key, graceful bool) {
	s := w.sessions.Get(pk)

	interests := make([]coords.Chunk, 0, len(s.interests))
	for cc := range s.interests {
		interests = append(interests, cc)
	}
	w.mgr.RemovePlayer(pk, interests)

	w.sessions.Remove(pk)
	w.keys.Remove(pk)
	delete(w.byAgent, s.agentID)

	if !graceful {
		w.parked[s.token] = parkedAgent{agentID: s.agentID, name: s.name, pos: s.pos}
	}

	w.lifecycle(plog.LifecycleEntry{Event: "leave", Agent: s.agentID})
	w.logf("leave %s (graceful=%v)", s.agentID, graceful)
}

func (w *World) handleEnvelope(env Envelope) {
	pk, ok := w.byAgent[env.AgentID]
	if !ok {
		return
	}
	s := w.sessions.Get(pk)

	switch {
	case env.Move != nil:
		s.pos = env.Move.Pos
		w.applyInterests(s)
	case env.Accept != nil:
		if env.Accept.Amount > 0 {
			w.mgr.IncreaseBudget(pk, int(env.Accept.Amount))
		}
	}
}

// desiredRange is the interest set implied by a player's position: a square
// of view_radius chunk columns around the player, over the full vertical
// world extent.
func (w *World) desiredRange(pos [3]int64) coords.Range {
	return coords.Range{
		Center: coords.ChunkAt(pos[0], pos[1], pos[2], terrain.Edge),
		R:      w.cfg.Tuning.ViewRadius,
		YMin:   0,
		YMax:   w.cfg.Tuning.WorldChunksY - 1,
	}
}

// applyInterests diffs the session's interest set against the range implied
// by its position: stale interests are withdrawn first, then new ones added.
func (w *World) applyInterests(s *session) {
	r := w.desiredRange(s.pos)
	for cc := range s.interests {
		if !r.Contains(cc) {
			w.mgr.RemoveInterest(s.key, cc)
			delete(s.interests, cc)
		}
	}
	r.Each(func(cc coords.Chunk) {
		if _, ok := s.interests[cc]; ok {
			return
		}
		s.interests[cc] = struct{}{}
		w.mgr.AddInterest(s.key, cc)
	})
}

// send queues a message for one session. On overflow the session is marked
// for detach; dropping an individual chunk message would desync the
// client's index bookkeeping.
func (w *World) send(s *session, v any) {
	if s.overflowed {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		w.logf("marshal to %s: %v", s.agentID, err)
		return
	}
	select {
	case s.out <- b:
	default:
		s.overflowed = true
		w.kicked = append(w.kicked, s.key)
		w.logf("out queue overflow for %s, detaching", s.agentID)
	}
}
