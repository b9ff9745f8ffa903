package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"voxelgate.dev/internal/protocol"
	"voxelgate.dev/internal/sim/world"
)

type Server struct {
	world *world.World
	log   *log.Logger

	msgsPerSec float64
	msgBurst   int

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, msgsPerSec float64, msgBurst int, logger *log.Logger) *Server {
	if msgsPerSec <= 0 {
		msgsPerSec = 30
	}
	if msgBurst <= 0 {
		msgBurst = 60
	}
	s := &Server{
		world:      w,
		log:        logger,
		msgsPerSec: msgsPerSec,
		msgBurst:   msgBurst,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		agentID, out := s.handshake(conn)
		if agentID == "" {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		limiter := rate.NewLimiter(rate.Limit(s.msgsPerSec), s.msgBurst)
		graceful := false

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			if !limiter.Allow() {
				// The writer goroutine owns data frames at this point, so
				// only control frames may be written from the reader side.
				_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, protocol.ErrRateLimit), time.Now().Add(time.Second))
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.ProtocolVersion != protocol.Version {
				continue
			}
			switch base.Type {
			case protocol.TypeMove:
				var m protocol.MoveMsg
				if err := json.Unmarshal(msg, &m); err != nil {
					continue
				}
				s.world.Submit(world.Envelope{AgentID: agentID, Move: &m})
			case protocol.TypeAcceptChunks:
				var m protocol.AcceptChunksMsg
				if err := json.Unmarshal(msg, &m); err != nil {
					continue
				}
				s.world.Submit(world.Envelope{AgentID: agentID, Accept: &m})
			case protocol.TypeBye:
				graceful = true
			}
			if graceful {
				break
			}
		}

		s.world.Leave(agentID, graceful)
	}
}

func (s *Server) handshake(conn *websocket.Conn) (agentID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", nil
	}
	if hello.AgentName == "" {
		hello.AgentName = "agent"
	}

	resumeToken := ""
	if hello.Auth != nil {
		resumeToken = strings.TrimSpace(hello.Auth.ResumeToken)
	}

	out = make(chan []byte, world.OutQueueSize)
	respCh := make(chan world.JoinResponse, 1)
	s.world.Join(world.JoinRequest{
		Name:        hello.AgentName,
		ResumeToken: resumeToken,
		Out:         out,
		Resp:        respCh,
	})
	resp := <-respCh

	if resp.ErrCode != "" {
		s.closeWith(conn, resp.ErrCode, "join rejected")
		return "", nil
	}

	if err := writeJSON(conn, resp.Welcome); err != nil {
		return "", nil
	}
	return resp.Welcome.AgentID, out
}

// closeWith sends an ERROR frame followed by a close frame. It writes a data
// frame directly, so it must only be called before the writer goroutine for
// the connection has started.
func (s *Server) closeWith(conn *websocket.Conn, code, msg string) {
	_ = writeJSON(conn, protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         msg,
	})
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, code), time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
