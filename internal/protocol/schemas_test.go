package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"voxelgate.dev/internal/protocol"
	"voxelgate.dev/internal/sim/coords"
	"voxelgate.dev/internal/sim/terrain"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	roundtrip := func(s *jsonschema.Schema, msg any) {
		t.Helper()
		b, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	roundtrip(compile("hello.schema.json"), protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		AgentName:       "bot1",
		Auth:            &protocol.HelloAuth{ResumeToken: "c0ffee"},
	})

	roundtrip(compile("welcome.schema.json"), protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		AgentID:         "a1",
		ResumeToken:     "c0ffee",
		WorldParams: protocol.WorldParams{
			TickRateHz: 10,
			ChunkSize:  [3]int{terrain.Edge, terrain.Edge, terrain.Edge},
			ChunksY:    4,
			ViewRadius: 3,
			Seed:       42,
		},
	})

	roundtrip(compile("move.schema.json"), protocol.MoveMsg{
		Type:            protocol.TypeMove,
		ProtocolVersion: protocol.Version,
		Pos:             [3]int64{-17, 20, 33},
	})

	roundtrip(compile("accept_chunks.schema.json"), protocol.AcceptChunksMsg{
		Type:            protocol.TypeAcceptChunks,
		ProtocolVersion: protocol.Version,
		Amount:          8,
	})

	roundtrip(compile("add_chunk.schema.json"), protocol.AddChunkMsg{
		Type:            protocol.TypeAddChunk,
		ProtocolVersion: protocol.Version,
		Pos:             [3]int64{-2, 0, 5},
		ClientsideIdx:   0,
		Blocks:          protocol.EncodeBlocks(terrain.NewChunk()),
	})

	roundtrip(compile("remove_chunk.schema.json"), protocol.RemoveChunkMsg{
		Type:            protocol.TypeRemoveChunk,
		ProtocolVersion: protocol.Version,
		Pos:             [3]int64{-2, 0, 5},
		ClientsideIdx:   0,
	})
}

func TestDecodeBase(t *testing.T) {
	m, err := protocol.DecodeBase([]byte(`{"type":"MOVE","protocol_version":"1.0","pos":[1,2,3]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Type != protocol.TypeMove {
		t.Fatalf("type = %q", m.Type)
	}
}

func TestBlockCodecRoundtrip(t *testing.T) {
	c := terrain.Generate(42, coords.Chunk{X: -3, Y: 0, Z: 7})
	got, err := protocol.DecodeBlocks(protocol.EncodeBlocks(c))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := range c.Blocks {
		if got.Blocks[i] != c.Blocks[i] {
			t.Fatalf("block %d = %d, want %d", i, got.Blocks[i], c.Blocks[i])
		}
	}
	if _, err := protocol.DecodeBlocks("not-base64!!"); err == nil {
		t.Fatalf("expected error for bad base64")
	}
}
