package chunkdb

import (
	"path/filepath"
	"testing"

	"voxelgate.dev/internal/sim/coords"
	"voxelgate.dev/internal/sim/terrain"
)

func TestStore_PutGet(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(filepath.Join(dir, "chunks.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	cc := coords.Chunk{X: -4, Y: 1, Z: 9}

	got, err := st.Get(cc)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for never-saved chunk")
	}

	ch := terrain.Generate(7, cc)
	ch.Set(3, 5, 3, terrain.BlockStone)
	if err := st.Put(cc, ch); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err = st.Get(cc)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatalf("expected saved chunk")
	}
	for i := range ch.Blocks {
		if got.Blocks[i] != ch.Blocks[i] {
			t.Fatalf("block %d = %d, want %d", i, got.Blocks[i], ch.Blocks[i])
		}
	}

	ok, err := st.Has(cc)
	if err != nil || !ok {
		t.Fatalf("Has = %v, %v", ok, err)
	}
	ok, err = st.Has(coords.Chunk{X: 0, Y: 0, Z: 0})
	if err != nil || ok {
		t.Fatalf("Has(absent) = %v, %v", ok, err)
	}
}

func TestStore_PutOverwrites(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(filepath.Join(dir, "chunks.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	cc := coords.Chunk{X: 0, Y: 0, Z: 0}
	a := terrain.NewChunk()
	a.Set(0, 0, 0, terrain.BlockDirt)
	if err := st.Put(cc, a); err != nil {
		t.Fatalf("Put: %v", err)
	}
	b := terrain.NewChunk()
	b.Set(0, 0, 0, terrain.BlockGrass)
	if err := st.Put(cc, b); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := st.Get(cc)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.At(0, 0, 0) != terrain.BlockGrass {
		t.Fatalf("expected overwrite to win")
	}
	if n, err := st.Count(); err != nil || n != 1 {
		t.Fatalf("Count = %d, %v", n, err)
	}
}

func TestStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chunks.db")

	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	cc := coords.Chunk{X: 2, Y: 0, Z: -2}
	if err := st.Put(cc, terrain.Generate(1, cc)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()
	got, err := st.Get(cc)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatalf("expected chunk to survive reopen")
	}
}
