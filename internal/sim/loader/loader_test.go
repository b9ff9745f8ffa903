package loader

import (
	"path/filepath"
	"testing"

	"voxelgate.dev/internal/persistence/chunkdb"
	"voxelgate.dev/internal/sim/chunkmgr"
	"voxelgate.dev/internal/sim/coords"
	"voxelgate.dev/internal/sim/terrain"
)

func TestLoader_SavedWinsOverGenerated(t *testing.T) {
	dir := t.TempDir()
	st, err := chunkdb.Open(filepath.Join(dir, "chunks.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	saved := coords.Chunk{X: 1, Y: 0, Z: 1}
	edited := terrain.Generate(99, saved)
	edited.Set(0, 0, 0, terrain.BlockDirt)
	if err := st.Put(saved, edited); err != nil {
		t.Fatalf("Put: %v", err)
	}

	out := make(chan chunkmgr.ReadyChunk, 4)
	l := New(st, 42, 2, out, nil)

	fresh := coords.Chunk{X: 5, Y: 0, Z: 5}
	l.Enqueue(Request{CC: saved, Abort: chunkmgr.NewAbortHandle()})
	l.Enqueue(Request{CC: fresh, Abort: chunkmgr.NewAbortHandle()})
	l.Close()

	got := map[coords.Chunk]chunkmgr.ReadyChunk{}
	for i := 0; i < 2; i++ {
		rc := <-out
		got[rc.CC] = rc
	}

	rc, ok := got[saved]
	if !ok || !rc.Persisted {
		t.Fatalf("saved chunk: ok=%v persisted=%v", ok, rc.Persisted)
	}
	if rc.Payload.At(0, 0, 0) != terrain.BlockDirt {
		t.Fatalf("saved payload not honored")
	}

	rc, ok = got[fresh]
	if !ok || rc.Persisted {
		t.Fatalf("fresh chunk: ok=%v persisted=%v", ok, rc.Persisted)
	}
	want := terrain.Generate(42, fresh)
	for i := range want.Blocks {
		if rc.Payload.Blocks[i] != want.Blocks[i] {
			t.Fatalf("generated payload differs at %d", i)
		}
	}
}

func TestLoader_AbortedRequestNotPosted(t *testing.T) {
	out := make(chan chunkmgr.ReadyChunk, 4)
	l := New(nil, 1, 1, out, nil)

	ah := chunkmgr.NewAbortHandle()
	ah.Abort()
	l.Enqueue(Request{CC: coords.Chunk{X: 0, Y: 0, Z: 0}, Abort: ah})
	l.Enqueue(Request{CC: coords.Chunk{X: 1, Y: 0, Z: 0}, Abort: chunkmgr.NewAbortHandle()})
	l.Close()

	rc := <-out
	if (rc.CC != coords.Chunk{X: 1, Y: 0, Z: 0}) {
		t.Fatalf("unexpected chunk %+v", rc.CC)
	}
	select {
	case extra := <-out:
		t.Fatalf("aborted request produced %+v", extra.CC)
	default:
	}
}

func TestLoader_NilStoreGenerates(t *testing.T) {
	out := make(chan chunkmgr.ReadyChunk, 1)
	l := New(nil, 7, 1, out, nil)
	cc := coords.Chunk{X: -1, Y: 0, Z: 3}
	l.Enqueue(Request{CC: cc, Abort: chunkmgr.NewAbortHandle()})
	l.Close()

	rc := <-out
	if rc.CC != cc || rc.Persisted {
		t.Fatalf("rc = %+v", rc)
	}
	if rc.Payload == nil {
		t.Fatalf("nil payload")
	}
}
