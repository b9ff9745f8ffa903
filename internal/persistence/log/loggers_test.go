package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestLifecycleLogger_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewLifecycleLogger(dir)

	entries := []LifecycleEntry{
		{Tick: 1, Event: "join", Agent: "a1"},
		{Tick: 1, Event: "load_start", CX: -2, CY: 0, CZ: 5},
		{Tick: 3, Event: "chunk_removed", CX: -2, CY: 0, CZ: 5, Saved: true},
	}
	for _, e := range entries {
		if err := l.WriteEntry(e); err != nil {
			t.Fatalf("WriteEntry: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "lifecycle", "lifecycle-*.jsonl.zst"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("glob: %v matches=%v", err, matches)
	}

	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()

	var got []LifecycleEntry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e LifecycleEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("Unmarshal %q: %v", sc.Text(), err)
		}
		got = append(got, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], entries[i])
		}
	}
}

func TestLifecycleLogger_NilSafe(t *testing.T) {
	var l *LifecycleLogger
	if err := l.WriteEntry(LifecycleEntry{Tick: 1}); err != nil {
		t.Fatalf("nil WriteEntry: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}
