package coords

import "testing"

func TestFloorDiv_NegativeRoundsDown(t *testing.T) {
	cases := []struct{ a, b, want int64 }{
		{0, 16, 0},
		{15, 16, 0},
		{16, 16, 1},
		{-1, 16, -1},
		{-16, 16, -1},
		{-17, 16, -2},
	}
	for _, c := range cases {
		if got := FloorDiv(c.a, c.b); got != c.want {
			t.Fatalf("FloorDiv(%d, %d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestMod_NonNegative(t *testing.T) {
	cases := []struct{ a, b, want int64 }{
		{0, 16, 0},
		{17, 16, 1},
		{-1, 16, 15},
		{-16, 16, 0},
	}
	for _, c := range cases {
		if got := Mod(c.a, c.b); got != c.want {
			t.Fatalf("Mod(%d, %d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestRange_EachCountContains(t *testing.T) {
	r := Range{Center: Chunk{X: 2, Z: -3}, R: 2, YMin: 0, YMax: 1}

	seen := map[Chunk]struct{}{}
	r.Each(func(c Chunk) {
		if _, dup := seen[c]; dup {
			t.Fatalf("coordinate %v visited twice", c)
		}
		seen[c] = struct{}{}
		if !r.Contains(c) {
			t.Fatalf("Each yielded %v but Contains rejects it", c)
		}
	})
	if len(seen) != r.Count() {
		t.Fatalf("Each visited %d coords, Count says %d", len(seen), r.Count())
	}
	if r.Contains(Chunk{X: 5, Y: 0, Z: -3}) {
		t.Fatalf("coordinate outside horizontal radius accepted")
	}
	if r.Contains(Chunk{X: 2, Y: 2, Z: -3}) {
		t.Fatalf("coordinate outside vertical span accepted")
	}
}

func TestChunkAt(t *testing.T) {
	c := ChunkAt(-1, 0, 33, 16)
	if (c != Chunk{X: -1, Y: 0, Z: 2}) {
		t.Fatalf("ChunkAt(-1, 0, 33, 16) = %v", c)
	}
}
