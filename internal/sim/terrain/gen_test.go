package terrain

import (
	"testing"

	"voxelgate.dev/internal/sim/coords"
)

func TestGenerate_Deterministic(t *testing.T) {
	cc := coords.Chunk{X: -3, Y: 0, Z: 7}
	a := Generate(42, cc)
	b := Generate(42, cc)
	for i := range a.Blocks {
		if a.Blocks[i] != b.Blocks[i] {
			t.Fatalf("block %d differs across generations: %d vs %d", i, a.Blocks[i], b.Blocks[i])
		}
	}
}

func TestGenerate_SeedChangesOutput(t *testing.T) {
	cc := coords.Chunk{X: 0, Y: 0, Z: 0}
	a := Generate(1, cc)
	b := Generate(2, cc)
	same := true
	for i := range a.Blocks {
		if a.Blocks[i] != b.Blocks[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different seeds produced identical chunk")
	}
}

func TestGenerate_SurfaceLayering(t *testing.T) {
	ch := Generate(42, coords.Chunk{})
	for z := 0; z < Edge; z++ {
		for x := 0; x < Edge; x++ {
			sawGrass := false
			for y := Edge - 1; y >= 0; y-- {
				b := ch.At(x, y, z)
				if b == BlockAir {
					if sawGrass {
						t.Fatalf("air below grass at column (%d,%d)", x, z)
					}
					continue
				}
				if !sawGrass {
					if b != BlockGrass {
						t.Fatalf("topmost solid block at (%d,%d) is %d, want grass", x, z, b)
					}
					sawGrass = true
				}
			}
			if !sawGrass {
				t.Fatalf("column (%d,%d) in ground-level chunk has no surface", x, z)
			}
		}
	}
}
