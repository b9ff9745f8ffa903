package players

import "testing"

func TestKeySpace_ReusedSlotGetsNewGeneration(t *testing.T) {
	s := NewKeySpace()
	a := s.Add()
	s.Remove(a)
	b := s.Add()

	if a.Index() != b.Index() {
		t.Fatalf("expected slot reuse, got %d then %d", a.Index(), b.Index())
	}
	if a == b {
		t.Fatalf("reused slot produced identical key %v", a)
	}
	if s.Contains(a) {
		t.Fatalf("stale key still reported current")
	}
	if !s.Contains(b) {
		t.Fatalf("current key not recognized")
	}
}

func TestPerPlayer_StaleKeyPanics(t *testing.T) {
	s := NewKeySpace()
	a := s.Add()
	s.Remove(a)
	b := s.Add()

	p := NewPerPlayer[int]()
	p.Insert(b, 7)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on stale-key access")
		}
	}()
	p.Get(a)
}

func TestPerPlayer_InsertRemoveEach(t *testing.T) {
	s := NewKeySpace()
	p := NewPerPlayer[string]()

	a := s.Add()
	b := s.Add()
	p.Insert(a, "a")
	p.Insert(b, "b")

	if got := p.Remove(a); got != "a" {
		t.Fatalf("Remove returned %q, want %q", got, "a")
	}
	if p.Contains(a) {
		t.Fatalf("removed entry still present")
	}

	seen := 0
	p.Each(func(k Key, v string) {
		seen++
		if k != b || v != "b" {
			t.Fatalf("Each yielded (%v, %q)", k, v)
		}
	})
	if seen != 1 {
		t.Fatalf("Each visited %d entries, want 1", seen)
	}
}
