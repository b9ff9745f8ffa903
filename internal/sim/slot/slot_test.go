package slot

import "testing"

func TestSpace_AcquiresSmallestFree(t *testing.T) {
	var s Space
	for want := 0; want < 4; want++ {
		if got := s.Acquire(); got != want {
			t.Fatalf("fresh acquire = %d, want %d", got, want)
		}
	}

	s.Release(1)
	s.Release(3)
	if got := s.Acquire(); got != 1 {
		t.Fatalf("acquire after releasing {1,3} = %d, want 1", got)
	}
	if got := s.Acquire(); got != 3 {
		t.Fatalf("second acquire = %d, want 3", got)
	}
	if got := s.Acquire(); got != 4 {
		t.Fatalf("acquire with no free slots = %d, want 4", got)
	}
}

func TestSpace_LenAndInUse(t *testing.T) {
	var s Space
	a := s.Acquire()
	b := s.Acquire()
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	s.Release(a)
	if s.InUse(a) {
		t.Fatalf("released index still reported in use")
	}
	if !s.InUse(b) {
		t.Fatalf("acquired index not reported in use")
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
}

func TestSpace_ReleaseUnusedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic releasing an unused index")
		}
	}()
	var s Space
	s.Release(0)
}
