package cache

import (
	"errors"
	"testing"
)

func TestStoreGetPut(t *testing.T) {
	s := New[string, int]()
	if _, ok := s.Get("a"); ok {
		t.Fatal("Get on empty store returned ok")
	}
	s.Put("a", 1)
	v, ok := s.Get("a")
	if !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v, want 1, true", v, ok)
	}
	s.Put("a", 2)
	if v, _ := s.Peek("a"); v != 2 {
		t.Errorf("Peek(a) = %d, want 2", v)
	}

	st := s.Stats()
	if st.Len != 1 || st.Hits != 1 || st.Misses != 1 {
		t.Errorf("Stats() = %+v, want Len 1, Hits 1, Misses 1", st)
	}
	if got := st.HitRate(); got != 0.5 {
		t.Errorf("HitRate() = %v, want 0.5", got)
	}
}

func TestStoreNeverEvicts(t *testing.T) {
	s := New[int, int]()
	const n = 10000
	for i := range n {
		s.Put(i, i*i)
	}
	if s.Len() != n {
		t.Fatalf("Len() = %d, want %d", s.Len(), n)
	}
	if v, ok := s.Get(0); !ok || v != 0 {
		t.Errorf("first entry lost: %d, %v", v, ok)
	}
}

func TestStoreGetOrCreate(t *testing.T) {
	s := New[string, int]()
	calls := 0
	create := func() (int, error) {
		calls++
		return 7, nil
	}
	for range 3 {
		v, err := s.GetOrCreate("k", create)
		if err != nil || v != 7 {
			t.Fatalf("GetOrCreate() = %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	errBoom := errors.New("boom")
	if _, err := s.GetOrCreate("bad", func() (int, error) { return 0, errBoom }); !errors.Is(err, errBoom) {
		t.Errorf("GetOrCreate() error = %v, want %v", err, errBoom)
	}
	if _, ok := s.Peek("bad"); ok {
		t.Error("failed create was stored")
	}
}

func TestStatsHitRateEmpty(t *testing.T) {
	if got := (Stats{}).HitRate(); got != 0 {
		t.Errorf("HitRate() = %v, want 0", got)
	}
}
