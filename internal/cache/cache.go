package cache

// Store maps keys to values. Entries are never evicted.
type Store[K comparable, V any] struct {
	entries map[K]V
	hits    uint64
	misses  uint64
}

// Stats describes a Store.
type Stats struct {
	Len    int
	Hits   uint64
	Misses uint64
}

// HitRate returns hits / (hits + misses), or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// New creates an empty store.
func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{entries: make(map[K]V)}
}

// Get returns the value for key and counts a hit or a miss.
func (s *Store[K, V]) Get(key K) (V, bool) {
	v, ok := s.entries[key]
	if ok {
		s.hits++
	} else {
		s.misses++
	}
	return v, ok
}

// Peek returns the value for key without touching the counters.
func (s *Store[K, V]) Peek(key K) (V, bool) {
	v, ok := s.entries[key]
	return v, ok
}

// Put stores value under key, replacing any previous value.
func (s *Store[K, V]) Put(key K, value V) {
	s.entries[key] = value
}

// GetOrCreate returns the value for key, calling create on a miss.
// A failed create stores nothing.
func (s *Store[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	if v, ok := s.Get(key); ok {
		return v, nil
	}
	v, err := create()
	if err != nil {
		return v, err
	}
	s.entries[key] = v
	return v, nil
}

// Len returns the number of entries.
func (s *Store[K, V]) Len() int {
	return len(s.entries)
}

// Stats returns the entry count and lookup counters.
func (s *Store[K, V]) Stats() Stats {
	return Stats{Len: len(s.entries), Hits: s.hits, Misses: s.misses}
}
