// Package cache provides an unbounded, insert-only memo table.
//
// Store[K, V] records hits and misses and never evicts. It backs the glyph
// cache of the text renderer and the per-size face tables of the font
// rasterizer, whose entries must stay valid for the owner's lifetime.
//
//	s := cache.New[string, int]()
//	s.Put("key", 42)
//	v, ok := s.Get("key")
//
// # Thread Safety
//
// Store is not safe for concurrent use. Its owners run on the goroutine
// that owns the graphics context.
package cache
