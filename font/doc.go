// Package font is the rasterization service consumed by the text renderer.
//
// A [Rasterizer] loads fonts by [Desc], reports line [Metrics] and turns a
// [GlyphKey] into a [Bitmap]. Characters the font has no glyph for are
// reported with a [*MissingGlyphError] that still carries a fallback bitmap
// (the font's .notdef glyph), so callers can draw a placeholder.
//
// [OpenType] is the default implementation. It rasterizes outlines with
// golang.org/x/image/font/opentype and, when enabled, reads PNG color strikes
// (emoji) through github.com/go-text/typesetting. The Go font families
// ("Go", "Go Mono") are always available; other families are registered
// with [WithFamily].
package font
