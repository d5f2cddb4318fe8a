package text

import "errors"

// Sentinel errors for the text package.
var (
	// ErrGlyphTooLarge is returned by an atlas for a bitmap larger than the
	// atlas itself. The glyph is drawn as an empty placement.
	ErrGlyphTooLarge = errors.New("text: glyph too large for atlas")

	// ErrAtlasFull is returned by an atlas with no room left for a bitmap.
	// The renderer recovers by opening a new atlas.
	ErrAtlasFull = errors.New("text: atlas is full")

	// ErrBatchOverflow is returned when instances would exceed the batch
	// capacity. Flush before drawing more.
	ErrBatchOverflow = errors.New("text: batch capacity exceeded")

	// ErrClosed is returned by a renderer after Close.
	ErrClosed = errors.New("text: renderer is closed")
)
