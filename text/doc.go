// Package text draws strings with glyphs cached in GPU texture atlases.
//
// # Pipeline
//
// A [Renderer] resolves every character through its glyph cache. On a miss
// the glyph is rasterized by a [font.Rasterizer] and packed into the
// current [Atlas] with shelf packing; a full atlas is retired and a new one
// appended. Each resolved [Glyph] becomes one [Instance] in the [Batch],
// and [Renderer.Flush] uploads the batch and draws all instances with one
// instanced call.
//
//	tr, err := text.New(dev, font.NewOpenType(), 800, 600)
//	if err != nil {
//	    return err
//	}
//	defer tr.Close()
//
//	w := tr.Length("status: ok")
//	tr.DrawString("status: ok", 800-w, 0, text.Hex(0x66FF66))
//
// # Limits
//
// The glyph cache and the atlas list only grow. Every distinct glyph drawn
// during the renderer's lifetime keeps its atlas slot until Close.
//
// A batch holds Config.BatchCapacity instances. DrawString refuses strings
// that do not fit the remaining capacity with [ErrBatchOverflow].
//
// Renderer is not safe for concurrent use. Call it from the goroutine that
// owns the graphics context.
package text
