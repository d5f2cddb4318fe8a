// Package renderer draws text on a GPU surface from glyphs that are
// rasterized on demand and packed into texture atlases.
//
// # Overview
//
// The module is split into small packages:
//   - font: the rasterization service (font loading, glyph bitmaps, metrics)
//   - gpu: the backend-neutral device interface consumed by the text core
//   - gpu/opengl: OpenGL 4.1 core device
//   - gpu/software: CPU device rendering into an image.RGBA
//   - text: glyph atlases, the glyph cache, the instance batch and the
//     text renderer that ties them together
//
// # Quick Start
//
//	dev := software.New(800, 600)
//	rast := font.NewOpenType()
//	tr, err := text.New(dev, rast, 800, 600, text.WithFontSize(24))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tr.Close()
//
//	tr.DrawString("Hello, atlas", 16, 16, text.Hex(0xFFFFFF))
//
// # Logging
//
// Nothing is logged by default. Call [SetLogger] to route diagnostics from
// every sub-package to a [log/slog] logger.
package renderer
