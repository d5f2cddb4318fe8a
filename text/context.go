package text

import "github.com/BergerAPI/renderer/gpu"

// graphicsContext is the renderer's view of device binding state. Every
// GPU-touching path goes through it so that redundant texture binds are
// skipped and stale bindings are forgotten explicitly.
type graphicsContext struct {
	dev    gpu.Device
	active gpu.Texture
	binds  int
}

func newGraphicsContext(dev gpu.Device) *graphicsContext {
	return &graphicsContext{dev: dev}
}

// bindTexture binds t to unit 0 unless it is already the active texture.
func (c *graphicsContext) bindTexture(t gpu.Texture) {
	if t == c.active {
		return
	}
	c.dev.BindTexture(0, t)
	c.active = t
	c.binds++
}

// invalidate forgets the active texture. Uploads and atlas switches
// change unit 0 behind the context's back.
func (c *graphicsContext) invalidate() {
	c.active = nil
}
