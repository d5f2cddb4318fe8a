// Package software implements gpu.Device on the CPU.
//
// Draws run the CPUShader of the bound program once per instance and
// composite into an *image.RGBA target. WGSL sources are compiled with
// naga when a program is created, so shader errors surface the same way
// as on a hardware backend. The device counts binds, uploads and draws
// for inspection in tests and tools.
package software

import (
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"golang.org/x/image/draw"

	"github.com/BergerAPI/renderer"
	"github.com/BergerAPI/renderer/gpu"
)

// Stats counts device operations since creation or the last ResetStats.
type Stats struct {
	ProgramBinds   int
	TextureBinds   int
	TextureUploads int
	BufferUploads  int
	Draws          int
	Instances      int
}

// Device renders into an RGBA image.
type Device struct {
	target   *image.RGBA
	program  *program
	vao      *vertexArray
	textures map[int]*texture
	stats    Stats
}

var _ gpu.Device = (*Device)(nil)

// New creates a device with a width x height transparent target.
func New(width, height int) *Device {
	return &Device{
		target:   image.NewRGBA(image.Rect(0, 0, width, height)),
		textures: make(map[int]*texture),
	}
}

// Target returns the image draws are composited into.
func (d *Device) Target() *image.RGBA { return d.target }

// Stats returns the operation counters.
func (d *Device) Stats() Stats { return d.stats }

// ResetStats zeroes the operation counters.
func (d *Device) ResetStats() { d.stats = Stats{} }

// Clear fills the target with c.
func (d *Device) Clear(c color.Color) {
	draw.Draw(d.target, d.target.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// NewTexture implements gpu.Device.
func (d *Device) NewTexture(format gputypes.TextureFormat, width, height int) (gpu.Texture, error) {
	if format != gputypes.TextureFormatRGBA8Unorm {
		return nil, fmt.Errorf("%w: %v", gpu.ErrUnsupportedFormat, format)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: texture %dx%d", gpu.ErrInvalidSize, width, height)
	}
	return &texture{
		dev:    d,
		format: format,
		img:    image.NewNRGBA(image.Rect(0, 0, width, height)),
	}, nil
}

// NewBuffer implements gpu.Device.
func (d *Device) NewBuffer(_ gpu.BufferBinding, size int) (gpu.Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: buffer of %d bytes", gpu.ErrInvalidSize, size)
	}
	return &buffer{dev: d, data: make([]byte, size)}, nil
}

// NewImmutableBuffer implements gpu.Device.
func (d *Device) NewImmutableBuffer(_ gpu.BufferBinding, data []byte) (gpu.Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty immutable buffer", gpu.ErrInvalidSize)
	}
	return &buffer{dev: d, data: append([]byte(nil), data...), immutable: true}, nil
}

// NewProgram implements gpu.Device. The WGSL module, when present, must
// compile; the CPU shader must be set.
func (d *Device) NewProgram(src gpu.ShaderSources) (gpu.Program, error) {
	if src.WGSL != "" {
		if _, err := naga.Compile(src.WGSL); err != nil {
			return nil, &gpu.ShaderError{
				Program: src.Name,
				Stage:   gpu.StageProgram,
				Err:     gpu.ErrShaderCompile,
				Log:     err.Error(),
			}
		}
	}
	if src.CPU == nil {
		return nil, &gpu.ShaderError{
			Program: src.Name,
			Stage:   gpu.StageProgram,
			Err:     gpu.ErrShaderLink,
			Log:     "no CPU entry point",
		}
	}
	renderer.Logger().Debug("software: program created", "name", src.Name)
	return &program{
		shader: src.CPU,
		blend:  src.Blend,
		mat4:   make(map[string]mgl32.Mat4),
		vec2:   make(map[string]mgl32.Vec2),
		ints:   make(map[string]int32),
	}, nil
}

// NewVertexArray implements gpu.Device.
func (d *Device) NewVertexArray(layout gpu.VertexLayout, instances, indices gpu.Buffer) (gpu.VertexArray, error) {
	ib, ok := instances.(*buffer)
	if !ok {
		return nil, fmt.Errorf("software: foreign instance buffer %T", instances)
	}
	xb, ok := indices.(*buffer)
	if !ok {
		return nil, fmt.Errorf("software: foreign index buffer %T", indices)
	}
	if layout.Stride <= 0 {
		return nil, fmt.Errorf("%w: vertex stride %d", gpu.ErrInvalidSize, layout.Stride)
	}
	return &vertexArray{layout: layout, instances: ib, indices: xb}, nil
}

// BindProgram implements gpu.Device.
func (d *Device) BindProgram(p gpu.Program) {
	prog, _ := p.(*program)
	if prog == d.program {
		return
	}
	d.program = prog
	d.stats.ProgramBinds++
}

// BindVertexArray implements gpu.Device.
func (d *Device) BindVertexArray(va gpu.VertexArray) {
	d.vao, _ = va.(*vertexArray)
}

// BindTexture implements gpu.Device.
func (d *Device) BindTexture(unit int, t gpu.Texture) {
	tex, _ := t.(*texture)
	if tex == nil {
		delete(d.textures, unit)
		return
	}
	d.textures[unit] = tex
	d.stats.TextureBinds++
}

// BoundTexture returns the texture bound to unit, or nil.
func (d *Device) BoundTexture(unit int) gpu.Texture {
	if t, ok := d.textures[unit]; ok {
		return t
	}
	return nil
}

// DrawElementsInstanced implements gpu.Device. Each instance is drawn as
// one quad, so indexCount must be 6.
func (d *Device) DrawElementsInstanced(indexCount, instanceCount int) {
	log := renderer.Logger()
	if d.program == nil || d.vao == nil {
		log.Warn("software: draw without program or vertex array")
		return
	}
	if indexCount != 6 {
		log.Warn("software: only indexed quads are supported", "indices", indexCount)
		return
	}
	tex := d.textures[0]
	if tex == nil {
		log.Warn("software: draw without texture on unit 0")
		return
	}

	stride := d.vao.layout.Stride
	data := d.vao.instances.data
	if instanceCount*stride > len(data) {
		log.Warn("software: instance count exceeds buffer", "instances", instanceCount, "capacity", len(data)/stride)
		instanceCount = len(data) / stride
	}
	for i := range instanceCount {
		d.program.shader.ShadeInstance(d.target, tex.img, data[i*stride:(i+1)*stride], d.program)
	}
	d.stats.Draws++
	d.stats.Instances += instanceCount
}

// Release implements gpu.Device.
func (d *Device) Release() {
	d.program = nil
	d.vao = nil
	clear(d.textures)
}

type texture struct {
	dev    *Device
	format gputypes.TextureFormat
	img    *image.NRGBA
}

func (t *texture) Format() gputypes.TextureFormat { return t.format }
func (t *texture) Size() image.Point              { return t.img.Bounds().Size() }

// Image returns the texture contents.
func (t *texture) Image() *image.NRGBA { return t.img }

func (t *texture) Upload(dst image.Rectangle, format gpu.PixelFormat, pixels []byte) error {
	if t.img == nil {
		return fmt.Errorf("software: upload to released texture")
	}
	if err := gpu.CheckUpload(t.Size(), dst, format, pixels); err != nil {
		return err
	}
	bpp := format.BytesPerPixel()
	w := dst.Dx()
	for y := range dst.Dy() {
		row := pixels[y*w*bpp : (y+1)*w*bpp]
		off := t.img.PixOffset(dst.Min.X, dst.Min.Y+y)
		for x := range w {
			px := t.img.Pix[off+x*4 : off+x*4+4 : off+x*4+4]
			px[0], px[1], px[2] = row[x*bpp], row[x*bpp+1], row[x*bpp+2]
			if bpp == 4 {
				px[3] = row[x*bpp+3]
			} else {
				px[3] = 0xff
			}
		}
	}
	t.dev.stats.TextureUploads++
	return nil
}

func (t *texture) Release() {
	for unit, bound := range t.dev.textures {
		if bound == t {
			delete(t.dev.textures, unit)
		}
	}
	t.img = nil
}

type buffer struct {
	dev       *Device
	data      []byte
	immutable bool
}

func (b *buffer) Size() int { return len(b.data) }

// Bytes returns the buffer contents.
func (b *buffer) Bytes() []byte { return b.data }

func (b *buffer) Upload(offset int, data []byte) error {
	if b.immutable {
		return fmt.Errorf("software: upload to immutable buffer")
	}
	if err := gpu.CheckBufferUpload(len(b.data), offset, data); err != nil {
		return fmt.Errorf("%w: %d bytes at %d into %d", err, len(data), offset, len(b.data))
	}
	copy(b.data[offset:], data)
	b.dev.stats.BufferUploads++
	return nil
}

func (b *buffer) Release() { b.data = nil }

type vertexArray struct {
	layout    gpu.VertexLayout
	instances *buffer
	indices   *buffer
}

func (v *vertexArray) Release() {}

type program struct {
	shader gpu.CPUShader
	blend  gpu.BlendMode
	mat4   map[string]mgl32.Mat4
	vec2   map[string]mgl32.Vec2
	ints   map[string]int32
}

func (p *program) SetMat4(name string, m mgl32.Mat4) { p.mat4[name] = m }
func (p *program) SetVec2(name string, v mgl32.Vec2) { p.vec2[name] = v }
func (p *program) SetInt(name string, v int32)       { p.ints[name] = v }
func (p *program) Mat4(name string) mgl32.Mat4       { return p.mat4[name] }
func (p *program) Vec2(name string) mgl32.Vec2       { return p.vec2[name] }
func (p *program) Release()                          {}
