// Package opengl implements gpu.Device on OpenGL 4.1 core.
//
// The caller owns the context: create the window, make its context current
// on the calling goroutine and lock that goroutine to its OS thread before
// calling New. The device only issues GL calls; it never creates contexts.
package opengl

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/BergerAPI/renderer"
	"github.com/BergerAPI/renderer/gpu"
)

// Device is an OpenGL device. It tracks the bound program, vertex array
// and textures so redundant binds are skipped.
type Device struct {
	program  *program
	vao      *vertexArray
	textures map[int]*texture
}

var _ gpu.Device = (*Device)(nil)

// New loads the GL function pointers for the current context.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("opengl: init: %w", err)
	}
	renderer.Logger().Info("opengl: device ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))
	gl.Disable(gl.DEPTH_TEST)
	return &Device{textures: make(map[int]*texture)}, nil
}

// Viewport sets the GL viewport in framebuffer pixels.
func (d *Device) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Clear fills the framebuffer with c.
func (d *Device) Clear(c color.Color) {
	r, g, b, a := c.RGBA()
	gl.ClearColor(float32(r)/0xffff, float32(g)/0xffff, float32(b)/0xffff, float32(a)/0xffff)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// NewTexture implements gpu.Device.
func (d *Device) NewTexture(format gputypes.TextureFormat, width, height int) (gpu.Texture, error) {
	if format != gputypes.TextureFormatRGBA8Unorm {
		return nil, fmt.Errorf("%w: %v", gpu.ErrUnsupportedFormat, format)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: texture %dx%d", gpu.ErrInvalidSize, width, height)
	}

	t := &texture{dev: d, format: format, size: image.Pt(width, height)}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	d.forgetTextures()
	return t, nil
}

// NewBuffer implements gpu.Device.
func (d *Device) NewBuffer(binding gpu.BufferBinding, size int) (gpu.Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: buffer of %d bytes", gpu.ErrInvalidSize, size)
	}
	b := &buffer{target: bufferTarget(binding), size: size}
	gl.GenBuffers(1, &b.id)
	gl.BindBuffer(b.target, b.id)
	gl.BufferData(b.target, size, nil, gl.STREAM_DRAW)
	gl.BindBuffer(b.target, 0)
	return b, nil
}

// NewImmutableBuffer implements gpu.Device.
func (d *Device) NewImmutableBuffer(binding gpu.BufferBinding, data []byte) (gpu.Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty immutable buffer", gpu.ErrInvalidSize)
	}
	b := &buffer{target: bufferTarget(binding), size: len(data), immutable: true}
	gl.GenBuffers(1, &b.id)
	gl.BindBuffer(b.target, b.id)
	gl.BufferData(b.target, len(data), gl.Ptr(data), gl.STATIC_DRAW)
	gl.BindBuffer(b.target, 0)
	return b, nil
}

// NewVertexArray implements gpu.Device.
func (d *Device) NewVertexArray(layout gpu.VertexLayout, instances, indices gpu.Buffer) (gpu.VertexArray, error) {
	ib, ok := instances.(*buffer)
	if !ok {
		return nil, fmt.Errorf("opengl: foreign instance buffer %T", instances)
	}
	xb, ok := indices.(*buffer)
	if !ok {
		return nil, fmt.Errorf("opengl: foreign index buffer %T", indices)
	}

	va := &vertexArray{}
	gl.GenVertexArrays(1, &va.id)
	gl.BindVertexArray(va.id)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, xb.id)
	gl.BindBuffer(gl.ARRAY_BUFFER, ib.id)
	for _, a := range layout.Attributes {
		gl.EnableVertexAttribArray(a.Location)
		gl.VertexAttribPointer(a.Location, int32(a.Components), dataType(a.Type), a.Normalized,
			int32(layout.Stride), gl.PtrOffset(a.Offset))
		if layout.PerInstance {
			gl.VertexAttribDivisor(a.Location, 1)
		}
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
	d.vao = nil
	return va, nil
}

// BindProgram implements gpu.Device. Binding a program also applies its
// blend state; unbinding disables blending.
func (d *Device) BindProgram(p gpu.Program) {
	prog, _ := p.(*program)
	if prog == d.program {
		return
	}
	d.program = prog
	if prog == nil {
		gl.UseProgram(0)
		gl.Disable(gl.BLEND)
		return
	}
	gl.UseProgram(prog.id)
	gl.Enable(gl.BLEND)
	switch prog.blend {
	case gpu.BlendDualSource:
		gl.BlendFunc(gl.SRC1_COLOR, gl.ONE_MINUS_SRC1_COLOR)
	default:
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	}
}

// BindVertexArray implements gpu.Device.
func (d *Device) BindVertexArray(va gpu.VertexArray) {
	v, _ := va.(*vertexArray)
	if v == d.vao {
		return
	}
	d.vao = v
	if v == nil {
		gl.BindVertexArray(0)
		return
	}
	gl.BindVertexArray(v.id)
}

// BindTexture implements gpu.Device.
func (d *Device) BindTexture(unit int, t gpu.Texture) {
	tex, _ := t.(*texture)
	if d.textures[unit] == tex {
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	if tex == nil {
		gl.BindTexture(gl.TEXTURE_2D, 0)
		delete(d.textures, unit)
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, tex.id)
	d.textures[unit] = tex
}

// DrawElementsInstanced implements gpu.Device.
func (d *Device) DrawElementsInstanced(indexCount, instanceCount int) {
	gl.DrawElementsInstanced(gl.TRIANGLES, int32(indexCount), gl.UNSIGNED_INT, nil, int32(instanceCount))
}

// Release implements gpu.Device.
func (d *Device) Release() {
	d.BindProgram(nil)
	d.BindVertexArray(nil)
	for unit := range d.textures {
		d.BindTexture(unit, nil)
	}
}

// forgetTextures drops the bound texture cache after a call that
// rebinds unit 0 behind the cache's back.
func (d *Device) forgetTextures() {
	clear(d.textures)
}

func bufferTarget(b gpu.BufferBinding) uint32 {
	if b&gpu.BufferBindingIndices != 0 {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func dataType(t gpu.DataType) uint32 {
	switch t {
	case gpu.DataTypeInt16:
		return gl.SHORT
	case gpu.DataTypeUint8:
		return gl.UNSIGNED_BYTE
	default:
		return gl.FLOAT
	}
}

type texture struct {
	dev    *Device
	id     uint32
	format gputypes.TextureFormat
	size   image.Point
}

func (t *texture) Format() gputypes.TextureFormat { return t.format }
func (t *texture) Size() image.Point              { return t.size }

// Upload binds the texture to unit 0, writes the rectangle and unbinds.
func (t *texture) Upload(dst image.Rectangle, format gpu.PixelFormat, pixels []byte) error {
	if err := gpu.CheckUpload(t.size, dst, format, pixels); err != nil {
		return err
	}
	if len(pixels) == 0 {
		return nil
	}
	glFormat := uint32(gl.RGB)
	if format == gpu.PixelFormatRGBA {
		glFormat = gl.RGBA
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(dst.Min.X), int32(dst.Min.Y), int32(dst.Dx()), int32(dst.Dy()),
		glFormat, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	t.dev.forgetTextures()
	return nil
}

func (t *texture) Release() {
	if t.id == 0 {
		return
	}
	for unit, bound := range t.dev.textures {
		if bound == t {
			delete(t.dev.textures, unit)
		}
	}
	gl.DeleteTextures(1, &t.id)
	t.id = 0
}

type buffer struct {
	id        uint32
	target    uint32
	size      int
	immutable bool
}

func (b *buffer) Size() int { return b.size }

func (b *buffer) Upload(offset int, data []byte) error {
	if b.immutable {
		return fmt.Errorf("opengl: upload to immutable buffer")
	}
	if err := gpu.CheckBufferUpload(b.size, offset, data); err != nil {
		return fmt.Errorf("%w: %d bytes at %d into %d", err, len(data), offset, b.size)
	}
	if len(data) == 0 {
		return nil
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, b.id)
	gl.BufferSubData(gl.ARRAY_BUFFER, offset, len(data), gl.Ptr(data))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}

func (b *buffer) Release() {
	if b.id == 0 {
		return
	}
	gl.DeleteBuffers(1, &b.id)
	b.id = 0
}

type vertexArray struct {
	id uint32
}

func (v *vertexArray) Release() {
	if v.id == 0 {
		return
	}
	gl.DeleteVertexArrays(1, &v.id)
	v.id = 0
}

type program struct {
	dev      *Device
	id       uint32
	blend    gpu.BlendMode
	uniforms map[string]int32
}

// location caches uniform locations. Unknown names map to -1, which GL
// ignores.
func (p *program) location(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	p.uniforms[name] = loc
	return loc
}

// use makes p current for a uniform update and returns a func restoring
// the previously bound program.
func (p *program) use() func() {
	prev := p.dev.program
	if prev == p {
		return func() {}
	}
	gl.UseProgram(p.id)
	return func() {
		if prev == nil {
			gl.UseProgram(0)
		} else {
			gl.UseProgram(prev.id)
		}
	}
}

func (p *program) SetMat4(name string, m mgl32.Mat4) {
	defer p.use()()
	gl.UniformMatrix4fv(p.location(name), 1, false, &m[0])
}

func (p *program) SetVec2(name string, v mgl32.Vec2) {
	defer p.use()()
	gl.Uniform2f(p.location(name), v[0], v[1])
}

func (p *program) SetInt(name string, v int32) {
	defer p.use()()
	gl.Uniform1i(p.location(name), v)
}

func (p *program) Release() {
	if p.id == 0 {
		return
	}
	if p.dev.program == p {
		p.dev.BindProgram(nil)
	}
	gl.DeleteProgram(p.id)
	p.id = 0
}

// NewProgram implements gpu.Device. It compiles the GLSL sources.
func (d *Device) NewProgram(src gpu.ShaderSources) (gpu.Program, error) {
	vs, err := compileShader(src.Name, gpu.StageVertex, gl.VERTEX_SHADER, src.GLSL.Vertex)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(vs)

	fs, err := compileShader(src.Name, gpu.StageFragment, gl.FRAGMENT_SHADER, src.GLSL.Fragment)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(fs)

	id := gl.CreateProgram()
	gl.AttachShader(id, vs)
	gl.AttachShader(id, fs)
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(id, logLength, nil, gl.Str(log))
		gl.DeleteProgram(id)
		return nil, &gpu.ShaderError{
			Program: src.Name,
			Stage:   gpu.StageProgram,
			Err:     gpu.ErrShaderLink,
			Log:     strings.TrimRight(log, "\x00"),
		}
	}
	gl.DetachShader(id, vs)
	gl.DetachShader(id, fs)

	renderer.Logger().Debug("opengl: program linked", "name", src.Name, "id", id)
	return &program{dev: d, id: id, blend: src.Blend, uniforms: make(map[string]int32)}, nil
}

func compileShader(name string, stage gpu.ShaderStage, shaderType uint32, source string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, &gpu.ShaderError{
			Program: name,
			Stage:   stage,
			Err:     gpu.ErrShaderCompile,
			Log:     strings.TrimRight(log, "\x00"),
		}
	}
	return shader, nil
}
