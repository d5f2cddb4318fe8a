package text

import (
	"errors"
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/BergerAPI/renderer/font"
	"github.com/BergerAPI/renderer/gpu"
)

// recordingDevice is a gpu.Device that records every call.
type recordingDevice struct {
	textures  []*fakeTexture
	buffers   []*fakeBuffer
	programs  []*fakeProgram
	vaos      []*fakeVertexArray
	texBinds  []gpu.Texture
	draws     []recordedDraw
	program   *fakeProgram
	vao       *fakeVertexArray
	bound     gpu.Texture
	failProg  error
	failVAO   error
	failTexAt int // fail the NewTexture call with this 1-based index
}

type recordedDraw struct {
	tex       gpu.Texture
	instances []Instance
}

func newRecordingDevice() *recordingDevice {
	return &recordingDevice{}
}

func (d *recordingDevice) NewTexture(format gputypes.TextureFormat, w, h int) (gpu.Texture, error) {
	if d.failTexAt > 0 && len(d.textures)+1 == d.failTexAt {
		return nil, errors.New("fake: out of texture memory")
	}
	t := &fakeTexture{size: image.Pt(w, h), format: format}
	d.textures = append(d.textures, t)
	return t, nil
}

func (d *recordingDevice) NewBuffer(_ gpu.BufferBinding, size int) (gpu.Buffer, error) {
	b := &fakeBuffer{data: make([]byte, size)}
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *recordingDevice) NewImmutableBuffer(_ gpu.BufferBinding, data []byte) (gpu.Buffer, error) {
	b := &fakeBuffer{data: append([]byte(nil), data...)}
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *recordingDevice) NewProgram(src gpu.ShaderSources) (gpu.Program, error) {
	if d.failProg != nil {
		return nil, d.failProg
	}
	p := &fakeProgram{
		src:  src,
		mat4: make(map[string]mgl32.Mat4),
		vec2: make(map[string]mgl32.Vec2),
		ints: make(map[string]int32),
	}
	d.programs = append(d.programs, p)
	return p, nil
}

func (d *recordingDevice) NewVertexArray(layout gpu.VertexLayout, instances, _ gpu.Buffer) (gpu.VertexArray, error) {
	if d.failVAO != nil {
		return nil, d.failVAO
	}
	va := &fakeVertexArray{layout: layout, instances: instances.(*fakeBuffer)}
	d.vaos = append(d.vaos, va)
	return va, nil
}

func (d *recordingDevice) BindProgram(p gpu.Program) {
	d.program, _ = p.(*fakeProgram)
}

func (d *recordingDevice) BindVertexArray(va gpu.VertexArray) {
	d.vao, _ = va.(*fakeVertexArray)
}

func (d *recordingDevice) BindTexture(_ int, t gpu.Texture) {
	d.bound = t
	d.texBinds = append(d.texBinds, t)
}

func (d *recordingDevice) DrawElementsInstanced(indexCount, instanceCount int) {
	if indexCount != 6 || d.program == nil || d.vao == nil {
		panic("fake: draw without a complete pipeline")
	}
	draw := recordedDraw{tex: d.bound}
	data := d.vao.instances.data
	for i := range instanceCount {
		draw.instances = append(draw.instances, decodeInstance(data[i*InstanceSize:]))
	}
	d.draws = append(d.draws, draw)
}

func (d *recordingDevice) Release() {}

// uploads returns the total number of texture uploads.
func (d *recordingDevice) uploads() int {
	n := 0
	for _, t := range d.textures {
		n += len(t.uploads)
	}
	return n
}

// live returns the number of unreleased resources.
func (d *recordingDevice) live() int {
	n := 0
	for _, t := range d.textures {
		if !t.released {
			n++
		}
	}
	for _, b := range d.buffers {
		if !b.released {
			n++
		}
	}
	for _, p := range d.programs {
		if !p.released {
			n++
		}
	}
	for _, v := range d.vaos {
		if !v.released {
			n++
		}
	}
	return n
}

type fakeTexture struct {
	size     image.Point
	format   gputypes.TextureFormat
	uploads  []image.Rectangle
	released bool
}

func (t *fakeTexture) Format() gputypes.TextureFormat { return t.format }
func (t *fakeTexture) Size() image.Point              { return t.size }
func (t *fakeTexture) Release()                       { t.released = true }

func (t *fakeTexture) Upload(dst image.Rectangle, format gpu.PixelFormat, pixels []byte) error {
	if err := gpu.CheckUpload(t.size, dst, format, pixels); err != nil {
		return err
	}
	t.uploads = append(t.uploads, dst)
	return nil
}

type fakeBuffer struct {
	data     []byte
	released bool
}

func (b *fakeBuffer) Size() int { return len(b.data) }
func (b *fakeBuffer) Release()  { b.released = true }

func (b *fakeBuffer) Upload(offset int, data []byte) error {
	if err := gpu.CheckBufferUpload(len(b.data), offset, data); err != nil {
		return err
	}
	copy(b.data[offset:], data)
	return nil
}

type fakeProgram struct {
	src      gpu.ShaderSources
	mat4     map[string]mgl32.Mat4
	vec2     map[string]mgl32.Vec2
	ints     map[string]int32
	released bool
}

func (p *fakeProgram) SetMat4(name string, m mgl32.Mat4) { p.mat4[name] = m }
func (p *fakeProgram) SetVec2(name string, v mgl32.Vec2) { p.vec2[name] = v }
func (p *fakeProgram) SetInt(name string, v int32)       { p.ints[name] = v }
func (p *fakeProgram) Release()                          { p.released = true }

type fakeVertexArray struct {
	layout    gpu.VertexLayout
	instances *fakeBuffer
	released  bool
}

func (v *fakeVertexArray) Release() { v.released = true }

// countingRasterizer serves fixed bitmaps and counts Glyph calls.
// Characters without a bitmap or error are reported missing.
type countingRasterizer struct {
	glyphs  map[rune]font.Bitmap
	fail    map[rune]error
	calls   map[rune]int
	metrics font.Metrics
	loadErr error
}

func newCountingRasterizer() *countingRasterizer {
	return &countingRasterizer{
		glyphs:  make(map[rune]font.Bitmap),
		fail:    make(map[rune]error),
		calls:   make(map[rune]int),
		metrics: font.Metrics{LineHeight: 20, AverageAdvance: 6, Ascent: 15, Descent: 5},
	}
}

func (f *countingRasterizer) LoadFont(font.Desc, font.Size) (font.Key, error) {
	return 1, f.loadErr
}

func (f *countingRasterizer) Metrics(font.Key, font.Size) (font.Metrics, error) {
	return f.metrics, nil
}

func (f *countingRasterizer) Glyph(key font.GlyphKey) (font.Bitmap, error) {
	f.calls[key.Char]++
	if err, ok := f.fail[key.Char]; ok {
		return font.Bitmap{}, err
	}
	if bmp, ok := f.glyphs[key.Char]; ok {
		return bmp, nil
	}
	notdef := bitmap(8, 12)
	return notdef, &font.MissingGlyphError{Char: key.Char, Glyph: notdef}
}

func (f *countingRasterizer) totalCalls() int {
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// bitmap returns a monochrome w x h bitmap with full coverage.
func bitmap(w, h int) font.Bitmap {
	px := make([]byte, w*h*3)
	for i := range px {
		px[i] = 0xff
	}
	return font.Bitmap{Width: w, Height: h, Top: h, Format: font.FormatRGB, Pixels: px}
}
