package text

import (
	"encoding/binary"
	"fmt"
	"image/color"
	"math"

	"github.com/BergerAPI/renderer/gpu"
)

// InstanceSize is the encoded size of one Instance in bytes.
const InstanceSize = 36

// Instance flags.
const (
	// FlagMulticolor marks an instance whose atlas pixels carry color.
	FlagMulticolor uint8 = 1 << 0
)

// Instance is one glyph quad of a batch.
//
// Layout (little endian):
//
//	0  x, y                      float32 x2
//	8  left, top, width, height  int16 x4
//	16 uvLeft, uvBot, uvW, uvH   float32 x4
//	32 r, g, b, flags            uint8 x4
type Instance struct {
	X, Y float32

	Left, Top, Width, Height int16

	UVLeft, UVBot, UVWidth, UVHeight float32

	R, G, B uint8
	Flags   uint8
}

// instanceLayout describes Instance to the device.
var instanceLayout = gpu.VertexLayout{
	Stride:      InstanceSize,
	PerInstance: true,
	Attributes: []gpu.VertexAttribute{
		{Name: "pos", Location: 0, Type: gpu.DataTypeFloat32, Components: 2, Offset: 0},
		{Name: "glyph", Location: 1, Type: gpu.DataTypeInt16, Components: 4, Offset: 8},
		{Name: "uv", Location: 2, Type: gpu.DataTypeFloat32, Components: 4, Offset: 16},
		{Name: "textColor", Location: 3, Type: gpu.DataTypeUint8, Components: 4, Offset: 32, Normalized: true},
	},
}

// quadIndices are the uint32 indices of the two triangles of a quad.
// Vertex 0 is top right, 1 bottom right, 2 bottom left, 3 top left.
var quadIndices = [6]uint32{0, 1, 3, 1, 2, 3}

func quadIndexData() []byte {
	b := make([]byte, 0, len(quadIndices)*4)
	for _, i := range quadIndices {
		b = binary.LittleEndian.AppendUint32(b, i)
	}
	return b
}

// appendTo appends the encoded instance to b.
func (in *Instance) appendTo(b []byte) []byte {
	le := binary.LittleEndian
	b = le.AppendUint32(b, math.Float32bits(in.X))
	b = le.AppendUint32(b, math.Float32bits(in.Y))
	b = le.AppendUint16(b, uint16(in.Left))   //nolint:gosec // two's complement
	b = le.AppendUint16(b, uint16(in.Top))    //nolint:gosec // two's complement
	b = le.AppendUint16(b, uint16(in.Width))  //nolint:gosec // two's complement
	b = le.AppendUint16(b, uint16(in.Height)) //nolint:gosec // two's complement
	b = le.AppendUint32(b, math.Float32bits(in.UVLeft))
	b = le.AppendUint32(b, math.Float32bits(in.UVBot))
	b = le.AppendUint32(b, math.Float32bits(in.UVWidth))
	b = le.AppendUint32(b, math.Float32bits(in.UVHeight))
	return append(b, in.R, in.G, in.B, in.Flags)
}

// decodeInstance reads an instance encoded by appendTo.
func decodeInstance(b []byte) Instance {
	le := binary.LittleEndian
	f32 := func(off int) float32 { return math.Float32frombits(le.Uint32(b[off:])) }
	i16 := func(off int) int16 { return int16(le.Uint16(b[off:])) } //nolint:gosec // two's complement
	return Instance{
		X:        f32(0),
		Y:        f32(4),
		Left:     i16(8),
		Top:      i16(10),
		Width:    i16(12),
		Height:   i16(14),
		UVLeft:   f32(16),
		UVBot:    f32(20),
		UVWidth:  f32(24),
		UVHeight: f32(28),
		R:        b[32],
		G:        b[33],
		B:        b[34],
		Flags:    b[35],
	}
}

// Batch accumulates instances that share one atlas texture.
// Clear keeps the storage for the next frame.
type Batch struct {
	tex       gpu.Texture
	instances []Instance
	data      []byte
	capacity  int
}

// NewBatch creates a batch holding up to capacity instances.
func NewBatch(capacity int) *Batch {
	return &Batch{capacity: capacity}
}

// Add appends an instance for g at (x, y). The first instance after a
// Clear sets the batch texture; the caller flushes before adding a glyph
// from another atlas.
func (b *Batch) Add(x, y float32, c color.RGBA, g Glyph) error {
	if len(b.instances) >= b.capacity {
		return fmt.Errorf("%w: capacity %d", ErrBatchOverflow, b.capacity)
	}
	if len(b.instances) == 0 {
		b.tex = g.tex
	}
	in := Instance{
		X:        x,
		Y:        y,
		Left:     g.Left,
		Top:      g.Top,
		Width:    g.Width,
		Height:   g.Height,
		UVLeft:   g.UVLeft,
		UVBot:    g.UVBot,
		UVWidth:  g.UVWidth,
		UVHeight: g.UVHeight,
		R:        c.R,
		G:        c.G,
		B:        c.B,
	}
	if g.Multicolor {
		in.Flags |= FlagMulticolor
	}
	b.instances = append(b.instances, in)
	return nil
}

// Len returns the number of instances.
func (b *Batch) Len() int { return len(b.instances) }

// Cap returns the instance capacity.
func (b *Batch) Cap() int { return b.capacity }

// Empty reports whether the batch has no instances.
func (b *Batch) Empty() bool { return len(b.instances) == 0 }

// Texture returns the texture shared by the instances, or nil when empty.
func (b *Batch) Texture() gpu.Texture { return b.tex }

// Instances returns the accumulated instances. The slice is reused after
// Clear.
func (b *Batch) Instances() []Instance { return b.instances }

// Bytes encodes the instances for upload. The slice is reused by the next
// call.
func (b *Batch) Bytes() []byte {
	b.data = b.data[:0]
	for i := range b.instances {
		b.data = b.instances[i].appendTo(b.data)
	}
	return b.data
}

// Clear empties the batch and unsets its texture.
func (b *Batch) Clear() {
	b.instances = b.instances[:0]
	b.tex = nil
}
