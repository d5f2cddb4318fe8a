package gpu

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// ShaderSources holds one program in every dialect a device may need.
// A device uses the dialects it understands and ignores the others.
type ShaderSources struct {
	Name string

	// GLSL is OpenGL 3.3+ core source.
	GLSL GLSLSources

	// WGSL is a WebGPU shader module with vs_main and fs_main entry points.
	WGSL string

	// CPU runs the program on the software device.
	CPU CPUShader

	Blend BlendMode
}

// GLSLSources is a vertex and fragment shader pair.
type GLSLSources struct {
	Vertex   string
	Fragment string
}

// BlendMode selects how fragments combine with the framebuffer.
type BlendMode uint8

const (
	// BlendAlpha is source-over with straight alpha.
	BlendAlpha BlendMode = iota

	// BlendDualSource weights source and destination per channel with a
	// second fragment output, for subpixel glyph masks.
	BlendDualSource
)

// CPUShader is the software rendition of a program. ShadeInstance draws
// one instance record into dst, sampling tex.
type CPUShader interface {
	ShadeInstance(dst *image.RGBA, tex *image.NRGBA, instance []byte, u Uniforms)
}

// Uniforms gives a CPUShader read access to the values set on a Program.
type Uniforms interface {
	Mat4(name string) mgl32.Mat4
	Vec2(name string) mgl32.Vec2
}

// DataType is the component type of a vertex attribute.
type DataType uint8

const (
	DataTypeFloat32 DataType = iota
	DataTypeInt16
	DataTypeUint8
)

// Size returns the byte size of one component.
func (t DataType) Size() int {
	switch t {
	case DataTypeInt16:
		return 2
	case DataTypeUint8:
		return 1
	default:
		return 4
	}
}

// VertexAttribute describes one attribute of a vertex record.
type VertexAttribute struct {
	Name       string
	Location   uint32
	Type       DataType
	Components int
	Offset     int

	// Normalized maps integer components to [0, 1] or [-1, 1].
	Normalized bool
}

// VertexLayout describes the records of a vertex buffer.
type VertexLayout struct {
	Stride     int
	Attributes []VertexAttribute

	// PerInstance advances attributes once per instance instead of per vertex.
	PerInstance bool
}
