// Package gpu defines the backend-neutral GPU resource interface used by
// the text renderer.
//
// A Device creates textures, buffers, programs and vertex arrays, binds
// them and issues instanced indexed draws. Implementations live in the
// opengl and software sub-packages. Uploads go through length-checked
// methods; callers never hand raw pointers to a device.
//
// Devices are not safe for concurrent use. All calls must happen on the
// goroutine that owns the graphics context.
package gpu

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// Device creates and binds GPU resources and submits draws.
type Device interface {
	// NewTexture allocates an uninitialized 2D texture.
	NewTexture(format gputypes.TextureFormat, width, height int) (Texture, error)

	// NewBuffer allocates a buffer of size bytes for repeated uploads.
	NewBuffer(binding BufferBinding, size int) (Buffer, error)

	// NewImmutableBuffer allocates a buffer holding data.
	NewImmutableBuffer(binding BufferBinding, data []byte) (Buffer, error)

	// NewProgram builds a program from the sources the device understands.
	// Failures are reported as *ShaderError.
	NewProgram(src ShaderSources) (Program, error)

	// NewVertexArray binds a per-instance vertex layout to an instance
	// buffer and an index buffer of uint32 indices.
	NewVertexArray(layout VertexLayout, instances, indices Buffer) (VertexArray, error)

	// BindProgram makes p current. A nil program unbinds.
	BindProgram(p Program)

	// BindVertexArray makes va current. A nil vertex array unbinds.
	BindVertexArray(va VertexArray)

	// BindTexture binds t to a texture unit. A nil texture unbinds.
	BindTexture(unit int, t Texture)

	// DrawElementsInstanced draws indexCount indices of the bound vertex
	// array instanceCount times with the bound program.
	DrawElementsInstanced(indexCount, instanceCount int)

	// Release frees device-level state.
	Release()
}

// Texture is a 2D texture.
type Texture interface {
	Format() gputypes.TextureFormat
	Size() image.Point

	// Upload writes pixels into the dst rectangle. len(pixels) must equal
	// dst.Dx()*dst.Dy()*format.BytesPerPixel() and dst must lie within
	// the texture.
	Upload(dst image.Rectangle, format PixelFormat, pixels []byte) error

	Release()
}

// Buffer is a block of GPU memory.
type Buffer interface {
	Size() int

	// Upload writes data at offset. Writes past Size fail with
	// ErrBufferOverflow.
	Upload(offset int, data []byte) error

	Release()
}

// Program is a linked shader program.
type Program interface {
	SetMat4(name string, m mgl32.Mat4)
	SetVec2(name string, v mgl32.Vec2)
	SetInt(name string, v int32)
	Release()
}

// VertexArray is a vertex layout bound to its buffers.
type VertexArray interface {
	Release()
}

// BufferBinding is the intended use of a buffer.
type BufferBinding uint8

const (
	BufferBindingVertices BufferBinding = 1 << iota
	BufferBindingIndices
)

// PixelFormat is the layout of data passed to Texture.Upload.
type PixelFormat uint8

const (
	// PixelFormatRGB is 3 bytes per pixel. Alpha is set to opaque.
	PixelFormatRGB PixelFormat = iota

	// PixelFormatRGBA is 4 bytes per pixel.
	PixelFormatRGBA
)

// BytesPerPixel returns the size of one pixel.
func (f PixelFormat) BytesPerPixel() int {
	if f == PixelFormatRGBA {
		return 4
	}
	return 3
}

// CheckUpload validates a texture upload against the texture size.
// Backends call it before touching GPU memory.
func CheckUpload(size image.Point, dst image.Rectangle, format PixelFormat, pixels []byte) error {
	if !dst.In(image.Rectangle{Max: size}) {
		return ErrUploadBounds
	}
	if want := dst.Dx() * dst.Dy() * format.BytesPerPixel(); len(pixels) != want {
		return ErrUploadSize
	}
	return nil
}

// CheckBufferUpload validates a buffer upload against the buffer size.
func CheckBufferUpload(size, offset int, data []byte) error {
	if offset < 0 || offset+len(data) > size {
		return ErrBufferOverflow
	}
	return nil
}
