package gpu

import (
	"errors"
	"fmt"
)

// Sentinel errors for the gpu package.
var (
	// ErrShaderCompile is wrapped by a *ShaderError when a stage fails to compile.
	ErrShaderCompile = errors.New("gpu: shader compilation failed")

	// ErrShaderLink is wrapped by a *ShaderError when a program fails to link.
	ErrShaderLink = errors.New("gpu: program link failed")

	// ErrBufferOverflow is returned when an upload exceeds a buffer's capacity.
	ErrBufferOverflow = errors.New("gpu: buffer overflow")

	// ErrUploadBounds is returned when a texture upload falls outside the texture.
	ErrUploadBounds = errors.New("gpu: upload outside texture bounds")

	// ErrUploadSize is returned when pixel data does not match the upload rectangle.
	ErrUploadSize = errors.New("gpu: pixel data size mismatch")

	// ErrUnsupportedFormat is returned for texture formats a device cannot store.
	ErrUnsupportedFormat = errors.New("gpu: unsupported texture format")

	// ErrInvalidSize is returned for non-positive resource sizes.
	ErrInvalidSize = errors.New("gpu: invalid resource size")
)

// ShaderStage names a programmable stage.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StageFragment
	StageProgram
)

// String implements fmt.Stringer.
func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageProgram:
		return "program"
	default:
		return fmt.Sprintf("ShaderStage(%d)", uint8(s))
	}
}

// ShaderError is returned by Device.NewProgram. Err is ErrShaderCompile or
// ErrShaderLink and Log holds the driver or compiler output.
type ShaderError struct {
	Program string
	Stage   ShaderStage
	Err     error
	Log     string
}

func (e *ShaderError) Error() string {
	return fmt.Sprintf("%v: %s %s: %s", e.Err, e.Program, e.Stage, e.Log)
}

func (e *ShaderError) Unwrap() error {
	return e.Err
}
