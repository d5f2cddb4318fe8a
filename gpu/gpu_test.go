package gpu

import (
	"errors"
	"image"
	"strings"
	"testing"
)

func TestCheckUpload(t *testing.T) {
	size := image.Pt(64, 64)
	tests := []struct {
		name   string
		dst    image.Rectangle
		format PixelFormat
		n      int
		want   error
	}{
		{"rgb fits", image.Rect(0, 0, 20, 20), PixelFormatRGB, 20 * 20 * 3, nil},
		{"rgba fits", image.Rect(44, 44, 64, 64), PixelFormatRGBA, 20 * 20 * 4, nil},
		{"empty", image.Rect(10, 10, 10, 10), PixelFormatRGB, 0, nil},
		{"outside", image.Rect(50, 0, 70, 10), PixelFormatRGB, 20 * 10 * 3, ErrUploadBounds},
		{"short data", image.Rect(0, 0, 4, 4), PixelFormatRGBA, 4 * 4 * 3, ErrUploadSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckUpload(size, tt.dst, tt.format, make([]byte, tt.n))
			if !errors.Is(err, tt.want) {
				t.Errorf("CheckUpload() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCheckBufferUpload(t *testing.T) {
	tests := []struct {
		offset, n int
		want      error
	}{
		{0, 36, nil},
		{36, 36, nil},
		{40, 36, ErrBufferOverflow},
		{-1, 1, ErrBufferOverflow},
	}
	for _, tt := range tests {
		if err := CheckBufferUpload(72, tt.offset, make([]byte, tt.n)); !errors.Is(err, tt.want) {
			t.Errorf("CheckBufferUpload(72, %d, %d bytes) = %v, want %v", tt.offset, tt.n, err, tt.want)
		}
	}
}

func TestShaderError(t *testing.T) {
	err := error(&ShaderError{Program: "text", Stage: StageFragment, Err: ErrShaderCompile, Log: "0:1: syntax error"})
	if !errors.Is(err, ErrShaderCompile) {
		t.Error("errors.Is(err, ErrShaderCompile) = false")
	}
	if errors.Is(err, ErrShaderLink) {
		t.Error("errors.Is(err, ErrShaderLink) = true")
	}
	for _, part := range []string{"text", "fragment", "syntax error"} {
		if !strings.Contains(err.Error(), part) {
			t.Errorf("Error() = %q, want it to contain %q", err.Error(), part)
		}
	}
}

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		typ  DataType
		want int
	}{
		{DataTypeFloat32, 4},
		{DataTypeInt16, 2},
		{DataTypeUint8, 1},
	}
	for _, tt := range tests {
		if got := tt.typ.Size(); got != tt.want {
			t.Errorf("DataType(%d).Size() = %d, want %d", tt.typ, got, tt.want)
		}
	}
}
