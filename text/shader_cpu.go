package text

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/BergerAPI/renderer/gpu"
)

// cpuShader is the text program for the software device. It maps the
// instance quad through the projection, samples the atlas with nearest
// filtering and blends per channel like the dual-source GL program.
type cpuShader struct{}

var _ gpu.CPUShader = cpuShader{}

func (cpuShader) ShadeInstance(dst *image.RGBA, tex *image.NRGBA, data []byte, u gpu.Uniforms) {
	in := decodeInstance(data)
	if in.Width <= 0 || in.Height <= 0 {
		return
	}

	proj := u.Mat4(uniformProjection)
	cell := u.Vec2(uniformCellDim)
	bounds := dst.Bounds()

	ox := in.X + float32(in.Left)
	oy := in.Y + cell.Y() - float32(in.Top)
	x0, y0 := toPixel(proj, bounds, ox, oy)
	x1, y1 := toPixel(proj, bounds, ox+float32(in.Width), oy+float32(in.Height))
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	if x1-x0 <= 0 || y1-y0 <= 0 {
		return
	}

	area := image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1))).Intersect(bounds)
	ts := tex.Bounds().Size()
	multicolor := in.Flags&FlagMulticolor != 0

	for py := area.Min.Y; py < area.Max.Y; py++ {
		v := float64(in.UVBot) + (float64(py)+0.5-y0)/(y1-y0)*float64(in.UVHeight)
		ty := clampInt(int(v*float64(ts.Y)), 0, ts.Y-1)
		for px := area.Min.X; px < area.Max.X; px++ {
			uu := float64(in.UVLeft) + (float64(px)+0.5-x0)/(x1-x0)*float64(in.UVWidth)
			tx := clampInt(int(uu*float64(ts.X)), 0, ts.X-1)

			t := tex.NRGBAAt(tx, ty)
			off := dst.PixOffset(px, py)
			d := dst.Pix[off : off+4 : off+4]
			if multicolor {
				a := uint32(t.A)
				d[0] = blend(t.R, d[0], a)
				d[1] = blend(t.G, d[1], a)
				d[2] = blend(t.B, d[2], a)
				d[3] = blend(0xff, d[3], a)
				continue
			}
			d[0] = blend(in.R, d[0], uint32(t.R))
			d[1] = blend(in.G, d[1], uint32(t.G))
			d[2] = blend(in.B, d[2], uint32(t.B))
			d[3] = blend(0xff, d[3], uint32(max(t.R, t.G, t.B)))
		}
	}
}

// toPixel projects a point to framebuffer pixels with row 0 at the top.
func toPixel(proj mgl32.Mat4, bounds image.Rectangle, x, y float32) (float64, float64) {
	clip := proj.Mul4x1(mgl32.Vec4{x, y, 0, 1})
	w := clip.W()
	if w == 0 {
		w = 1
	}
	nx, ny := float64(clip.X()/w), float64(clip.Y()/w)
	return (nx + 1) / 2 * float64(bounds.Dx()), (1 - ny) / 2 * float64(bounds.Dy())
}

// blend returns src*a + dst*(1-a) with a in [0, 255].
func blend(src, dst uint8, a uint32) uint8 {
	return uint8((uint32(src)*a + uint32(dst)*(255-a) + 127) / 255) //nolint:gosec // result <= 255
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
