// Command textdemo draws text with the renderer, either into a GLFW window
// through OpenGL or headless into a PNG file.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/BergerAPI/renderer"
	"github.com/BergerAPI/renderer/font"
	"github.com/BergerAPI/renderer/gpu"
	"github.com/BergerAPI/renderer/gpu/opengl"
	"github.com/BergerAPI/renderer/gpu/software"
	"github.com/BergerAPI/renderer/text"
)

func init() {
	// GLFW and OpenGL calls must come from the main thread.
	runtime.LockOSThread()
}

var background = color.RGBA{R: 0x1e, G: 0x1e, B: 0x2e, A: 0xff}

func main() {
	var (
		width    = flag.Int("width", 800, "window or image width")
		height   = flag.Int("height", 600, "window or image height")
		message  = flag.String("text", "The quick brown fox jumps over the lazy dog", "text to draw")
		size     = flag.Float64("size", 32, "font size in points")
		headless = flag.Bool("headless", false, "render with the software device instead of a window")
		output   = flag.String("out", "textdemo.png", "output file in headless mode")
		verbose  = flag.Bool("v", false, "log debug output")
	)
	flag.Parse()

	if *verbose {
		renderer.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	rast := font.NewOpenType(font.WithColorGlyphs(true))
	cfg := text.DefaultConfig()
	cfg.FontSize = *size
	cfg.Normalize = true
	opts := []text.Option{text.WithConfig(cfg)}

	if *headless {
		if err := renderHeadless(rast, *width, *height, *message, *output, opts); err != nil {
			log.Fatalf("Failed to render: %v", err)
		}
		log.Printf("Demo saved to %s (%dx%d)\n", *output, *width, *height)
		return
	}
	if err := runWindow(rast, *width, *height, *message, opts); err != nil {
		log.Fatalf("Failed to run: %v", err)
	}
}

// drawFrame draws the demo lines starting at the top left.
func drawFrame(tr *text.Renderer, message string) error {
	lines := []struct {
		s string
		c color.Color
	}{
		{message, text.Hex(0xCDD6F4)},
		{"0123456789 !?#&@ {}[]()", text.Hex(0xF9E2AF)},
		{fmt.Sprintf("line height %.0fpx, width %.0fpx", tr.Height(), tr.Length(message)), text.Hex(0xA6E3A1)},
	}
	y := float32(16)
	for _, l := range lines {
		if err := tr.DrawString(l.s, 16, y, l.c); err != nil {
			return err
		}
		y += tr.Height()
	}
	return nil
}

func newRenderer(dev gpu.Device, rast font.Rasterizer, width, height int, opts []text.Option) (*text.Renderer, error) {
	tr, err := text.New(dev, rast, float32(width), float32(height), opts...)
	if err != nil {
		return nil, err
	}
	tr.Warm(printableASCII())
	return tr, nil
}

func renderHeadless(rast font.Rasterizer, width, height int, message, output string, opts []text.Option) error {
	dev := software.New(width, height)
	defer dev.Release()
	dev.Clear(background)

	tr, err := newRenderer(dev, rast, width, height, opts)
	if err != nil {
		return err
	}
	defer func() { _ = tr.Close() }()

	// Count only the frame, not the warm-up uploads.
	dev.ResetStats()
	if err := drawFrame(tr, message); err != nil {
		return err
	}
	ds := dev.Stats()
	renderer.Logger().Debug("textdemo: frame drawn",
		"draws", ds.Draws, "instances", ds.Instances, "uploads", ds.TextureUploads, "binds", ds.TextureBinds)
	logStats(tr)

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := png.Encode(f, dev.Target()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func runWindow(rast font.Rasterizer, width, height int, message string, opts []text.Option) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("init glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(width, height, "textdemo", nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	dev, err := opengl.New()
	if err != nil {
		return err
	}
	defer dev.Release()

	tr, err := newRenderer(dev, rast, width, height, opts)
	if err != nil {
		return err
	}
	defer func() { _ = tr.Close() }()

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})
	window.SetSizeCallback(func(_ *glfw.Window, w, h int) {
		tr.SetViewport(float32(w), float32(h))
	})

	for !window.ShouldClose() {
		fbw, fbh := window.GetFramebufferSize()
		dev.Viewport(fbw, fbh)
		dev.Clear(background)
		if err := drawFrame(tr, message); err != nil {
			return err
		}
		window.SwapBuffers()
		glfw.PollEvents()
	}
	logStats(tr)
	return nil
}

func logStats(tr *text.Renderer) {
	st := tr.Stats()
	renderer.Logger().Debug("textdemo: glyph cache",
		"atlases", st.Atlases, "glyphs", st.Glyphs, "hitRate", st.HitRate, "draws", st.Draws)
}

func printableASCII() string {
	b := make([]byte, 0, 0x7F-0x20)
	for c := byte(0x20); c < 0x7F; c++ {
		b = append(b, c)
	}
	return string(b)
}
