package font

import (
	"bytes"
	"errors"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func loadDefault(t *testing.T, size float64) (*OpenType, Key) {
	t.Helper()
	o := NewOpenType()
	key, err := o.LoadFont(Desc{}, NewSize(size))
	if err != nil {
		t.Fatalf("LoadFont() error = %v", err)
	}
	return o, key
}

func TestSize(t *testing.T) {
	tests := []struct {
		points float64
		want   Size
	}{
		{32, 2048},
		{12.5, 800},
		{0, 0},
	}
	for _, tt := range tests {
		got := NewSize(tt.points)
		if got != tt.want {
			t.Errorf("NewSize(%v) = %d, want %d", tt.points, got, tt.want)
		}
		if got.Points() != tt.points {
			t.Errorf("NewSize(%v).Points() = %v", tt.points, got.Points())
		}
	}
}

func TestLoadFontSameDescSameKey(t *testing.T) {
	o, key := loadDefault(t, 16)
	again, err := o.LoadFont(Desc{}, NewSize(24))
	if err != nil {
		t.Fatalf("LoadFont() error = %v", err)
	}
	if again != key {
		t.Errorf("LoadFont() = %d, want %d", again, key)
	}

	bold, err := o.LoadFont(Desc{Style: Style{Weight: WeightBold}}, NewSize(16))
	if err != nil {
		t.Fatalf("LoadFont(bold) error = %v", err)
	}
	if bold == key {
		t.Error("bold face shares the regular face key")
	}
}

func TestLoadFontNotFound(t *testing.T) {
	o := NewOpenType()
	_, err := o.LoadFont(Desc{Family: "No Such Family"}, NewSize(16))
	if !errors.Is(err, ErrFontNotFound) {
		t.Errorf("LoadFont() error = %v, want ErrFontNotFound", err)
	}
}

func TestLoadFontEmptyData(t *testing.T) {
	o := NewOpenType(WithFamily("Empty", Style{}, nil))
	_, err := o.LoadFont(Desc{Family: "Empty"}, NewSize(16))
	if !errors.Is(err, ErrEmptyFontData) {
		t.Errorf("LoadFont() error = %v, want ErrEmptyFontData", err)
	}
}

func TestLoadFontStyleFallback(t *testing.T) {
	o := NewOpenType(WithFamily("Custom", Style{}, goregular.TTF))
	if _, err := o.LoadFont(Desc{Family: "Custom", Style: Style{Slant: SlantItalic}}, NewSize(16)); err != nil {
		t.Errorf("LoadFont(italic) error = %v, want fallback to regular", err)
	}
}

func TestFamilyName(t *testing.T) {
	name, err := FamilyName(goregular.TTF)
	if err != nil {
		t.Fatalf("FamilyName() error = %v", err)
	}
	if name != "Go" {
		t.Errorf("FamilyName() = %q, want %q", name, "Go")
	}
	if _, err := FamilyName(nil); !errors.Is(err, ErrEmptyFontData) {
		t.Errorf("FamilyName(nil) error = %v, want ErrEmptyFontData", err)
	}
}

func TestMetrics(t *testing.T) {
	o, key := loadDefault(t, 32)
	m, err := o.Metrics(key, NewSize(32))
	if err != nil {
		t.Fatalf("Metrics() error = %v", err)
	}
	if m.LineHeight <= 0 || m.Ascent <= 0 || m.Descent <= 0 {
		t.Errorf("Metrics() = %+v, want positive line metrics", m)
	}
	if m.AverageAdvance <= 0 || m.AverageAdvance > 32 {
		t.Errorf("AverageAdvance = %v, want in (0, 32]", m.AverageAdvance)
	}

	if _, err := o.Metrics(key+7, NewSize(32)); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Metrics(unknown) error = %v, want ErrUnknownKey", err)
	}
}

func TestGlyph(t *testing.T) {
	o, key := loadDefault(t, 32)
	bmp, err := o.Glyph(GlyphKey{Font: key, Char: 'A', Size: NewSize(32)})
	if err != nil {
		t.Fatalf("Glyph('A') error = %v", err)
	}
	if bmp.Width <= 0 || bmp.Height <= 0 {
		t.Fatalf("Glyph('A') size = %dx%d, want non-empty", bmp.Width, bmp.Height)
	}
	if bmp.Format != FormatRGB || bmp.Multicolor() {
		t.Errorf("Glyph('A') format = %v, want RGB", bmp.Format)
	}
	if want := bmp.Width * bmp.Height * 3; len(bmp.Pixels) != want {
		t.Errorf("len(Pixels) = %d, want %d", len(bmp.Pixels), want)
	}
	if bmp.Top <= 0 {
		t.Errorf("Top = %d, want above the baseline", bmp.Top)
	}

	var ink bool
	for i := 0; i < len(bmp.Pixels); i += 3 {
		if bmp.Pixels[i] != bmp.Pixels[i+1] || bmp.Pixels[i] != bmp.Pixels[i+2] {
			t.Fatalf("pixel %d is not gray: %v", i/3, bmp.Pixels[i:i+3])
		}
		if bmp.Pixels[i] > 0 {
			ink = true
		}
	}
	if !ink {
		t.Error("Glyph('A') has no coverage")
	}
}

func TestGlyphSpaceHasNoInk(t *testing.T) {
	o, key := loadDefault(t, 32)
	bmp, err := o.Glyph(GlyphKey{Font: key, Char: ' ', Size: NewSize(32)})
	if err != nil {
		t.Fatalf("Glyph(' ') error = %v", err)
	}
	if bmp.Width != 0 || bmp.Height != 0 || len(bmp.Pixels) != 0 {
		t.Errorf("Glyph(' ') = %dx%d with %d bytes, want empty", bmp.Width, bmp.Height, len(bmp.Pixels))
	}
}

func TestGlyphMissing(t *testing.T) {
	o, key := loadDefault(t, 32)
	bmp, err := o.Glyph(GlyphKey{Font: key, Char: 0x1F600, Size: NewSize(32)})

	var missing *MissingGlyphError
	if !errors.As(err, &missing) {
		t.Fatalf("Glyph(U+1F600) error = %v, want *MissingGlyphError", err)
	}
	if missing.Char != 0x1F600 {
		t.Errorf("MissingGlyphError.Char = %U, want U+1F600", missing.Char)
	}
	if missing.Error() != "font: missing glyph for U+1F600" {
		t.Errorf("Error() = %q", missing.Error())
	}
	g := missing.Glyph
	if g.Width <= 0 || g.Height <= 0 || len(g.Pixels) != g.Width*g.Height*3 {
		t.Fatalf(".notdef bitmap = %dx%d with %d bytes, want a non-empty RGB bitmap", g.Width, g.Height, len(g.Pixels))
	}
	if bmp.Width != g.Width || bmp.Height != g.Height {
		t.Errorf("returned bitmap %dx%d differs from MissingGlyphError.Glyph %dx%d", bmp.Width, bmp.Height, g.Width, g.Height)
	}
}

func TestGlyphMissingSharesNotdef(t *testing.T) {
	o, key := loadDefault(t, 24)
	var got []Bitmap
	for _, r := range []rune{0x4E00, 0x4E01, 0x1F600} {
		_, err := o.Glyph(GlyphKey{Font: key, Char: r, Size: NewSize(24)})
		var missing *MissingGlyphError
		if !errors.As(err, &missing) {
			t.Fatalf("Glyph(%U) error = %v, want *MissingGlyphError", r, err)
		}
		got = append(got, missing.Glyph)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Width != got[0].Width || got[i].Height != got[0].Height || !bytes.Equal(got[i].Pixels, got[0].Pixels) {
			t.Errorf("missing glyph %d differs from the first .notdef bitmap", i)
		}
	}
}

func TestGlyphUnknownKey(t *testing.T) {
	o := NewOpenType()
	_, err := o.Glyph(GlyphKey{Font: 3, Char: 'A', Size: NewSize(12)})
	if !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Glyph() error = %v, want ErrUnknownKey", err)
	}
}

func TestPixelFormat(t *testing.T) {
	tests := []struct {
		f    PixelFormat
		bpp  int
		name string
	}{
		{FormatRGB, 3, "RGB"},
		{FormatRGBA, 4, "RGBA"},
	}
	for _, tt := range tests {
		if got := tt.f.BytesPerPixel(); got != tt.bpp {
			t.Errorf("%v.BytesPerPixel() = %d, want %d", tt.f, got, tt.bpp)
		}
		if got := tt.f.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
	}
}
