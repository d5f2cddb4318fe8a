package font

import xfont "golang.org/x/image/font"

// Option configures an OpenType rasterizer.
type Option func(*config)

type config struct {
	dpi      float64
	hinting  xfont.Hinting
	color    bool
	families map[string]map[Style][]byte
}

func defaultConfig() config {
	return config{
		dpi:      72,
		hinting:  xfont.HintingFull,
		color:    true,
		families: builtinFamilies(),
	}
}

// WithDPI sets the resolution used to convert points to pixels.
// Values <= 0 are ignored. The default is 72, so one point is one pixel.
func WithDPI(dpi float64) Option {
	return func(c *config) {
		if dpi > 0 {
			c.dpi = dpi
		}
	}
}

// WithHinting sets the outline hinting mode. The default is full hinting.
func WithHinting(h xfont.Hinting) Option {
	return func(c *config) {
		c.hinting = h
	}
}

// WithColorGlyphs enables or disables PNG color glyph lookup.
// It is enabled by default.
func WithColorGlyphs(enabled bool) Option {
	return func(c *config) {
		c.color = enabled
	}
}

// WithFamily registers TrueType or OpenType data for a family and style.
// Registering an existing family and style replaces it.
func WithFamily(name string, style Style, data []byte) Option {
	return func(c *config) {
		styles, ok := c.families[name]
		if !ok {
			styles = make(map[Style][]byte)
			c.families[name] = styles
		}
		styles[style] = data
	}
}
