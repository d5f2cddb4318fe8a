package text

import "github.com/BergerAPI/renderer/font"

// Defaults used by DefaultConfig.
const (
	// DefaultAtlasSize is the side length of a square atlas texture.
	DefaultAtlasSize = 1024

	// DefaultBatchCapacity is the number of instances one flush can draw.
	DefaultBatchCapacity = 0x10000

	// DefaultFontSize is the font size in points.
	DefaultFontSize = 32
)

// Config holds Renderer settings.
type Config struct {
	// AtlasSize is the side length of each atlas texture in pixels.
	// Default: 1024
	AtlasSize int

	// BatchCapacity is the maximum number of instances per flush. It also
	// sizes the GPU instance buffer.
	// Default: 0x10000
	BatchCapacity int

	// Font selects the font family and style.
	// Default: font.DefaultFamily, regular.
	Font font.Desc

	// FontSize is the font size in points.
	// Default: 32
	FontSize float64

	// Spacing is added to every character advance in pixels.
	// Default: 0
	Spacing float32

	// Normalize applies Unicode NFC normalization to strings before layout,
	// so decomposed input resolves to precomposed glyphs.
	// Default: false
	Normalize bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		AtlasSize:     DefaultAtlasSize,
		BatchCapacity: DefaultBatchCapacity,
		FontSize:      DefaultFontSize,
	}
}

// withDefaults replaces non-positive sizes with their defaults.
func (c Config) withDefaults() Config {
	if c.AtlasSize <= 0 {
		c.AtlasSize = DefaultAtlasSize
	}
	if c.BatchCapacity <= 0 {
		c.BatchCapacity = DefaultBatchCapacity
	}
	if c.FontSize <= 0 {
		c.FontSize = DefaultFontSize
	}
	return c
}

// Option configures a Renderer.
type Option func(*Config)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}

// WithAtlasSize sets the atlas side length in pixels.
func WithAtlasSize(size int) Option {
	return func(c *Config) {
		c.AtlasSize = size
	}
}

// WithBatchCapacity sets the number of instances per flush.
func WithBatchCapacity(n int) Option {
	return func(c *Config) {
		c.BatchCapacity = n
	}
}

// WithFont selects the font.
func WithFont(desc font.Desc) Option {
	return func(c *Config) {
		c.Font = desc
	}
}

// WithFontSize sets the font size in points.
func WithFontSize(points float64) Option {
	return func(c *Config) {
		c.FontSize = points
	}
}

// WithSpacing sets the extra advance between characters in pixels.
func WithSpacing(px float32) Option {
	return func(c *Config) {
		c.Spacing = px
	}
}

// WithNormalization enables NFC normalization of drawn and measured strings.
func WithNormalization(enabled bool) Option {
	return func(c *Config) {
		c.Normalize = enabled
	}
}
