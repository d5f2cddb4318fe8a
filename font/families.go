package font

import (
	"fmt"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Built-in family names.
const (
	FamilyGo     = "Go"
	FamilyGoMono = "Go Mono"

	// DefaultFamily is used when Desc.Family is empty.
	DefaultFamily = FamilyGoMono
)

var (
	bold       = Style{Weight: WeightBold}
	italic     = Style{Slant: SlantItalic}
	boldItalic = Style{Weight: WeightBold, Slant: SlantItalic}
)

func builtinFamilies() map[string]map[Style][]byte {
	return map[string]map[Style][]byte{
		FamilyGo: {
			{}:         goregular.TTF,
			bold:       gobold.TTF,
			italic:     goitalic.TTF,
			boldItalic: gobolditalic.TTF,
		},
		FamilyGoMono: {
			{}:         gomono.TTF,
			bold:       gomonobold.TTF,
			italic:     gomonoitalic.TTF,
			boldItalic: gomonobolditalic.TTF,
		},
	}
}

// lookup returns the data registered for desc. A style missing from a
// family falls back to the family's regular face.
func (c *config) lookup(desc Desc) ([]byte, error) {
	family := desc.Family
	if family == "" {
		family = DefaultFamily
	}
	styles, ok := c.families[family]
	if !ok {
		return nil, fmt.Errorf("%w: family %q", ErrFontNotFound, family)
	}
	data, ok := styles[desc.Style]
	if !ok {
		data, ok = styles[Style{}]
	}
	if !ok {
		return nil, fmt.Errorf("%w: family %q has no regular style", ErrFontNotFound, family)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: family %q", ErrEmptyFontData, family)
	}
	return data, nil
}
