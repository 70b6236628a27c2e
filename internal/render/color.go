package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// NamedColor is a palette entry.
type NamedColor struct {
	Name  string
	Color color.NRGBA
}

// Palette is the drawing and text palette, in display order.
var Palette = []NamedColor{
	{"black", color.NRGBA{A: 255}},
	{"red", color.NRGBA{R: 255, A: 255}},
	{"green", color.NRGBA{G: 255, A: 255}},
	{"blue", color.NRGBA{B: 255, A: 255}},
	{"yellow", color.NRGBA{R: 255, G: 255, A: 255}},
	{"white", color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
}

// ParseColor accepts a palette name, #rgb, #rrggbb or #rrggbbaa.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Palette {
		if c.Name == s {
			return c.Color, nil
		}
	}
	hex := strings.TrimPrefix(s, "#")
	if hex == s {
		return color.NRGBA{}, fmt.Errorf("unknown color %q", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("bad color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("bad color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
