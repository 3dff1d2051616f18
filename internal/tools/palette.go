package tools

import (
	"strings"

	"github.com/danmuck/lazctl/internal/protocol/codec"
)

// Named colors, opaque unless noted.
var (
	Transparent = codec.RGBA(0, 0, 0, 0)
	Black       = codec.RGB(0, 0, 0)
	White       = codec.RGB(255, 255, 255)
	Gray        = codec.RGB(128, 128, 128)
	Silver      = codec.RGB(192, 192, 192)
	Red         = codec.RGB(255, 0, 0)
	Maroon      = codec.RGB(128, 0, 0)
	Lime        = codec.RGB(0, 255, 0)
	Green       = codec.RGB(0, 128, 0)
	Blue        = codec.RGB(0, 0, 255)
	Navy        = codec.RGB(0, 0, 128)
	Yellow      = codec.RGB(255, 255, 0)
	Olive       = codec.RGB(128, 128, 0)
	Cyan        = codec.RGB(0, 255, 255)
	Teal        = codec.RGB(0, 128, 128)
	Magenta     = codec.RGB(255, 0, 255)
	Purple      = codec.RGB(128, 0, 128)
)

var palette = map[string]codec.Color{
	"transparent": Transparent,
	"black":       Black,
	"white":       White,
	"gray":        Gray,
	"silver":      Silver,
	"red":         Red,
	"maroon":      Maroon,
	"lime":        Lime,
	"green":       Green,
	"blue":        Blue,
	"navy":        Navy,
	"yellow":      Yellow,
	"olive":       Olive,
	"cyan":        Cyan,
	"teal":        Teal,
	"magenta":     Magenta,
	"purple":      Purple,
}

// LookupColor resolves a palette name (case-insensitive) or any textual
// color codec.ParseColor accepts.
func LookupColor(s string) (codec.Color, error) {
	if c, ok := palette[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	return codec.ParseColor(s)
}
