package codec

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Color is a 4-component RGBA value.
type Color struct {
	R, G, B, A uint8
}

func (Color) Kind() Kind { return KindColor }

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// RGBA returns a color with explicit alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// String renders the color as #RRGGBBAA.
func (c Color) String() string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// Tuple renders the color as a 4-tuple of channel values.
func (c Color) Tuple() Tuple {
	return Tuple{float64(c.R), float64(c.G), float64(c.B), float64(c.A)}
}

// ParseColor parses #RRGGBB, #RRGGBBAA (with or without '#'),
// rgb(r,g,b) and rgba(r,g,b,a). Missing alpha means opaque.
func ParseColor(text string) (Color, error) {
	s := strings.TrimSpace(text)
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "rgba(") || strings.HasPrefix(lower, "rgb("):
		return parseFunctionalColor(lower)
	}
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 && len(s) != 8 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, text)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, text)
	}
	c := Color{R: raw[0], G: raw[1], B: raw[2], A: 255}
	if len(raw) == 4 {
		c.A = raw[3]
	}
	return c, nil
}

func parseFunctionalColor(s string) (Color, error) {
	open := strings.IndexByte(s, '(')
	if !strings.HasSuffix(s, ")") {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	fn := s[:open]
	parts := strings.Split(s[open+1:len(s)-1], ",")
	want := 4
	if fn == "rgb" {
		want = 3
	}
	if len(parts) != want {
		return Color{}, fmt.Errorf("%w: %q expects %d components", ErrInvalidColor, s, want)
	}
	channels := [4]uint8{0, 0, 0, 255}
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q component %d", ErrInvalidColor, s, i)
		}
		channels[i] = uint8(v)
	}
	return Color{R: channels[0], G: channels[1], B: channels[2], A: channels[3]}, nil
}

// ColorFromTuple accepts a 4-tuple of integral channel values in 0..255.
func ColorFromTuple(t Tuple) (Color, error) {
	if len(t) != 4 {
		return Color{}, fmt.Errorf("%w: tuple has %d components", ErrInvalidColor, len(t))
	}
	var ch [4]uint8
	for i, v := range t {
		if v < 0 || v > 255 || v != float64(int(v)) {
			return Color{}, fmt.Errorf("%w: component %d out of range (%v)", ErrInvalidColor, i, v)
		}
		ch[i] = uint8(v)
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}
