package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// fallbackColor tints the background when a draw carries no usable color.
var fallbackColor = color.NRGBA{R: 0x9E, G: 0x9E, B: 0x9E, A: 255}

// ParseHexColor parses "RRGGBB" (an optional leading '#' is accepted) into
// an opaque color.NRGBA.
func ParseHexColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: must be 6 hex digits", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// tint returns the background tint for hex at the given alpha, falling
// back to neutral gray when hex is empty or malformed.
func tint(hex string, alpha uint8) (c color.NRGBA, ok bool) {
	c, err := ParseHexColor(hex)
	if err != nil {
		c, ok = fallbackColor, false
	} else {
		ok = true
	}
	c.A = alpha
	return c, ok
}
