package domain

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ColorSelection maps every part to a #rrggbb target color. It is always
// fully populated; whether a part is painted is tracked by EnabledParts.
type ColorSelection map[ExteriorPart]string

// EnabledParts gates which parts are included in a generation request.
type EnabledParts map[ExteriorPart]bool

var defaultColors = map[ExteriorPart]string{
	PartWall:         "#f3f4f6",
	PartFeatureWall1: "#e2725b",
	PartFeatureWall2: "#c7d9c3",
	PartDoor:         "#374151",
	PartWindow:       "#ffffff",
	PartRoof:         "#6b7280",
	PartRailing:      "#343434",
	PartFoliage:      "#4d7c0f",
}

// DefaultColors returns a fresh, fully populated selection.
func DefaultColors() ColorSelection {
	out := make(ColorSelection, len(allParts))
	for _, p := range allParts {
		out[p] = defaultColors[p]
	}
	return out
}

// DefaultEnabled returns the session-start toggles: only the wall is painted.
func DefaultEnabled() EnabledParts {
	out := make(EnabledParts, len(allParts))
	for _, p := range allParts {
		out[p] = p == PartWall
	}
	return out
}

// EnabledOnly builds toggles where exactly the given parts are enabled.
func EnabledOnly(parts []ExteriorPart) EnabledParts {
	out := make(EnabledParts, len(allParts))
	for _, p := range allParts {
		out[p] = false
	}
	for _, p := range parts {
		if p.Valid() {
			out[p] = true
		}
	}
	return out
}

// Clone copies the selection, filling any missing part with its default.
func (c ColorSelection) Clone() ColorSelection {
	out := DefaultColors()
	for p, hex := range c {
		if p.Valid() {
			out[p] = hex
		}
	}
	return out
}

// Clone copies the toggles; unknown parts are dropped, missing ones are false.
func (e EnabledParts) Clone() EnabledParts {
	out := make(EnabledParts, len(allParts))
	for _, p := range allParts {
		out[p] = e[p]
	}
	return out
}

// Parts lists the enabled parts in enumeration order.
func (e EnabledParts) Parts() []ExteriorPart {
	var out []ExteriorPart
	for _, p := range allParts {
		if e[p] {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeHex converts #rgb, rgb, #rrggbb or rrggbb into lowercase #rrggbb.
func NormalizeHex(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, raw)
	}
	if _, err := strconv.ParseUint(s, 16, 32); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, raw)
	}
	return "#" + s, nil
}

// ParseHexColor parses a hex color into an opaque NRGBA value.
func ParseHexColor(raw string) (color.NRGBA, error) {
	norm, err := NormalizeHex(raw)
	if err != nil {
		return color.NRGBA{}, err
	}
	v, _ := strconv.ParseUint(norm[1:], 16, 32)
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// HexString formats the RGB channels of c as lowercase #rrggbb.
func HexString(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
