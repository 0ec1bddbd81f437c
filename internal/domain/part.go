package domain

import (
	"fmt"
	"image/color"
	"strings"
)

// ExteriorPart enumerates the paintable region classes of a house exterior.
// The string value is the join key between color pickers, the mask legend
// and prompt templates, so it must stay stable.
type ExteriorPart string

const (
	PartWall         ExteriorPart = "wall"
	PartFeatureWall1 ExteriorPart = "feature_wall_1"
	PartFeatureWall2 ExteriorPart = "feature_wall_2"
	PartDoor         ExteriorPart = "door"
	PartWindow       ExteriorPart = "window"
	PartRoof         ExteriorPart = "roof"
	PartRailing      ExteriorPart = "railing"
	PartFoliage      ExteriorPart = "foliage"
)

var allParts = []ExteriorPart{
	PartWall,
	PartFeatureWall1,
	PartFeatureWall2,
	PartDoor,
	PartWindow,
	PartRoof,
	PartRailing,
	PartFoliage,
}

// AllParts returns every part in enumeration order.
func AllParts() []ExteriorPart {
	out := make([]ExteriorPart, len(allParts))
	copy(out, allParts)
	return out
}

// Valid reports whether p is a known part.
func (p ExteriorPart) Valid() bool {
	_, ok := partInfo[p]
	return ok
}

// ParsePart resolves a free-form tag into a known part.
func ParsePart(raw string) (ExteriorPart, error) {
	p := ExteriorPart(strings.ToLower(strings.TrimSpace(raw)))
	p = ExteriorPart(strings.ReplaceAll(string(p), "-", "_"))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPart, raw)
	}
	return p, nil
}

type partDetails struct {
	legend    string
	label     string
	ignore    string
	displayEN string
	displayHI string
}

// partInfo holds the static vocabulary for each part. Feature walls share an
// ignore phrase; the plain prompt deduplicates on it.
var partInfo = map[ExteriorPart]partDetails{
	PartWall: {
		legend:    "#ff0000",
		label:     "All general exterior walls",
		ignore:    "the main exterior walls",
		displayEN: "Wall",
		displayHI: "Deewar (Wall)",
	},
	PartFeatureWall1: {
		legend:    "#00ff00",
		label:     "A primary, prominent feature wall",
		ignore:    "any feature or accent walls",
		displayEN: "Feature Wall 1",
		displayHI: "Feature Wall 1",
	},
	PartFeatureWall2: {
		legend:    "#0000ff",
		label:     "A secondary feature wall",
		ignore:    "any feature or accent walls",
		displayEN: "Feature Wall 2",
		displayHI: "Feature Wall 2",
	},
	PartDoor: {
		legend:    "#ffff00",
		label:     "The main entrance door(s)",
		ignore:    "the doors",
		displayEN: "Door",
		displayHI: "Darwaza (Door)",
	},
	PartWindow: {
		legend:    "#ff00ff",
		label:     "All window frames",
		ignore:    "the window frames",
		displayEN: "Window",
		displayHI: "Khidki (Window)",
	},
	PartRoof: {
		legend:    "#00ffff",
		label:     "The entire roof surface",
		ignore:    "the roof",
		displayEN: "Roof",
		displayHI: "Chhat (Roof)",
	},
	PartRailing: {
		legend:    "#ffa500",
		label:     "All railings (e.g., on balconies, stairs, porches)",
		ignore:    "the railings",
		displayEN: "Railing",
		displayHI: "Railing",
	},
	PartFoliage: {
		legend:    "#ffc0cb",
		label:     "The foliage, leaves and climbing plants on the building",
		ignore:    "the plants and foliage",
		displayEN: "Leaves",
		displayHI: "Patte (Leaves)",
	},
}

// LegendHex is the lowercase #rrggbb color the mask editor paints p with.
func (p ExteriorPart) LegendHex() string {
	return partInfo[p].legend
}

// LegendColor is LegendHex as a fully opaque color.
func (p ExteriorPart) LegendColor() color.NRGBA {
	c, err := ParseHexColor(partInfo[p].legend)
	if err != nil {
		return color.NRGBA{}
	}
	return c
}

// Label is the human-readable phrase used in color instructions.
func (p ExteriorPart) Label() string {
	return partInfo[p].label
}

// IgnorePhrase is used when instructing the model to leave p untouched.
func (p ExteriorPart) IgnorePhrase() string {
	return partInfo[p].ignore
}

// DisplayName returns the legend name shown in the editor for the locale.
func (p ExteriorPart) DisplayName(locale string) string {
	info := partInfo[p]
	if locale == LocaleHindi {
		return info.displayHI
	}
	return info.displayEN
}

// PartForColor maps a legend color back to its part.
func PartForColor(hex string) (ExteriorPart, bool) {
	norm, err := NormalizeHex(hex)
	if err != nil {
		return "", false
	}
	for _, p := range allParts {
		if partInfo[p].legend == norm {
			return p, true
		}
	}
	return "", false
}

// Supported display locales for legend names.
const (
	LocaleEnglish = "en"
	LocaleHindi   = "hi"
)
