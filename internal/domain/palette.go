package domain

import "strings"

// Swatch is a named brand color offered as a quick pick.
type Swatch struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

var brandPalette = []Swatch{
	{Name: "Morning Glory", Hex: "#D1E8E6"},
	{Name: "Fresh Olive", Hex: "#A5A891"},
	{Name: "Passion Flower", Hex: "#F2D4C2"},
	{Name: "Iced Silver", Hex: "#D5D8D8"},
	{Name: "Royal Ivory", Hex: "#F5EFE1"},
	{Name: "Terracotta", Hex: "#E2725B"},
	{Name: "Steel Grey", Hex: "#71797E"},
	{Name: "Deep Blue Sea", Hex: "#00428D"},
	{Name: "Crimson Red", Hex: "#990000"},
	{Name: "Classic Brown", Hex: "#8B4513"},
	{Name: "Botany", Hex: "#C7D9C3"},
	{Name: "Mustard", Hex: "#FFDB58"},
	{Name: "Coral", Hex: "#FF7F50"},
	{Name: "Lavender", Hex: "#E6E6FA"},
	{Name: "Teal", Hex: "#008080"},
	{Name: "Maroon", Hex: "#800000"},
	{Name: "Pure White", Hex: "#FFFFFF"},
	{Name: "Jet Black", Hex: "#343434"},
}

// Palette returns a copy of the brand catalog.
func Palette() []Swatch {
	out := make([]Swatch, len(brandPalette))
	copy(out, brandPalette)
	return out
}

// FindSwatch looks a swatch up by name, ignoring case and surrounding space.
func FindSwatch(name string) (Swatch, bool) {
	name = strings.TrimSpace(name)
	for _, s := range brandPalette {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Swatch{}, false
}
