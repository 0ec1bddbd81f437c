package compose

import "housepaint/internal/domain"

// ModeName identifies a composition mode.
type ModeName string

const (
	ModeMask      ModeName = "mask"
	ModeReference ModeName = "reference"
	ModePlain     ModeName = "plain"
)

// Mode is one of MaskMode, ReferenceMode or PlainMode.
type Mode interface {
	Name() ModeName
	isMode()
}

// LegendEntry pairs a mask color with the part it marks.
type LegendEntry struct {
	Hex   string
	Label string
}

// MaskMode edits only the regions painted in the mask image.
type MaskMode struct {
	Mask   Image
	Legend []LegendEntry
	Colors []PartColor
}

// ReferenceMode restyles the photo after a second reference photo.
type ReferenceMode struct {
	Reference Image
	Colors    []PartColor
}

// PlainMode applies a color list and names the parts to leave alone.
type PlainMode struct {
	Colors  []PartColor
	Ignored []string
}

func (MaskMode) Name() ModeName      { return ModeMask }
func (ReferenceMode) Name() ModeName { return ModeReference }
func (PlainMode) Name() ModeName     { return ModePlain }

func (MaskMode) isMode()      {}
func (ReferenceMode) isMode() {}
func (PlainMode) isMode()     {}

// Project keeps only enabled parts, in enumeration order.
func Project(colors domain.ColorSelection, enabled domain.EnabledParts) []PartColor {
	var out []PartColor
	for _, p := range domain.AllParts() {
		if !enabled[p] {
			continue
		}
		out = append(out, PartColor{Part: p, Hex: colors[p]})
	}
	return out
}

// Legend lists every part's mask color regardless of toggles; the mask decides
// which regions are touched.
func Legend() []LegendEntry {
	parts := domain.AllParts()
	out := make([]LegendEntry, 0, len(parts))
	for _, p := range parts {
		out = append(out, LegendEntry{Hex: p.LegendHex(), Label: p.Label()})
	}
	return out
}

// IgnoredPhrases names every disabled part once; parts sharing a phrase are
// merged.
func IgnoredPhrases(enabled domain.EnabledParts) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range domain.AllParts() {
		if enabled[p] {
			continue
		}
		phrase := p.IgnorePhrase()
		if phrase == "" {
			continue
		}
		if _, ok := seen[phrase]; ok {
			continue
		}
		seen[phrase] = struct{}{}
		out = append(out, phrase)
	}
	return out
}

// SelectMode applies the precedence mask > reference > plain.
func SelectMode(in Input) Mode {
	colors := Project(in.Colors, in.Enabled)
	switch {
	case in.Mask != nil && !in.Mask.Empty():
		return MaskMode{Mask: *in.Mask, Legend: Legend(), Colors: colors}
	case in.Reference != nil && !in.Reference.Empty():
		return ReferenceMode{Reference: *in.Reference, Colors: colors}
	default:
		return PlainMode{Colors: colors, Ignored: IgnoredPhrases(in.Enabled)}
	}
}
