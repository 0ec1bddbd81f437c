package compose

import (
	"fmt"
	"strings"

	"housepaint/internal/domain"
)

const (
	editorPreamble = "You are an expert photo editor specializing in architectural visualization.\n" +
		"Edit the following image of a house exterior with photorealistic quality.\n"

	watermarkClause = "Finally, add a small, discreet, and professional watermark to the bottom-right corner of the image. " +
		"The watermark should be a stylized monogram \"S/J\" in a light grey color (#cccccc) with a very subtle drop shadow for visibility. " +
		"It should be elegant and not obstruct the view of the house.\n"

	qualityClause = "The final image must be a high-definition, realistic photograph with natural lighting and shadows, preserving the original texture of the surfaces.\n"

	featureWallFallback = "If 'A primary, prominent feature wall' color is specified but no such wall exists, apply it to a smaller, suitable accent area. " +
		"If no feature walls are specified or exist, use the main wall color for all walls.\n"

	noTextClause     = "Do not add any text or watermarks.\n"
	monogramOnlyText = "Do not add any text or watermarks, other than the specified 'S/J' monogram.\n"
)

// BuildInstruction renders the text instruction for mode. note is appended
// verbatim when non-blank; logo requests the S/J monogram.
func BuildInstruction(mode Mode, note string, logo bool) string {
	var b strings.Builder
	b.WriteString(editorPreamble)

	switch m := mode.(type) {
	case MaskMode:
		writeMask(&b, m)
	case ReferenceMode:
		writeReference(&b, m)
	case PlainMode:
		writePlain(&b, m)
	}

	if strings.TrimSpace(note) != "" {
		b.WriteString("In addition, follow this specific user instruction: \"" + note + "\"\n")
	}
	if logo {
		b.WriteString(watermarkClause)
	}
	b.WriteString(qualityClause)
	if _, plain := mode.(PlainMode); plain {
		b.WriteString(featureWallFallback)
	}
	if logo {
		b.WriteString(monogramOnlyText)
	} else {
		b.WriteString(noTextClause)
	}
	return b.String()
}

func writeMask(b *strings.Builder, m MaskMode) {
	b.WriteString("The second image is a color-coded mask with the same framing as the photo. " +
		"Only change pixels of the photo that are covered by a colored region of the mask; transparent areas must stay exactly as they are.\n")
	b.WriteString("The mask uses this legend:\n")
	for _, e := range m.Legend {
		fmt.Fprintf(b, "- mask color %s corresponds to %s\n", e.Hex, e.Label)
	}
	b.WriteString("DO NOT change the structure of the house, the background, sky, or anything outside the masked regions.\n")
	writeColors(b, "Paint each masked region with the color of its part:\n", m.Colors)
}

func writeReference(b *strings.Builder, m ReferenceMode) {
	b.WriteString("The second image is a style reference photo of another building. " +
		"Recolor the house in the first image so its exterior color scheme, materials and finishes match the reference as closely as possible, " +
		"keeping the structure, background, landscaping and sky of the first image unchanged.\n")
	if len(m.Colors) > 0 {
		writeColors(b, "Where the reference is ambiguous, use these colors as secondary hints:\n", m.Colors)
	}
}

func writePlain(b *strings.Builder, m PlainMode) {
	b.WriteString(preservationClause(m.Colors))
	b.WriteString("Only change the colors of the specified parts of the building itself.\n")
	writeColors(b, "Apply the following colors precisely and realistically to the specified parts:\n", m.Colors)
	if len(m.Ignored) > 0 {
		fmt.Fprintf(b, "IMPORTANT: Do NOT change the color of the following parts: %s. They must remain as they are in the original photo.\n",
			strings.Join(m.Ignored, ", "))
	}
}

// preservationClause drops plants from the protected list when foliage is
// being recolored.
func preservationClause(colors []PartColor) string {
	for _, c := range colors {
		if c.Part == domain.PartFoliage {
			return "DO NOT change the structure of the house, the background, sky, or any surrounding objects like cars or pathways.\n"
		}
	}
	return "DO NOT change the structure of the house, the background, landscaping, sky, or any surrounding objects like cars, plants, or pathways.\n"
}

func writeColors(b *strings.Builder, heading string, colors []PartColor) {
	b.WriteString(heading)
	for _, c := range colors {
		fmt.Fprintf(b, "- %s: %s\n", c.Part.Label(), c.Hex)
	}
}
