package maskedit

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"housepaint/internal/domain"
)

// Export is the result of saving a mask: a PNG of the painted layer and the
// parts whose legend colors appear in it.
type Export struct {
	PNG    []byte
	Parts  []domain.ExteriorPart
	Width  int
	Height int
}

// ExportImage encodes img and detects the parts painted on it. Encoding the
// same pixels twice yields identical bytes.
func ExportImage(img *image.NRGBA) (Export, error) {
	data, err := encodePNG(img)
	if err != nil {
		return Export{}, err
	}
	size := img.Rect.Size()
	return Export{
		PNG:    data,
		Parts:  DetectParts(img),
		Width:  size.X,
		Height: size.Y,
	}, nil
}

// Inspect decodes an externally supplied mask and runs the same detection as
// Save. The mask is normalized to an NRGBA PNG.
func Inspect(data []byte) (Export, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Export{}, fmt.Errorf("maskedit: decode mask: %w", err)
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(image.Rectangle{Max: img.Bounds().Size()})
		draw.Draw(nrgba, nrgba.Rect, img, img.Bounds().Min, draw.Src)
	}
	return ExportImage(nrgba)
}

// DetectParts scans every pixel with non-zero alpha and reports the parts
// whose legend RGB matches exactly, in enumeration order. Anti-aliased edge
// pixels whose un-premultiplied color drifted from the legend are ignored.
func DetectParts(img image.Image) []domain.ExteriorPart {
	present := make(map[uint32]struct{})
	if n, ok := img.(*image.NRGBA); ok {
		b := n.Rect
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := n.Pix[n.PixOffset(b.Min.X, y):n.PixOffset(b.Max.X, y)]
			for i := 0; i+3 < len(row); i += 4 {
				if row[i+3] == 0 {
					continue
				}
				present[rgbKey(row[i], row[i+1], row[i+2])] = struct{}{}
			}
		}
	} else {
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				if c.A == 0 {
					continue
				}
				present[rgbKey(c.R, c.G, c.B)] = struct{}{}
			}
		}
	}

	var parts []domain.ExteriorPart
	for _, p := range domain.AllParts() {
		c := p.LegendColor()
		if _, ok := present[rgbKey(c.R, c.G, c.B)]; ok {
			parts = append(parts, p)
		}
	}
	return parts
}

func rgbKey(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("maskedit: encode png: %w", err)
	}
	return buf.Bytes(), nil
}
