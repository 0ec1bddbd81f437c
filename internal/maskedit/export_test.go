package maskedit

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housepaint/internal/domain"
)

func TestDetectPartsIgnoresTransparentAndForeignColors(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 0xff, A: 0})
	img.SetNRGBA(1, 0, color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff})
	img.SetNRGBA(2, 0, color.NRGBA{R: 0xff, G: 0xa5, A: 0xff})
	img.SetNRGBA(3, 0, color.NRGBA{R: 0xfe, G: 0xa5, A: 0x80})

	assert.Equal(t, []domain.ExteriorPart{domain.PartRailing}, DetectParts(img))
}

func TestDetectPartsGenericImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{G: 0xff, A: 0xff})
	img.Set(1, 0, color.RGBA{B: 0xff, A: 0xff})
	assert.Equal(t, []domain.ExteriorPart{domain.PartFeatureWall1, domain.PartFeatureWall2}, DetectParts(img))
}

func TestInspectNormalizesForeignEncoding(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	img.Set(1, 1, color.RGBA{R: 0xff, G: 0xff, A: 0xff})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	out, err := Inspect(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []domain.ExteriorPart{domain.PartDoor}, out.Parts)
	assert.Equal(t, 3, out.Width)

	decoded, err := png.Decode(bytes.NewReader(out.PNG))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 3), decoded.Bounds())
}

func TestInspectRejectsGarbage(t *testing.T) {
	_, err := Inspect([]byte("not an image"))
	assert.Error(t, err)
}
