package upload

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housepaint/internal/domain"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

// A 1x1 lossless webp.
var tinyWebP = []byte{
	0x52, 0x49, 0x46, 0x46, 0x1a, 0x00, 0x00, 0x00, 0x57, 0x45, 0x42, 0x50,
	0x56, 0x50, 0x38, 0x4c, 0x0d, 0x00, 0x00, 0x00, 0x2f, 0x00, 0x00, 0x00,
	0x10, 0x07, 0x10, 0x11, 0x11, 0x88, 0x88, 0xfe, 0x07, 0x00,
}

func TestValidateAcceptsImages(t *testing.T) {
	img, err := Validate(pngBytes(t, 40, 20), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIME)
	assert.Equal(t, 40, img.Width)
	assert.Equal(t, 20, img.Height)

	img, err = Validate(jpegBytes(t, 16, 8), "")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIME)
	assert.Equal(t, "jpeg", img.Format)

	img, err = Validate(tinyWebP, "image/webp")
	require.NoError(t, err)
	assert.Equal(t, "image/webp", img.MIME)
	assert.Equal(t, 1, img.Width)
}

func TestValidateSniffedTypeWins(t *testing.T) {
	img, err := Validate(jpegBytes(t, 4, 4), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIME)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]struct {
		data     []byte
		declared string
	}{
		"empty":              {nil, "image/png"},
		"declared non image": {pngBytes(t, 2, 2), "application/pdf"},
		"text body":          {[]byte("hello world"), "image/png"},
		"truncated png":      {pngBytes(t, 2, 2)[:20], "image/png"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Validate(tc.data, tc.declared)
			assert.ErrorIs(t, err, domain.ErrUnsupportedMedia)
		})
	}
}

func TestReadEnforcesLimit(t *testing.T) {
	data := pngBytes(t, 10, 10)
	_, err := Read(bytes.NewReader(data), "image/png", int64(len(data)-1))
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.ErrorIs(t, err, domain.ErrUnsupportedMedia)

	img, err := Read(bytes.NewReader(data), "image/png", int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, 10, img.Width)

	_, err = Read(strings.NewReader("GIF89a"), "", 1024)
	assert.ErrorIs(t, err, domain.ErrUnsupportedMedia)
}

func TestValidatePNG(t *testing.T) {
	_, err := ValidatePNG(pngBytes(t, 3, 3), "image/png")
	require.NoError(t, err)

	_, err = ValidatePNG(jpegBytes(t, 3, 3), "image/jpeg")
	assert.ErrorIs(t, err, domain.ErrUnsupportedMedia)
}
