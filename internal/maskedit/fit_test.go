package maskedit

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitCanvas(t *testing.T) {
	tests := []struct {
		name     string
		src      image.Point
		viewport image.Point
		want     image.Point
	}{
		{name: "wide photo in square", src: image.Pt(400, 200), viewport: image.Pt(100, 100), want: image.Pt(100, 50)},
		{name: "tall photo in square", src: image.Pt(200, 400), viewport: image.Pt(100, 100), want: image.Pt(50, 100)},
		{name: "same ratio", src: image.Pt(1600, 900), viewport: image.Pt(800, 450), want: image.Pt(800, 450)},
		{name: "upscale", src: image.Pt(10, 10), viewport: image.Pt(300, 200), want: image.Pt(200, 200)},
		{name: "never zero", src: image.Pt(10000, 1), viewport: image.Pt(100, 100), want: image.Pt(100, 1)},
		{name: "capped wide", src: image.Pt(4000, 2000), viewport: image.Pt(8000, 8000), want: image.Pt(MaxCanvasSide, MaxCanvasSide/2)},
		{name: "capped tall", src: image.Pt(300, 600), viewport: image.Pt(8192, 8192), want: image.Pt(MaxCanvasSide/2, MaxCanvasSide)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FitCanvas(tc.src, tc.viewport)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFitCanvasErrors(t *testing.T) {
	_, err := FitCanvas(image.Pt(0, 10), image.Pt(10, 10))
	assert.ErrorIs(t, err, ErrNoPhoto)
	_, err = FitCanvas(image.Pt(10, 10), image.Pt(10, -1))
	assert.ErrorIs(t, err, ErrBadViewport)
	_, err = FitCanvas(image.Pt(4000, 3000), image.Pt(1<<40, 1<<40))
	assert.ErrorIs(t, err, ErrBadViewport)
	_, err = FitCanvas(image.Pt(4000, 3000), image.Pt(60000, 45000))
	assert.ErrorIs(t, err, ErrBadViewport)
	_, err = FitCanvas(image.Pt(4000, 3000), image.Pt(MaxViewportSide+1, 100))
	assert.ErrorIs(t, err, ErrBadViewport)
}
