package maskedit

import "image"

const (
	// MaxViewportSide bounds either side of a client supplied viewport.
	MaxViewportSide = 8192
	// MaxCanvasSide bounds either side of the fitted canvas. Larger fits are
	// scaled down with the same aspect ratio.
	MaxCanvasSide = 4096
)

// FitCanvas scales src into viewport while preserving the aspect ratio. The
// result letterboxes rather than stretches: one side matches the viewport,
// the other is equal or smaller. Neither side exceeds MaxCanvasSide.
func FitCanvas(src, viewport image.Point) (image.Point, error) {
	if src.X <= 0 || src.Y <= 0 {
		return image.Point{}, ErrNoPhoto
	}
	if viewport.X <= 0 || viewport.Y <= 0 || viewport.X > MaxViewportSide || viewport.Y > MaxViewportSide {
		return image.Point{}, ErrBadViewport
	}

	containerRatio := float64(viewport.X) / float64(viewport.Y)
	imageRatio := float64(src.X) / float64(src.Y)

	var w, h float64
	if containerRatio > imageRatio {
		h = float64(viewport.Y)
		w = h * imageRatio
	} else {
		w = float64(viewport.X)
		h = w / imageRatio
	}
	if over := max(w, h) / MaxCanvasSide; over > 1 {
		w /= over
		h /= over
	}

	return image.Point{X: max(1, int(w)), Y: max(1, int(h))}, nil
}
