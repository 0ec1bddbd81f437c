package maskedit

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// kappa places cubic control points so four arcs approximate a circle.
const kappa = 0.5522847498

type point struct {
	x, y float32
}

// stroke captures the tool settings at pointer-down; changing the tool mid
// stroke does not affect the stroke in progress.
type stroke struct {
	color  color.NRGBA
	radius float32
	erase  bool
}

// paintSegment renders a round-capped segment from a to b onto dst. Paint
// composites the stroke color over the layer; erase removes coverage from it.
// All sub-paths wind the same way so overlapping coverage unions instead of
// cancelling.
func paintSegment(z *vector.Rasterizer, dst *image.NRGBA, s stroke, a, b point) {
	r := s.radius
	bounds := image.Rect(
		int(math.Floor(float64(min(a.x, b.x)-r-1))),
		int(math.Floor(float64(min(a.y, b.y)-r-1))),
		int(math.Ceil(float64(max(a.x, b.x)+r+1))),
		int(math.Ceil(float64(max(a.y, b.y)+r+1))),
	).Intersect(dst.Rect)
	if bounds.Empty() {
		return
	}

	off := point{x: float32(bounds.Min.X), y: float32(bounds.Min.Y)}
	a = point{x: a.x - off.x, y: a.y - off.y}
	b = point{x: b.x - off.x, y: b.y - off.y}

	z.Reset(bounds.Dx(), bounds.Dy())
	addCircle(z, a, r)
	if a != b {
		addCircle(z, b, r)
		addSegmentBody(z, a, b, r)
	}

	if s.erase {
		z.DrawOp = draw.Src
		z.Draw(dst, bounds, image.Transparent, image.Point{})
		return
	}
	z.DrawOp = draw.Over
	z.Draw(dst, bounds, image.NewUniform(s.color), image.Point{})
}

func addCircle(z *vector.Rasterizer, c point, r float32) {
	k := r * kappa
	z.MoveTo(c.x+r, c.y)
	z.CubeTo(c.x+r, c.y-k, c.x+k, c.y-r, c.x, c.y-r)
	z.CubeTo(c.x-k, c.y-r, c.x-r, c.y-k, c.x-r, c.y)
	z.CubeTo(c.x-r, c.y+k, c.x-k, c.y+r, c.x, c.y+r)
	z.CubeTo(c.x+k, c.y+r, c.x+r, c.y+k, c.x+r, c.y)
	z.ClosePath()
}

// addSegmentBody adds the rectangle joining the two end caps.
func addSegmentBody(z *vector.Rasterizer, a, b point, r float32) {
	dx, dy := b.x-a.x, b.y-a.y
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length == 0 {
		return
	}
	nx, ny := -dy/length*r, dx/length*r
	z.MoveTo(a.x+nx, a.y+ny)
	z.LineTo(b.x+nx, b.y+ny)
	z.LineTo(b.x-nx, b.y-ny)
	z.LineTo(a.x-nx, a.y-ny)
	z.ClosePath()
}
