package pixel

import (
	"fmt"
	"image"
)

// Region is an axis-aligned rectangle of pixels: top-left corner plus size.
type Region struct {
	X, Y          int
	Width, Height int
}

// NewRegion returns the region at (x,y) of size w×h. Negative origins and
// empty extents are rejected.
func NewRegion(x, y, w, h int) (Region, error) {
	if x < 0 || y < 0 || w <= 0 || h <= 0 {
		return Region{}, fmt.Errorf("%w: (%d,%d) %dx%d", ErrInvalidRegion, x, y, w, h)
	}
	return Region{X: x, Y: y, Width: w, Height: h}, nil
}

// Min is the inclusive top-left corner.
func (r Region) Min() image.Point { return image.Pt(r.X, r.Y) }

// Max is the inclusive bottom-right corner.
func (r Region) Max() image.Point { return image.Pt(r.X+r.Width-1, r.Y+r.Height-1) }

// Area returns the number of pixels in r.
func (r Region) Area() int { return r.Width * r.Height }

// In reports whether r lies entirely inside o.
func (r Region) In(o Region) bool {
	return r.X >= o.X && r.Y >= o.Y &&
		r.X+r.Width <= o.X+o.Width &&
		r.Y+r.Height <= o.Y+o.Height
}

func (r Region) String() string {
	return fmt.Sprintf("(%d,%d) %dx%d", r.X, r.Y, r.Width, r.Height)
}

// Split cuts r into four quadrants ordered top-left, bottom-left, top-right,
// bottom-right. Odd sizes give the extra row/column to the bottom/right half.
// Regions with a side shorter than 2 are not split.
func (r Region) Split() (q [4]Region, ok bool) {
	if r.Width < 2 || r.Height < 2 {
		return q, false
	}
	left := r.Width / 2
	right := r.Width - left
	up := r.Height / 2
	down := r.Height - up

	q[0] = Region{X: r.X, Y: r.Y, Width: left, Height: up}
	q[1] = Region{X: r.X, Y: r.Y + up, Width: left, Height: down}
	q[2] = Region{X: r.X + left, Y: r.Y, Width: right, Height: up}
	q[3] = Region{X: r.X + left, Y: r.Y + up, Width: right, Height: down}
	return q, true
}
