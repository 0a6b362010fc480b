package imaging

import "github.com/pkg/errors"

// Region is an axis-aligned rectangle given by its top-left corner and size.
//
// A Region is a plain value: it does not reference any image and may extend
// outside an image's bounds (filters use such windows before a boundary
// policy resolves them). Coordinates are 0-based; the region covers columns
// [X, X+W) and rows [Y, Y+H).
type Region struct {
	X int `json:"x"` // Left edge (inclusive)
	Y int `json:"y"` // Top edge (inclusive)
	W int `json:"width"`
	H int `json:"height"`
}

// NewRegion builds a region and rejects non-positive sizes.
//
// Returns an error wrapping ErrConstruction when width or height is not
// strictly positive.
func NewRegion(x, y, w, h int) (Region, error) {
	r := Region{X: x, Y: y, W: w, H: h}
	if r.Empty() {
		return Region{}, errors.Wrapf(ErrConstruction, "invalid region %dx%d at (%d,%d)", w, h, x, y)
	}
	return r, nil
}

// Empty reports whether the region has no area.
func (r Region) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Area returns W*H, or 0 for an empty region.
func (r Region) Area() int {
	if r.Empty() {
		return 0
	}
	return r.W * r.H
}

// MaxX returns the exclusive right edge.
func (r Region) MaxX() int { return r.X + r.W }

// MaxY returns the exclusive bottom edge.
func (r Region) MaxY() int { return r.Y + r.H }

// Contains reports whether the point (x, y) lies inside the region.
func (r Region) Contains(x, y int) bool {
	return x >= r.X && x < r.MaxX() && y >= r.Y && y < r.MaxY()
}

// Within reports whether the region is non-empty and fits entirely inside
// an image of the given dimensions.
func (r Region) Within(width, height int) bool {
	return !r.Empty() && r.X >= 0 && r.Y >= 0 && r.MaxX() <= width && r.MaxY() <= height
}

// Intersect returns the overlap of two regions. The result is empty when
// they do not overlap.
func (r Region) Intersect(o Region) Region {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.MaxX(), o.MaxX())
	y1 := min(r.MaxY(), o.MaxY())
	if x1 <= x0 || y1 <= y0 {
		return Region{}
	}
	return Region{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}
