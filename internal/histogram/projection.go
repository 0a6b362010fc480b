package histogram

import (
	"github.com/ironsheep/imagein/internal/imaging"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// FullSpan selects the whole projected span instead of a single line.
const FullSpan = -1

// Projection sums pixel values along one axis of a region.
//
// A horizontal projection has one bucket per region row holding the sum of
// that row across the region's columns; a vertical projection has one
// bucket per region column. When a line is selected each bucket takes only
// the pixel on that line: an absolute column for horizontal projections, an
// absolute row for vertical ones.
type Projection struct {
	values     []float64
	horizontal bool
	line       int
	region     imaging.Region
	channel    int
}

// NewProjection computes the projection of channel over region.
//
// Parameters:
//   - value: FullSpan, or the absolute column (horizontal) or row
//     (vertical) to sample. A line outside the region is rejected.
//   - horizontal: true for one bucket per row, false for one per column.
//
// Returns an error wrapping ErrOutOfRange for an invalid channel, a region
// not inside the image, or a selected line outside the region.
func NewProjection[T imaging.Pixel](img *imaging.Image[T], value int, horizontal bool, region imaging.Region, channel int) (*Projection, error) {
	if err := checkSource(img, channel, region); err != nil {
		return nil, err
	}
	p := &Projection{horizontal: horizontal, line: value, region: region, channel: channel}

	if horizontal {
		if value != FullSpan && (value < region.X || value >= region.MaxX()) {
			return nil, errors.Wrapf(imaging.ErrOutOfRange, "column %d outside region %+v", value, region)
		}
		p.values = make([]float64, region.H)
		for i := range p.values {
			y := region.Y + i
			if value != FullSpan {
				p.values[i] = float64(img.At(value, y, channel))
				continue
			}
			for x := region.X; x < region.MaxX(); x++ {
				p.values[i] += float64(img.At(x, y, channel))
			}
		}
		return p, nil
	}

	if value != FullSpan && (value < region.Y || value >= region.MaxY()) {
		return nil, errors.Wrapf(imaging.ErrOutOfRange, "row %d outside region %+v", value, region)
	}
	p.values = make([]float64, region.W)
	for i := range p.values {
		x := region.X + i
		if value != FullSpan {
			p.values[i] = float64(img.At(x, value, channel))
			continue
		}
		for y := region.Y; y < region.MaxY(); y++ {
			p.values[i] += float64(img.At(x, y, channel))
		}
	}
	return p, nil
}

// Width returns the number of buckets: region height for horizontal
// projections, region width for vertical ones.
func (p *Projection) Width() int { return len(p.values) }

// Value returns bucket i, or 0 outside [0, Width).
func (p *Projection) Value(i int) float64 {
	if i < 0 || i >= len(p.values) {
		return 0
	}
	return p.values[i]
}

// Values returns a copy of the buckets.
func (p *Projection) Values() []float64 { return append([]float64(nil), p.values...) }

// Horizontal reports the projection axis.
func (p *Projection) Horizontal() bool { return p.horizontal }

// Line returns the selected line, or FullSpan.
func (p *Projection) Line() int { return p.line }

// Region returns the source region.
func (p *Projection) Region() imaging.Region { return p.region }

// Channel returns the source channel.
func (p *Projection) Channel() int { return p.channel }

// Total returns the sum of all buckets.
func (p *Projection) Total() float64 { return floats.Sum(p.values) }

// Peak returns the index of the largest bucket, the smallest index on ties.
func (p *Projection) Peak() int {
	if len(p.values) == 0 {
		return -1
	}
	best := 0
	for i, v := range p.values {
		if v > p.values[best] {
			best = i
		}
	}
	return best
}
