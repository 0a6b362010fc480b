package morphology

import (
	"strings"

	"github.com/ironsheep/imagein/internal/algorithm"
	"github.com/ironsheep/imagein/internal/imaging"
	"github.com/pkg/errors"
)

// Operation selects a morphological operator.
type Operation int

const (
	// Erode keeps the pixels whose element neighbourhood is entirely set.
	Erode Operation = iota
	// Dilate sets every pixel the element reaches from a set pixel.
	Dilate
	// Open erodes then dilates, removing specks smaller than the element.
	Open
	// Close dilates then erodes, filling gaps smaller than the element.
	Close
	// Gradient keeps the dilation minus the erosion, leaving the outlines.
	Gradient
)

var operationNames = [...]string{
	Erode:    "erosion",
	Dilate:   "dilation",
	Open:     "opening",
	Close:    "closing",
	Gradient: "gradient",
}

func (op Operation) String() string {
	if op < Erode || op > Gradient {
		return "operation(invalid)"
	}
	return operationNames[op]
}

// ParseOperation accepts both the operator names ("erosion") and their
// verbs ("erode").
func ParseOperation(name string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "erosion", "erode":
		return Erode, nil
	case "dilation", "dilate":
		return Dilate, nil
	case "opening", "open":
		return Open, nil
	case "closing", "close":
		return Close, nil
	case "gradient":
		return Gradient, nil
	}
	return Erode, errors.Wrapf(imaging.ErrConstruction, "unknown morphological operation %q", name)
}

// Morphology applies a binary morphological operator to every channel.
//
// Input samples are true when non-zero. Output samples are MaxValue of the
// input's depth when true and 0 otherwise, so the output keeps the input's
// element type and depth. Samples outside the image are false.
type Morphology[T imaging.Pixel] struct {
	op      Operation
	offsets []offset
	reachX  int
	reachY  int
}

var _ algorithm.Algorithm[uint8] = (*Morphology[uint8])(nil)

// New builds a morphology algorithm from a snapshot of se.
func New[T imaging.Pixel](op Operation, se *StructElem) (*Morphology[T], error) {
	if op < Erode || op > Gradient {
		return nil, errors.Wrapf(imaging.ErrConstruction, "invalid %s", op)
	}
	if se == nil {
		return nil, errors.Wrap(imaging.ErrConstruction, "nil structuring element")
	}
	offs := se.offsets()
	if len(offs) == 0 {
		return nil, errors.Wrap(imaging.ErrConstruction, "structuring element has no set cell")
	}
	m := &Morphology[T]{op: op, offsets: offs}
	for _, o := range offs {
		m.reachX = max(m.reachX, abs(o.dx))
		m.reachY = max(m.reachY, abs(o.dy))
	}
	return m, nil
}

// NewErosion keeps a pixel when every set cell of se, placed at the pixel,
// covers a true pixel.
func NewErosion[T imaging.Pixel](se *StructElem) (*Morphology[T], error) { return New[T](Erode, se) }

// NewDilation sets a pixel when the reflected element placed at the pixel
// covers any true pixel.
func NewDilation[T imaging.Pixel](se *StructElem) (*Morphology[T], error) { return New[T](Dilate, se) }

// NewOpening is erosion followed by dilation. The result is a subset of
// the input.
func NewOpening[T imaging.Pixel](se *StructElem) (*Morphology[T], error) { return New[T](Open, se) }

// NewClosing is dilation followed by erosion. The result is a superset of
// the input, including next to the border.
func NewClosing[T imaging.Pixel](se *StructElem) (*Morphology[T], error) { return New[T](Close, se) }

// NewGradient is dilation minus erosion: the pixels on either side of a
// shape boundary.
func NewGradient[T imaging.Pixel](se *StructElem) (*Morphology[T], error) { return New[T](Gradient, se) }

func (m *Morphology[T]) Name() string         { return m.op.String() }
func (m *Morphology[T]) Arity() int           { return 1 }
func (m *Morphology[T]) Operation() Operation { return m.op }

func (m *Morphology[T]) Apply(inputs ...*imaging.Image[T]) (*imaging.Image[T], error) {
	if err := algorithm.CheckInputs(1, false, inputs); err != nil {
		return nil, err
	}
	in := inputs[0]
	w, h := in.Width(), in.Height()
	out := imaging.BlankLike(in)
	on := T(in.MaxValue())

	for c := 0; c < in.Channels(); c++ {
		src := newPlane(w, h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				src.set(x, y, in.At(x, y, c) != 0)
			}
		}
		res := m.run(src)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if res.at(x, y) {
					out.Set(x, y, c, on)
				}
			}
		}
	}
	return out, nil
}

func (m *Morphology[T]) run(src *plane) *plane {
	switch m.op {
	case Dilate:
		return dilate(src, m.offsets)
	case Open:
		return dilate(erode(src, m.offsets), m.offsets)
	case Close:
		padded := src.pad(m.reachX, m.reachY)
		closed := erode(dilate(padded, m.offsets), m.offsets)
		return closed.crop(m.reachX, m.reachY, src.w, src.h)
	case Gradient:
		d, e := dilate(src, m.offsets), erode(src, m.offsets)
		for i := range d.bits {
			d.bits[i] = d.bits[i] && !e.bits[i]
		}
		return d
	default:
		return erode(src, m.offsets)
	}
}

// plane is a boolean raster with false outside its bounds.
type plane struct {
	w, h int
	bits []bool
}

func newPlane(w, h int) *plane {
	return &plane{w: w, h: h, bits: make([]bool, w*h)}
}

func (p *plane) at(x, y int) bool {
	if x < 0 || x >= p.w || y < 0 || y >= p.h {
		return false
	}
	return p.bits[y*p.w+x]
}

func (p *plane) set(x, y int, v bool) { p.bits[y*p.w+x] = v }

// pad returns a copy surrounded by rx clear columns and ry clear rows on
// each side.
func (p *plane) pad(rx, ry int) *plane {
	out := newPlane(p.w+2*rx, p.h+2*ry)
	for y := 0; y < p.h; y++ {
		copy(out.bits[(y+ry)*out.w+rx:], p.bits[y*p.w:(y+1)*p.w])
	}
	return out
}

func (p *plane) crop(x0, y0, w, h int) *plane {
	out := newPlane(w, h)
	for y := 0; y < h; y++ {
		copy(out.bits[y*w:(y+1)*w], p.bits[(y+y0)*p.w+x0:])
	}
	return out
}

func erode(src *plane, offs []offset) *plane {
	out := newPlane(src.w, src.h)
	for y := 0; y < src.h; y++ {
		for x := 0; x < src.w; x++ {
			keep := true
			for _, o := range offs {
				if !src.at(x+o.dx, y+o.dy) {
					keep = false
					break
				}
			}
			out.bits[y*src.w+x] = keep
		}
	}
	return out
}

func dilate(src *plane, offs []offset) *plane {
	out := newPlane(src.w, src.h)
	for y := 0; y < src.h; y++ {
		for x := 0; x < src.w; x++ {
			for _, o := range offs {
				if src.at(x-o.dx, y-o.dy) {
					out.bits[y*src.w+x] = true
					break
				}
			}
		}
	}
	return out
}
