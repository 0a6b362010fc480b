package morphology

import (
	"strings"

	"github.com/ironsheep/imagein/internal/imaging"
	"github.com/pkg/errors"
)

// StructElem is a boolean structuring element with an origin cell.
//
// The element always holds at least one set cell. It changes only through
// Set, Resize and SetOrigin; algorithms take a snapshot when they are built,
// so later mutations do not affect them.
type StructElem struct {
	width  int
	height int
	mask   []bool
	ox, oy int
}

type offset struct{ dx, dy int }

// NewStructElem builds an element from rows of cells and an origin.
//
// Returns an error wrapping ErrConstruction for an empty or ragged mask, a
// mask without any set cell, or an origin outside the mask.
func NewStructElem(mask [][]bool, ox, oy int) (*StructElem, error) {
	if len(mask) == 0 || len(mask[0]) == 0 {
		return nil, errors.Wrap(imaging.ErrConstruction, "empty structuring element")
	}
	se := &StructElem{width: len(mask[0]), height: len(mask)}
	se.mask = make([]bool, 0, se.width*se.height)
	for y, row := range mask {
		if len(row) != se.width {
			return nil, errors.Wrapf(imaging.ErrConstruction, "structuring element row %d has %d cells, want %d", y, len(row), se.width)
		}
		se.mask = append(se.mask, row...)
	}
	if se.count() == 0 {
		return nil, errors.Wrap(imaging.ErrConstruction, "structuring element has no set cell")
	}
	if err := se.SetOrigin(ox, oy); err != nil {
		return nil, err
	}
	return se, nil
}

// ParseStructElem reads an element from lines of '#' (set) and '.' (clear)
// with the origin at (ox, oy).
func ParseStructElem(text string, ox, oy int) (*StructElem, error) {
	var rows [][]bool
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		row := make([]bool, len(line))
		for i, ch := range line {
			switch ch {
			case '#':
				row[i] = true
			case '.':
			default:
				return nil, errors.Wrapf(imaging.ErrConstruction, "invalid structuring element cell %q", ch)
			}
		}
		rows = append(rows, row)
	}
	return NewStructElem(rows, ox, oy)
}

// shaped builds a (2r+1)x(2r+1) element centered on the origin whose cells
// are set where in(dx, dy) holds.
func shaped(kind string, r int, in func(dx, dy int) bool) (*StructElem, error) {
	if r < 0 {
		return nil, errors.Wrapf(imaging.ErrConstruction, "%s radius %d is negative", kind, r)
	}
	size := 2*r + 1
	mask := make([][]bool, size)
	for y := range mask {
		mask[y] = make([]bool, size)
		for x := range mask[y] {
			mask[y][x] = in(x-r, y-r)
		}
	}
	return NewStructElem(mask, r, r)
}

// Disk returns the Euclidean disk of radius r: cells with dx²+dy² <= r².
func Disk(r int) (*StructElem, error) {
	return shaped("disk", r, func(dx, dy int) bool { return dx*dx+dy*dy <= r*r })
}

// Diamond returns the city-block ball of radius r: cells with |dx|+|dy| <= r.
func Diamond(r int) (*StructElem, error) {
	return shaped("diamond", r, func(dx, dy int) bool { return abs(dx)+abs(dy) <= r })
}

// Square returns the full (2r+1)x(2r+1) square.
func Square(r int) (*StructElem, error) {
	return shaped("square", r, func(int, int) bool { return true })
}

// Shape builds a named element: "disk", "diamond" or "square".
func Shape(name string, r int) (*StructElem, error) {
	switch strings.ToLower(name) {
	case "disk":
		return Disk(r)
	case "diamond":
		return Diamond(r)
	case "square":
		return Square(r)
	}
	return nil, errors.Wrapf(imaging.ErrConstruction, "unknown structuring element shape %q", name)
}

// Width returns the number of columns.
func (se *StructElem) Width() int { return se.width }

// Height returns the number of rows.
func (se *StructElem) Height() int { return se.height }

// Origin returns the origin cell.
func (se *StructElem) Origin() (int, int) { return se.ox, se.oy }

// At reports whether cell (x, y) is set. Cells outside the mask are clear.
func (se *StructElem) At(x, y int) bool {
	if x < 0 || x >= se.width || y < 0 || y >= se.height {
		return false
	}
	return se.mask[y*se.width+x]
}

// Set changes cell (x, y).
//
// Returns ErrOutOfRange for a cell outside the mask and ErrConstruction
// when clearing the last set cell.
func (se *StructElem) Set(x, y int, v bool) error {
	if x < 0 || x >= se.width || y < 0 || y >= se.height {
		return errors.Wrapf(imaging.ErrOutOfRange, "cell (%d,%d) outside %dx%d element", x, y, se.width, se.height)
	}
	i := y*se.width + x
	if !v && se.mask[i] && se.count() == 1 {
		return errors.Wrap(imaging.ErrConstruction, "cannot clear the last set cell")
	}
	se.mask[i] = v
	return nil
}

// Resize changes the mask dimensions, keeping cells that remain inside.
// New cells are clear; the origin is clamped into the new mask.
//
// Returns ErrConstruction for non-positive sizes or when no set cell
// survives.
func (se *StructElem) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.Wrapf(imaging.ErrConstruction, "invalid structuring element size %dx%d", width, height)
	}
	mask := make([]bool, width*height)
	kept := 0
	for y := 0; y < min(height, se.height); y++ {
		for x := 0; x < min(width, se.width); x++ {
			if se.mask[y*se.width+x] {
				mask[y*width+x] = true
				kept++
			}
		}
	}
	if kept == 0 {
		return errors.Wrap(imaging.ErrConstruction, "resize would clear every set cell")
	}
	se.width, se.height, se.mask = width, height, mask
	se.ox, se.oy = min(se.ox, width-1), min(se.oy, height-1)
	return nil
}

// SetOrigin moves the origin. It must be a cell of the mask.
func (se *StructElem) SetOrigin(x, y int) error {
	if x < 0 || x >= se.width || y < 0 || y >= se.height {
		return errors.Wrapf(imaging.ErrConstruction, "origin (%d,%d) outside %dx%d element", x, y, se.width, se.height)
	}
	se.ox, se.oy = x, y
	return nil
}

// Clone returns an independent copy.
func (se *StructElem) Clone() *StructElem {
	out := *se
	out.mask = append([]bool(nil), se.mask...)
	return &out
}

// String renders the mask with '#' for set cells and '.' for clear ones.
func (se *StructElem) String() string {
	var b strings.Builder
	for y := 0; y < se.height; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < se.width; x++ {
			if se.mask[y*se.width+x] {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
	}
	return b.String()
}

func (se *StructElem) count() int {
	n := 0
	for _, v := range se.mask {
		if v {
			n++
		}
	}
	return n
}

// offsets lists the set cells relative to the origin.
func (se *StructElem) offsets() []offset {
	out := make([]offset, 0, se.count())
	for y := 0; y < se.height; y++ {
		for x := 0; x < se.width; x++ {
			if se.mask[y*se.width+x] {
				out = append(out, offset{dx: x - se.ox, dy: y - se.oy})
			}
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
