package filtering

import (
	"fmt"

	"github.com/ironsheep/imagein/internal/imaging"
	"github.com/pkg/errors"
)

// Kernel is an immutable matrix of correlation coefficients with an anchor
// cell. Width and height are odd; the anchor defaults to the center.
type Kernel struct {
	width  int
	height int
	coeffs []float64
	ax, ay int
}

// NewKernel builds a kernel from rows of coefficients.
//
// Returns an error wrapping ErrConstruction when the matrix is empty, has
// an even dimension or is ragged.
func NewKernel(rows [][]float64) (Kernel, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Kernel{}, errors.Wrap(imaging.ErrConstruction, "empty kernel")
	}
	width := len(rows[0])
	coeffs := make([]float64, 0, width*len(rows))
	for y, row := range rows {
		if len(row) != width {
			return Kernel{}, errors.Wrapf(imaging.ErrConstruction, "kernel row %d has %d coefficients, want %d", y, len(row), width)
		}
		coeffs = append(coeffs, row...)
	}
	return NewKernelData(width, len(rows), coeffs)
}

// NewKernelData builds a kernel from width*height row-major coefficients.
func NewKernelData(width, height int, coeffs []float64) (Kernel, error) {
	if width <= 0 || height <= 0 || width%2 == 0 || height%2 == 0 {
		return Kernel{}, errors.Wrapf(imaging.ErrConstruction, "kernel must have odd positive dimensions, got %dx%d", width, height)
	}
	if len(coeffs) != width*height {
		return Kernel{}, errors.Wrapf(imaging.ErrConstruction, "kernel holds %d coefficients, want %d", len(coeffs), width*height)
	}
	return Kernel{
		width:  width,
		height: height,
		coeffs: append([]float64(nil), coeffs...),
		ax:     width / 2,
		ay:     height / 2,
	}, nil
}

// WithAnchor returns a copy of k anchored at (ax, ay). The anchor must be
// a cell of the kernel.
func (k Kernel) WithAnchor(ax, ay int) (Kernel, error) {
	if ax < 0 || ax >= k.width || ay < 0 || ay >= k.height {
		return Kernel{}, errors.Wrapf(imaging.ErrConstruction, "anchor (%d,%d) outside %dx%d kernel", ax, ay, k.width, k.height)
	}
	k.ax, k.ay = ax, ay
	return k, nil
}

// Width returns the number of kernel columns.
func (k Kernel) Width() int { return k.width }

// Height returns the number of kernel rows.
func (k Kernel) Height() int { return k.height }

// Anchor returns the anchor cell.
func (k Kernel) Anchor() (int, int) { return k.ax, k.ay }

// At returns the coefficient at column x, row y.
func (k Kernel) At(x, y int) float64 { return k.coeffs[y*k.width+x] }

// Sum returns the sum of all coefficients.
func (k Kernel) Sum() float64 {
	var s float64
	for _, c := range k.coeffs {
		s += c
	}
	return s
}

func (k Kernel) valid() bool {
	return k.width > 0 && len(k.coeffs) == k.width*k.height
}

func (k Kernel) String() string {
	return fmt.Sprintf("%dx%d@(%d,%d)", k.width, k.height, k.ax, k.ay)
}
