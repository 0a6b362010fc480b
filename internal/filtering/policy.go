package filtering

import (
	"strconv"
	"strings"

	"github.com/ironsheep/imagein/internal/imaging"
	"github.com/pkg/errors"
)

// Policy selects how samples outside the image are resolved.
type Policy int

const (
	// Black reads every outside sample as 0.
	Black Policy = iota
	// Mirror reflects about the edge pixel: -1 reads 1, w reads w-2.
	Mirror
	// Nearest clamps to the closest edge pixel.
	Nearest
	// Toroidal wraps both axes.
	Toroidal
	// Spherical wraps horizontally; crossing a pole reflects the row and
	// shifts the column by half the width.
	Spherical
)

var policyNames = [...]string{
	Black:     "black",
	Mirror:    "mirror",
	Nearest:   "nearest",
	Toroidal:  "toroidal",
	Spherical: "spherical",
}

// Valid reports whether p is one of the defined policies.
func (p Policy) Valid() bool {
	return p >= Black && p <= Spherical
}

func (p Policy) String() string {
	if !p.Valid() {
		return "policy(" + strconv.Itoa(int(p)) + ")"
	}
	return policyNames[p]
}

// ParsePolicy resolves a policy name, case-insensitively.
func ParsePolicy(name string) (Policy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for p, n := range policyNames {
		if n == name {
			return Policy(p), nil
		}
	}
	return Black, errors.Wrapf(imaging.ErrConstruction, "unknown boundary policy %q", name)
}

// PolicyNames lists the accepted policy names.
func PolicyNames() []string {
	return append([]string(nil), policyNames[:]...)
}

// Resolve maps a possibly out-of-bounds coordinate of a w x h image to the
// in-bounds coordinate whose sample should be read. ok is false when the
// sample reads as 0. Callers only need to resolve coordinates outside the
// image.
func (p Policy) Resolve(x, y, w, h int) (int, int, bool) {
	switch p {
	case Mirror:
		return mirror(x, w), mirror(y, h), true
	case Nearest:
		return clamp(x, 0, w-1), clamp(y, 0, h-1), true
	case Toroidal:
		return wrap(x, w), wrap(y, h), true
	case Spherical:
		x, y = sphere(x, y, w, h)
		return x, y, true
	default:
		return 0, 0, false
	}
}

// mirror reflects i into [0, n) with period 2(n-1).
func mirror(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i = wrap(i, period)
	if i >= n {
		i = period - i
	}
	return i
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sphere folds y across the poles until it lands inside [0, h), shifting x
// by half a turn per crossing, then wraps x.
func sphere(x, y, w, h int) (int, int) {
	for y < 0 || y >= h {
		if y < 0 {
			y = -y - 1
		} else {
			y = 2*h - y - 1
		}
		x += w / 2
	}
	return wrap(x, w), y
}
