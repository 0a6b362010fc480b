package filtering

import (
	"math"
	"sort"

	"github.com/ironsheep/imagein/internal/imaging"
	"github.com/pkg/errors"
)

// preset builds an engine from kernel matrices. Caller options are applied
// after the preset's name and combination and may override them.
func preset[T imaging.Pixel](name string, combination Combination, rows [][][]float64, opts []Option) (*Filtering[T], error) {
	kernels := make([]Kernel, len(rows))
	for i, r := range rows {
		k, err := NewKernel(r)
		if err != nil {
			return nil, errors.Wrap(err, name)
		}
		kernels[i] = k
	}
	all := append([]Option{WithName(name), WithCombination(combination)}, opts...)
	return New[T](kernels, all...)
}

// Identity is a 1x1 unit kernel. The output equals the input under every
// policy.
func Identity[T imaging.Pixel](opts ...Option) (*Filtering[T], error) {
	return preset[T]("identity", Sum, [][][]float64{{{1}}}, opts)
}

// UniformBlur averages the (2r+1)x(2r+1) window around each pixel.
func UniformBlur[T imaging.Pixel](radius int, opts ...Option) (*Filtering[T], error) {
	if radius < 0 {
		return nil, errors.Wrapf(imaging.ErrConstruction, "uniform blur radius %d is negative", radius)
	}
	size := 2*radius + 1
	coeff := 1 / float64(size*size)
	rows := make([][]float64, size)
	for y := range rows {
		rows[y] = make([]float64, size)
		for x := range rows[y] {
			rows[y][x] = coeff
		}
	}
	return preset[T]("uniform_blur", Sum, [][][]float64{rows}, opts)
}

// GaussianBlur convolves with a size x size Gaussian of standard deviation
// sigma, normalized to unit sum. size must be odd and sigma positive.
func GaussianBlur[T imaging.Pixel](size int, sigma float64, opts ...Option) (*Filtering[T], error) {
	if size <= 0 || size%2 == 0 {
		return nil, errors.Wrapf(imaging.ErrConstruction, "gaussian size %d must be odd and positive", size)
	}
	if !(sigma > 0) {
		return nil, errors.Wrapf(imaging.ErrConstruction, "gaussian sigma %g must be positive", sigma)
	}
	c := size / 2
	rows := make([][]float64, size)
	var total float64
	for y := range rows {
		rows[y] = make([]float64, size)
		for x := range rows[y] {
			dx, dy := float64(x-c), float64(y-c)
			v := math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma))
			rows[y][x] = v
			total += v
		}
	}
	for y := range rows {
		for x := range rows[y] {
			rows[y][x] /= total
		}
	}
	return preset[T]("gaussian_blur", Sum, [][][]float64{rows}, opts)
}

// GaussianBlurAlpha derives the Gaussian from a single smoothing factor:
// sigma = alpha and size = 2*ceil(3*alpha)+1, which keeps three standard
// deviations on each side of the center.
func GaussianBlurAlpha[T imaging.Pixel](alpha float64, opts ...Option) (*Filtering[T], error) {
	if !(alpha > 0) {
		return nil, errors.Wrapf(imaging.ErrConstruction, "gaussian alpha %g must be positive", alpha)
	}
	size := 2*int(math.Ceil(3*alpha)) + 1
	return GaussianBlur[T](size, alpha, append([]Option{WithName("gaussian_blur_alpha")}, opts...)...)
}

// Prewitt builds size x size horizontal and vertical Prewitt gradients
// merged by magnitude. size must be odd and at least 3.
func Prewitt[T imaging.Pixel](size int, opts ...Option) (*Filtering[T], error) {
	if size < 3 || size%2 == 0 {
		return nil, errors.Wrapf(imaging.ErrConstruction, "prewitt size %d must be odd and at least 3", size)
	}
	c := size / 2
	gx := make([][]float64, size)
	gy := make([][]float64, size)
	for y := 0; y < size; y++ {
		gx[y] = make([]float64, size)
		gy[y] = make([]float64, size)
		for x := 0; x < size; x++ {
			gx[y][x] = sign(x - c)
			gy[y][x] = sign(y - c)
		}
	}
	return preset[T]("prewitt", Magnitude, [][][]float64{gx, gy}, opts)
}

// Roberts is the diagonal cross gradient, padded to 3x3 so the anchor sits
// on the top-left cell of the original 2x2 operator.
func Roberts[T imaging.Pixel](opts ...Option) (*Filtering[T], error) {
	gx := [][]float64{
		{0, 0, 0},
		{0, 1, 0},
		{0, 0, -1},
	}
	gy := [][]float64{
		{0, 0, 0},
		{0, 0, 1},
		{0, -1, 0},
	}
	return preset[T]("roberts", Magnitude, [][][]float64{gx, gy}, opts)
}

// Sobel is the 3x3 Sobel gradient pair merged by magnitude.
func Sobel[T imaging.Pixel](opts ...Option) (*Filtering[T], error) {
	gx := [][]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	gy := [][]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
	return preset[T]("sobel", Magnitude, [][][]float64{gx, gy}, opts)
}

// SquareLaplacian is the 8-neighbour Laplacian.
func SquareLaplacian[T imaging.Pixel](opts ...Option) (*Filtering[T], error) {
	k := [][]float64{
		{1, 1, 1},
		{1, -8, 1},
		{1, 1, 1},
	}
	return preset[T]("square_laplacian", Sum, [][][]float64{k}, opts)
}

// Sharpen adds the 4-neighbour Laplacian response back to the image.
func Sharpen[T imaging.Pixel](opts ...Option) (*Filtering[T], error) {
	k := [][]float64{
		{0, -1, 0},
		{-1, 5, -1},
		{0, -1, 0},
	}
	return preset[T]("sharpen", Sum, [][][]float64{k}, opts)
}

func sign(v int) float64 {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// Params carries the numeric parameters of the named presets. Fields a
// preset does not use are ignored.
type Params struct {
	Radius int     `json:"radius,omitempty"` // uniform_blur
	Size   int     `json:"size,omitempty"`   // gaussian_blur, prewitt
	Sigma  float64 `json:"sigma,omitempty"`  // gaussian_blur
	Alpha  float64 `json:"alpha,omitempty"`  // gaussian_blur_alpha
}

// PresetNames lists the names accepted by NewPreset.
func PresetNames() []string {
	names := []string{
		"identity", "uniform_blur", "gaussian_blur", "gaussian_blur_alpha",
		"prewitt", "roberts", "sobel", "square_laplacian", "sharpen",
	}
	sort.Strings(names)
	return names
}

// NewPreset builds a preset by name.
func NewPreset[T imaging.Pixel](name string, p Params, opts ...Option) (*Filtering[T], error) {
	switch name {
	case "identity":
		return Identity[T](opts...)
	case "uniform_blur":
		return UniformBlur[T](p.Radius, opts...)
	case "gaussian_blur":
		return GaussianBlur[T](p.Size, p.Sigma, opts...)
	case "gaussian_blur_alpha":
		return GaussianBlurAlpha[T](p.Alpha, opts...)
	case "prewitt":
		return Prewitt[T](p.Size, opts...)
	case "roberts":
		return Roberts[T](opts...)
	case "sobel":
		return Sobel[T](opts...)
	case "square_laplacian":
		return SquareLaplacian[T](opts...)
	case "sharpen":
		return Sharpen[T](opts...)
	}
	return nil, errors.Wrapf(imaging.ErrConstruction, "unknown filter %q", name)
}
