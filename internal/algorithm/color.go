package algorithm

import (
	"github.com/ironsheep/imagein/internal/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// rgbAt reads the first three channels of (x, y) as a colour normalized by
// maxValue.
func rgbAt[T imaging.Pixel](img *imaging.Image[T], x, y int, maxValue float64) colorful.Color {
	return colorful.Color{
		R: float64(img.At(x, y, 0)) / maxValue,
		G: float64(img.At(x, y, 1)) / maxValue,
		B: float64(img.At(x, y, 2)) / maxValue,
	}
}

func requireRGB[T imaging.Pixel](img *imaging.Image[T]) error {
	if img.Channels() < 3 {
		return errors.Wrapf(imaging.ErrDimensionMismatch, "colour transform needs 3 or 4 channels, got %s", img)
	}
	return nil
}

// Luminance reduces an RGB or RGBA image to one channel holding the CIE
// L* lightness of each pixel, scaled to the input's domain. Alpha is ignored.
type Luminance[T imaging.Pixel] struct{}

func (Luminance[T]) Name() string { return "luminance" }
func (Luminance[T]) Arity() int   { return 1 }

func (Luminance[T]) Apply(inputs ...*imaging.Image[T]) (*imaging.Image[T], error) {
	if err := CheckInputs(1, false, inputs); err != nil {
		return nil, err
	}
	in := inputs[0]
	if err := requireRGB(in); err != nil {
		return nil, err
	}
	out, err := imaging.NewWithDepth[T](in.Width(), in.Height(), 1, in.Depth())
	if err != nil {
		return nil, err
	}
	maxValue := in.MaxValue()
	scale := float64(maxValue)
	for y := 0; y < in.Height(); y++ {
		for x := 0; x < in.Width(); x++ {
			l, _, _ := rgbAt(in, x, y, scale).Lab()
			out.Set(x, y, 0, imaging.FromFloat[T](l*scale, maxValue))
		}
	}
	return out, nil
}

// HSL converts RGB(A) pixels to three channels holding hue, saturation and
// lightness, each scaled to [0, MaxValue]. Hue 360 degrees maps to MaxValue.
type HSL[T imaging.Pixel] struct{}

func (HSL[T]) Name() string { return "hsl" }
func (HSL[T]) Arity() int   { return 1 }

func (HSL[T]) Apply(inputs ...*imaging.Image[T]) (*imaging.Image[T], error) {
	if err := CheckInputs(1, false, inputs); err != nil {
		return nil, err
	}
	in := inputs[0]
	if err := requireRGB(in); err != nil {
		return nil, err
	}
	out, err := imaging.NewWithDepth[T](in.Width(), in.Height(), 3, in.Depth())
	if err != nil {
		return nil, err
	}
	maxValue := in.MaxValue()
	scale := float64(maxValue)
	for y := 0; y < in.Height(); y++ {
		for x := 0; x < in.Width(); x++ {
			h, s, l := rgbAt(in, x, y, scale).Hsl()
			out.Set(x, y, 0, imaging.FromFloat[T](h/360*scale, maxValue))
			out.Set(x, y, 1, imaging.FromFloat[T](s*scale, maxValue))
			out.Set(x, y, 2, imaging.FromFloat[T](l*scale, maxValue))
		}
	}
	return out, nil
}
