package algorithm

import (
	"math"

	"github.com/ironsheep/imagein/internal/imaging"
)

// Identity returns a copy of its single input.
type Identity[T imaging.Pixel] struct{}

func (Identity[T]) Name() string { return "identity" }
func (Identity[T]) Arity() int   { return 1 }

func (Identity[T]) Apply(inputs ...*imaging.Image[T]) (*imaging.Image[T], error) {
	if err := CheckInputs(1, false, inputs); err != nil {
		return nil, err
	}
	return inputs[0].Clone(), nil
}

// Inversion maps every sample v to MaxValue-v, where MaxValue is taken from
// the input's depth. A binarized image therefore swaps 0 and 1.
type Inversion[T imaging.Pixel] struct{}

func (Inversion[T]) Name() string { return "inversion" }
func (Inversion[T]) Arity() int   { return 1 }

func (Inversion[T]) Apply(inputs ...*imaging.Image[T]) (*imaging.Image[T], error) {
	if err := CheckInputs(1, false, inputs); err != nil {
		return nil, err
	}
	in := inputs[0]
	out := imaging.BlankLike(in)
	maxValue := in.MaxValue()
	dst := out.Pix()
	for i, v := range in.Pix() {
		dst[i] = imaging.FromFloat[T](float64(maxValue)-float64(v), maxValue)
	}
	return out, nil
}

// Difference computes the per-sample absolute difference |a-b| of two
// images of identical shape. The result has the depth of the first input.
type Difference[T imaging.Pixel] struct{}

func (Difference[T]) Name() string { return "difference" }
func (Difference[T]) Arity() int   { return 2 }

func (Difference[T]) Apply(inputs ...*imaging.Image[T]) (*imaging.Image[T], error) {
	if err := CheckInputs(2, true, inputs); err != nil {
		return nil, err
	}
	a, b := inputs[0], inputs[1]
	out := imaging.BlankLike(a)
	maxValue := a.MaxValue()
	dst, bp := out.Pix(), b.Pix()
	for i, v := range a.Pix() {
		dst[i] = imaging.FromFloat[T](math.Abs(float64(v)-float64(bp[i])), maxValue)
	}
	return out, nil
}
