package algorithm

import (
	"github.com/ironsheep/imagein/internal/imaging"
	"github.com/pkg/errors"
)

// Algorithm is the uniform contract of every image algorithm.
//
// An algorithm consumes Arity() images of element type T and produces one
// freshly allocated image. Inputs are never mutated and are not retained by
// the result.
type Algorithm[T imaging.Pixel] interface {
	// Name identifies the algorithm in logs and in the registry.
	Name() string

	// Arity is the exact number of inputs Apply expects.
	Arity() int

	// Apply runs the algorithm.
	Apply(inputs ...*imaging.Image[T]) (*imaging.Image[T], error)
}

// CheckInputs validates an input list against an algorithm's arity.
//
// Returns an error wrapping:
//   - ErrArityMismatch when len(inputs) != arity
//   - ErrConstruction when an input is nil
//   - ErrDimensionMismatch when aligned is set and the inputs differ in
//     width, height or channel count
func CheckInputs[T imaging.Pixel](arity int, aligned bool, inputs []*imaging.Image[T]) error {
	if len(inputs) != arity {
		return errors.Wrapf(imaging.ErrArityMismatch, "got %d inputs, want %d", len(inputs), arity)
	}
	for i, in := range inputs {
		if in == nil {
			return errors.Wrapf(imaging.ErrConstruction, "input %d is nil", i)
		}
	}
	if !aligned {
		return nil
	}
	for i := 1; i < len(inputs); i++ {
		if !imaging.SameShape(inputs[0], inputs[i]) {
			return errors.Wrapf(imaging.ErrDimensionMismatch, "input %d is %s, input 0 is %s", i, inputs[i], inputs[0])
		}
	}
	return nil
}

// Run applies a after checking the input count against its arity. The
// error is annotated with the algorithm name.
func Run[T imaging.Pixel](a Algorithm[T], inputs ...*imaging.Image[T]) (*imaging.Image[T], error) {
	if err := CheckInputs(a.Arity(), false, inputs); err != nil {
		return nil, errors.Wrap(err, a.Name())
	}
	out, err := a.Apply(inputs...)
	if err != nil {
		return nil, errors.Wrap(err, a.Name())
	}
	return out, nil
}

// Func adapts a closure to the Algorithm contract.
type Func[T imaging.Pixel] struct {
	name    string
	arity   int
	aligned bool
	fn      func(inputs []*imaging.Image[T]) (*imaging.Image[T], error)
}

// NewFunc wraps fn as an algorithm. Inputs are checked with CheckInputs
// before fn is called, so fn may index inputs directly.
func NewFunc[T imaging.Pixel](name string, arity int, aligned bool, fn func([]*imaging.Image[T]) (*imaging.Image[T], error)) *Func[T] {
	return &Func[T]{name: name, arity: arity, aligned: aligned, fn: fn}
}

func (f *Func[T]) Name() string { return f.name }
func (f *Func[T]) Arity() int   { return f.arity }

func (f *Func[T]) Apply(inputs ...*imaging.Image[T]) (*imaging.Image[T], error) {
	if err := CheckInputs(f.arity, f.aligned, inputs); err != nil {
		return nil, err
	}
	return f.fn(inputs)
}

// Chain pipes a single image through a sequence of unary algorithms.
type Chain[T imaging.Pixel] struct {
	stages []Algorithm[T]
}

// NewChain builds a chain. Every stage must have arity 1 and at least one
// stage is required.
func NewChain[T imaging.Pixel](stages ...Algorithm[T]) (*Chain[T], error) {
	if len(stages) == 0 {
		return nil, errors.Wrap(imaging.ErrConstruction, "chain needs at least one stage")
	}
	for i, s := range stages {
		if s == nil {
			return nil, errors.Wrapf(imaging.ErrConstruction, "chain stage %d is nil", i)
		}
		if s.Arity() != 1 {
			return nil, errors.Wrapf(imaging.ErrConstruction, "chain stage %d (%s) has arity %d", i, s.Name(), s.Arity())
		}
	}
	return &Chain[T]{stages: append([]Algorithm[T](nil), stages...)}, nil
}

func (c *Chain[T]) Name() string {
	name := "chain("
	for i, s := range c.stages {
		if i > 0 {
			name += ","
		}
		name += s.Name()
	}
	return name + ")"
}

func (c *Chain[T]) Arity() int { return 1 }

func (c *Chain[T]) Apply(inputs ...*imaging.Image[T]) (*imaging.Image[T], error) {
	if err := CheckInputs(1, false, inputs); err != nil {
		return nil, err
	}
	img := inputs[0]
	for _, s := range c.stages {
		out, err := s.Apply(img)
		if err != nil {
			return nil, errors.Wrap(err, s.Name())
		}
		img = out
	}
	if img == inputs[0] {
		img = img.Clone()
	}
	return img, nil
}
