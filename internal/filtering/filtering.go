package filtering

import (
	"context"
	"math"
	"runtime"
	"time"

	"github.com/ironsheep/imagein/internal/algorithm"
	"github.com/ironsheep/imagein/internal/imaging"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// numCPU caps the number of row bands. Replaced in tests.
var numCPU = runtime.NumCPU

// Combination selects how the responses of several kernels are merged.
type Combination int

const (
	// Sum adds the kernel responses.
	Sum Combination = iota
	// Magnitude takes the Euclidean norm of the kernel responses.
	Magnitude
)

func (c Combination) String() string {
	switch c {
	case Sum:
		return "sum"
	case Magnitude:
		return "magnitude"
	}
	return "combination(invalid)"
}

type options struct {
	name        string
	policy      Policy
	combination Combination
	workers     int
	log         *logrus.Entry
}

// Option configures a Filtering engine.
type Option func(*options)

// WithPolicy sets the boundary policy. Default Black.
func WithPolicy(p Policy) Option { return func(o *options) { o.policy = p } }

// WithCombination sets how kernel responses are merged. Default Sum.
func WithCombination(c Combination) Option { return func(o *options) { o.combination = c } }

// WithWorkers bounds the number of row bands processed in parallel.
// 0 means one per CPU; 1 runs inline on the calling goroutine.
func WithWorkers(n int) Option { return func(o *options) { o.workers = n } }

// WithLogger sets the entry used for per-pass debug logs.
func WithLogger(log *logrus.Entry) Option { return func(o *options) { o.log = log } }

// WithName overrides the algorithm name reported by Name.
func WithName(name string) Option { return func(o *options) { o.name = name } }

// Filtering is a spatial correlation filter over one or more kernels.
//
// For every output sample (x, y, c) each kernel k contributes
//
//	r_k = Σ k[ky][kx] * in(x+kx-ax, y+ky-ay, c)
//
// where samples outside the image are resolved by the boundary policy. The
// responses are merged by the combination rule and integer outputs are
// rounded and clamped into the input's domain. Rows are split into bands
// processed concurrently; the result does not depend on the worker count.
//
// A Filtering is immutable and safe for concurrent use.
type Filtering[T imaging.Pixel] struct {
	kernels     []Kernel
	name        string
	policy      Policy
	combination Combination
	workers     int
	log         *logrus.Entry
}

var _ algorithm.Algorithm[uint8] = (*Filtering[uint8])(nil)

// New builds a filtering engine.
//
// Returns an error wrapping ErrConstruction when no kernel is given, a
// kernel is the zero value, the policy or combination is unknown, or the
// worker count is negative.
func New[T imaging.Pixel](kernels []Kernel, opts ...Option) (*Filtering[T], error) {
	o := options{name: "filtering", policy: Black, combination: Sum}
	for _, opt := range opts {
		opt(&o)
	}
	if len(kernels) == 0 {
		return nil, errors.Wrap(imaging.ErrConstruction, "filtering needs at least one kernel")
	}
	for i, k := range kernels {
		if !k.valid() {
			return nil, errors.Wrapf(imaging.ErrConstruction, "kernel %d is not initialized", i)
		}
	}
	if !o.policy.Valid() {
		return nil, errors.Wrapf(imaging.ErrConstruction, "invalid boundary %s", o.policy)
	}
	if o.combination != Sum && o.combination != Magnitude {
		return nil, errors.Wrapf(imaging.ErrConstruction, "invalid %s", o.combination)
	}
	if o.workers < 0 {
		return nil, errors.Wrapf(imaging.ErrConstruction, "negative worker count %d", o.workers)
	}
	if o.workers == 0 {
		o.workers = numCPU()
	}
	if o.log == nil {
		o.log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Filtering[T]{
		kernels:     append([]Kernel(nil), kernels...),
		name:        o.name,
		policy:      o.policy,
		combination: o.combination,
		workers:     o.workers,
		log:         o.log.WithField("component", "filtering"),
	}, nil
}

func (f *Filtering[T]) Name() string { return f.name }
func (f *Filtering[T]) Arity() int   { return 1 }

// Policy returns the boundary policy.
func (f *Filtering[T]) Policy() Policy { return f.policy }

// Kernels returns a copy of the kernel list.
func (f *Filtering[T]) Kernels() []Kernel { return append([]Kernel(nil), f.kernels...) }

// Apply filters a single image.
func (f *Filtering[T]) Apply(inputs ...*imaging.Image[T]) (*imaging.Image[T], error) {
	if err := algorithm.CheckInputs(1, false, inputs); err != nil {
		return nil, err
	}
	return f.ApplyContext(context.Background(), inputs[0])
}

// ApplyContext filters img, stopping early when ctx is cancelled. The first
// band error cancels the remaining bands and is returned.
func (f *Filtering[T]) ApplyContext(ctx context.Context, img *imaging.Image[T]) (*imaging.Image[T], error) {
	if img == nil {
		return nil, errors.Wrap(imaging.ErrConstruction, "nil input")
	}
	start := time.Now()
	out := imaging.BlankLike(img)
	n := min(f.workers, numCPU(), img.Height())

	if n <= 1 {
		if err := f.filterRows(ctx, img, out, 0, img.Height()); err != nil {
			return nil, err
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		for _, b := range bands(img.Height(), n) {
			b := b
			g.Go(func() error {
				return f.filterRows(gctx, img, out, b.start, b.end)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	f.log.WithFields(logrus.Fields{
		"filter":   f.name,
		"image":    img.String(),
		"policy":   f.policy.String(),
		"bands":    max(n, 1),
		"duration": time.Since(start),
	}).Debug("filter pass complete")
	return out, nil
}

// filterRows computes output rows [y0, y1).
func (f *Filtering[T]) filterRows(ctx context.Context, in, out *imaging.Image[T], y0, y1 int) error {
	w, channels := in.Width(), in.Channels()
	maxValue := in.MaxValue()
	responses := make([]float64, len(f.kernels))
	for y := y0; y < y1; y++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for x := 0; x < w; x++ {
			for c := 0; c < channels; c++ {
				for i, k := range f.kernels {
					responses[i] = f.correlate(in, k, x, y, c)
				}
				out.Set(x, y, c, imaging.FromFloat[T](f.combine(responses), maxValue))
			}
		}
	}
	return nil
}

func (f *Filtering[T]) correlate(in *imaging.Image[T], k Kernel, x, y, c int) float64 {
	var acc float64
	for ky := 0; ky < k.height; ky++ {
		sy := y + ky - k.ay
		for kx := 0; kx < k.width; kx++ {
			coeff := k.coeffs[ky*k.width+kx]
			if coeff == 0 {
				continue
			}
			acc += coeff * f.sample(in, x+kx-k.ax, sy, c)
		}
	}
	return acc
}

func (f *Filtering[T]) sample(in *imaging.Image[T], x, y, c int) float64 {
	w, h := in.Width(), in.Height()
	if x >= 0 && x < w && y >= 0 && y < h {
		return float64(in.At(x, y, c))
	}
	rx, ry, ok := f.policy.Resolve(x, y, w, h)
	if !ok {
		return 0
	}
	v, ok := in.Lookup(rx, ry, c)
	if !ok {
		return 0
	}
	return float64(v)
}

func (f *Filtering[T]) combine(responses []float64) float64 {
	if len(responses) == 1 {
		if f.combination == Magnitude {
			return math.Abs(responses[0])
		}
		return responses[0]
	}
	var acc float64
	for _, r := range responses {
		if f.combination == Magnitude {
			acc += r * r
		} else {
			acc += r
		}
	}
	if f.combination == Magnitude {
		return math.Sqrt(acc)
	}
	return acc
}

type band struct{ start, end int }

// bands splits rows [0, rows) into n contiguous bands whose sizes differ by
// at most one.
func bands(rows, n int) []band {
	if n > rows {
		n = rows
	}
	if n < 1 {
		n = 1
	}
	out := make([]band, 0, n)
	base, extra := rows/n, rows%n
	start := 0
	for i := 0; i < n; i++ {
		size := base
		if i < extra {
			size++
		}
		out = append(out, band{start: start, end: start + size})
		start += size
	}
	return out
}
