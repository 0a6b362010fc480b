package threshold

import (
	"strconv"

	"github.com/ironsheep/imagein/internal/algorithm"
	"github.com/ironsheep/imagein/internal/imaging"
	"github.com/pkg/errors"
)

// Binarization maps each sample to 1 when it is at or above the channel's
// threshold and to 0 otherwise. The output has depth 1.
type Binarization[T imaging.Pixel] struct {
	threshold int
	otsu      bool
}

var _ algorithm.Algorithm[uint8] = (*Binarization[uint8])(nil)

// NewFixed binarizes every channel with the same threshold.
func NewFixed[T imaging.Pixel](threshold int) (*Binarization[T], error) {
	if threshold < 0 {
		return nil, errors.Wrapf(imaging.ErrConstruction, "negative threshold %d", threshold)
	}
	return &Binarization[T]{threshold: threshold}, nil
}

// NewOtsu binarizes each channel at its own Otsu threshold.
func NewOtsu[T imaging.Pixel]() *Binarization[T] {
	return &Binarization[T]{otsu: true}
}

func (b *Binarization[T]) Name() string {
	if b.otsu {
		return "binarization(otsu)"
	}
	return "binarization(" + strconv.Itoa(b.threshold) + ")"
}

func (b *Binarization[T]) Arity() int { return 1 }

// Thresholds returns the threshold applied to each channel of img.
func (b *Binarization[T]) Thresholds(img *imaging.Image[T]) ([]int, error) {
	out := make([]int, img.Channels())
	for c := range out {
		if !b.otsu {
			out[c] = b.threshold
			continue
		}
		t, err := OtsuChannel(img, c)
		if err != nil {
			return nil, err
		}
		out[c] = t
	}
	return out, nil
}

func (b *Binarization[T]) Apply(inputs ...*imaging.Image[T]) (*imaging.Image[T], error) {
	if err := algorithm.CheckInputs(1, false, inputs); err != nil {
		return nil, err
	}
	in := inputs[0]
	thresholds, err := b.Thresholds(in)
	if err != nil {
		return nil, err
	}
	out, err := imaging.NewWithDepth[T](in.Width(), in.Height(), in.Channels(), 1)
	if err != nil {
		return nil, err
	}
	channels := in.Channels()
	dst := out.Pix()
	for i, v := range in.Pix() {
		if float64(v) >= float64(thresholds[i%channels]) {
			dst[i] = 1
		}
	}
	return out, nil
}
