package threshold

import (
	"github.com/ironsheep/imagein/internal/histogram"
	"github.com/ironsheep/imagein/internal/imaging"
)

// Otsu returns the threshold t that maximizes the between-class variance
// of a histogram, where the lower class holds values [0, t) and the upper
// class values [t, Width).
//
// Candidates run from 1 to Width-1 and only a strict improvement replaces
// the current best, so the smallest maximizing t wins. An empty histogram,
// a single-bucket histogram or one with a single populated value returns 0.
func Otsu(h *histogram.Histogram) int {
	n := h.Width()
	if n < 2 {
		return 0
	}
	var total, sum float64
	for v := 0; v < n; v++ {
		c := float64(h.At(v))
		total += c
		sum += float64(v) * c
	}
	if total == 0 {
		return 0
	}

	var below, sumBelow, best float64
	threshold := 0
	for t := 1; t < n; t++ {
		c := float64(h.At(t - 1))
		below += c
		sumBelow += float64(t-1) * c
		above := total - below
		if below == 0 || above == 0 {
			continue
		}
		meanBelow := sumBelow / below
		meanAbove := (sum - sumBelow) / above
		d := meanBelow - meanAbove
		if between := below * above * d * d; between > best {
			best, threshold = between, t
		}
	}
	return threshold
}

// OtsuChannel computes the Otsu threshold of one channel over the whole
// image.
func OtsuChannel[T imaging.Pixel](img *imaging.Image[T], channel int) (int, error) {
	h, err := histogram.New(img, channel, img.Bounds())
	if err != nil {
		return 0, err
	}
	return Otsu(h), nil
}
