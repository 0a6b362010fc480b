package histogram

import (
	"math"

	"github.com/ironsheep/imagein/internal/imaging"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Series is the read-only view shared by every histogram kind: a fixed
// number of buckets, each with a numeric value.
type Series interface {
	Width() int
	Value(i int) float64
}

// Histogram counts the occurrences of each value of one channel inside a
// region. Bucket v holds the number of pixels whose value maps to v, for v
// in [0, DomainSize). Float samples are truncated to their bucket; samples
// outside the domain are clamped to the first or last bucket.
type Histogram struct {
	counts  []int
	region  imaging.Region
	channel int
}

// Statistics summarizes the distribution of a histogram's values.
type Statistics struct {
	Total  int     `json:"total"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Mode   int     `json:"mode"`
}

func checkSource[T imaging.Pixel](img *imaging.Image[T], channel int, region imaging.Region) error {
	if img == nil {
		return errors.Wrap(imaging.ErrConstruction, "nil image")
	}
	if channel < 0 || channel >= img.Channels() {
		return errors.Wrapf(imaging.ErrOutOfRange, "channel %d outside %s", channel, img)
	}
	if !region.Within(img.Width(), img.Height()) {
		return errors.Wrapf(imaging.ErrOutOfRange, "region %+v outside %s", region, img)
	}
	return nil
}

// New computes the histogram of channel over region.
//
// Returns an error wrapping ErrOutOfRange when the channel does not exist
// or the region is empty or not entirely inside the image.
func New[T imaging.Pixel](img *imaging.Image[T], channel int, region imaging.Region) (*Histogram, error) {
	if err := checkSource(img, channel, region); err != nil {
		return nil, err
	}
	domain := img.DomainSize()
	h := &Histogram{counts: make([]int, domain), region: region, channel: channel}
	for y := region.Y; y < region.MaxY(); y++ {
		for x := region.X; x < region.MaxX(); x++ {
			h.counts[imaging.Bucket(img.At(x, y, channel), domain)]++
		}
	}
	return h, nil
}

// PerChannel computes one histogram per channel over region.
func PerChannel[T imaging.Pixel](img *imaging.Image[T], region imaging.Region) ([]*Histogram, error) {
	if img == nil {
		return nil, errors.Wrap(imaging.ErrConstruction, "nil image")
	}
	out := make([]*Histogram, img.Channels())
	for c := range out {
		h, err := New(img, c, region)
		if err != nil {
			return nil, err
		}
		out[c] = h
	}
	return out, nil
}

// Width returns the number of buckets.
func (h *Histogram) Width() int { return len(h.counts) }

// At returns the count of bucket v, or 0 outside [0, Width).
func (h *Histogram) At(v int) int {
	if v < 0 || v >= len(h.counts) {
		return 0
	}
	return h.counts[v]
}

// Value implements Series.
func (h *Histogram) Value(i int) float64 { return float64(h.At(i)) }

// Counts returns a copy of the bucket counts.
func (h *Histogram) Counts() []int { return append([]int(nil), h.counts...) }

// Total returns the sum of all buckets, which equals the region area.
func (h *Histogram) Total() int {
	total := 0
	for _, c := range h.counts {
		total += c
	}
	return total
}

// Region returns the region the histogram was computed over.
func (h *Histogram) Region() imaging.Region { return h.region }

// Channel returns the source channel.
func (h *Histogram) Channel() int { return h.channel }

// Normalized returns the bucket densities, summing to 1. An empty
// histogram yields all zeros.
func (h *Histogram) Normalized() []float64 {
	out := make([]float64, len(h.counts))
	for i, c := range h.counts {
		out[i] = float64(c)
	}
	if sum := floats.Sum(out); sum > 0 {
		floats.Scale(1/sum, out)
	}
	return out
}

// Stats computes the count-weighted mean and sample standard deviation of
// the bucket values together with the smallest, largest and most frequent
// populated bucket. Ties for the mode go to the smallest value.
func (h *Histogram) Stats() Statistics {
	values := make([]float64, len(h.counts))
	weights := make([]float64, len(h.counts))
	s := Statistics{Min: -1, Max: -1, Mode: -1}
	best := 0
	for v, c := range h.counts {
		values[v] = float64(v)
		weights[v] = float64(c)
		if c == 0 {
			continue
		}
		s.Total += c
		if s.Min < 0 {
			s.Min = v
		}
		s.Max = v
		if c > best {
			best, s.Mode = c, v
		}
	}
	if s.Total == 0 {
		return Statistics{}
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, weights)
	if math.IsNaN(s.StdDev) {
		s.StdDev = 0
	}
	return s
}

// Cumulate returns the cumulated form of h.
func (h *Histogram) Cumulate() *Cumulated {
	acc := make([]int, len(h.counts))
	running := 0
	for i, c := range h.counts {
		running += c
		acc[i] = running
	}
	return &Cumulated{counts: acc, region: h.region, channel: h.channel}
}

// Cumulated holds running sums of a histogram: bucket v counts the pixels
// whose value is at most v. It is non-decreasing and its last bucket equals
// the total.
type Cumulated struct {
	counts  []int
	region  imaging.Region
	channel int
}

// NewCumulated computes the cumulated histogram of channel over region.
func NewCumulated[T imaging.Pixel](img *imaging.Image[T], channel int, region imaging.Region) (*Cumulated, error) {
	h, err := New(img, channel, region)
	if err != nil {
		return nil, err
	}
	return h.Cumulate(), nil
}

// Width returns the number of buckets.
func (c *Cumulated) Width() int { return len(c.counts) }

// At returns the running count at v. Values above the domain return the
// total, values below it return 0.
func (c *Cumulated) At(v int) int {
	if v < 0 {
		return 0
	}
	if v >= len(c.counts) {
		return c.Total()
	}
	return c.counts[v]
}

// Value implements Series.
func (c *Cumulated) Value(i int) float64 { return float64(c.At(i)) }

// Counts returns a copy of the running counts.
func (c *Cumulated) Counts() []int { return append([]int(nil), c.counts...) }

// Total returns the last running count.
func (c *Cumulated) Total() int {
	if len(c.counts) == 0 {
		return 0
	}
	return c.counts[len(c.counts)-1]
}

// Region returns the source region.
func (c *Cumulated) Region() imaging.Region { return c.region }

// Channel returns the source channel.
func (c *Cumulated) Channel() int { return c.channel }

// Quantile returns the smallest value v whose running count reaches
// q*Total. q is clamped to [0, 1]; an empty histogram returns 0.
func (c *Cumulated) Quantile(q float64) int {
	total := c.Total()
	if total == 0 || math.IsNaN(q) {
		return 0
	}
	q = math.Max(0, math.Min(1, q))
	target := q * float64(total)
	for v, n := range c.counts {
		if float64(n) >= target {
			return v
		}
	}
	return len(c.counts) - 1
}
