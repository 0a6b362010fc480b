package imaging

import (
	"fmt"

	"github.com/pkg/errors"
)

// Image is an owned multi-channel raster.
//
// Samples are stored row-major and interleaved by channel: the value of
// channel c at (x, y) lives at index (y*width+x)*channels + c. The buffer is
// never shared between images; every constructor and transform copies.
//
// An Image is safe for concurrent reads. Writers must not run concurrently
// with any other access to the same image.
type Image[T Pixel] struct {
	width    int
	height   int
	channels int
	depth    int
	pix      []T
}

// New creates an image from dimensions and a raw sample buffer.
//
// Parameters:
//   - width, height: Image size in pixels. Must both be positive.
//   - channels: Samples per pixel. Must be at least 1.
//   - data: width*height*channels samples, row-major, channel-interleaved.
//     The slice is copied; the caller keeps ownership of data.
//
// Returns an error wrapping ErrConstruction when the dimensions are invalid
// or len(data) does not match.
func New[T Pixel](width, height, channels int, data []T) (*Image[T], error) {
	img, err := NewBlank[T](width, height, channels)
	if err != nil {
		return nil, err
	}
	if len(data) != len(img.pix) {
		return nil, errors.Wrapf(ErrConstruction, "buffer holds %d samples, want %d for %dx%dx%d",
			len(data), len(img.pix), width, height, channels)
	}
	copy(img.pix, data)
	return img, nil
}

// NewBlank creates a zero-filled image at the natural depth of T.
func NewBlank[T Pixel](width, height, channels int) (*Image[T], error) {
	return NewWithDepth[T](width, height, channels, NaturalDepth[T]())
}

// NewWithDepth creates a zero-filled image with an explicit bit depth.
//
// The depth bounds the value domain used by histograms and point operators:
// binarized images carry depth 1 so their domain is {0, 1}. The depth may not
// exceed MaxDepth of T.
func NewWithDepth[T Pixel](width, height, channels, depth int) (*Image[T], error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrConstruction, "invalid dimensions %dx%d", width, height)
	}
	if channels < 1 {
		return nil, errors.Wrapf(ErrConstruction, "invalid channel count %d", channels)
	}
	if depth < 1 || depth > MaxDepth[T]() {
		return nil, errors.Wrapf(ErrConstruction, "depth %d not representable (max %d)", depth, MaxDepth[T]())
	}
	return &Image[T]{
		width:    width,
		height:   height,
		channels: channels,
		depth:    depth,
		pix:      make([]T, width*height*channels),
	}, nil
}

// Width returns the image width in pixels.
func (img *Image[T]) Width() int { return img.width }

// Height returns the image height in pixels.
func (img *Image[T]) Height() int { return img.height }

// Channels returns the number of samples per pixel.
func (img *Image[T]) Channels() int { return img.channels }

// Depth returns the bit depth of the value domain.
func (img *Image[T]) Depth() int { return img.depth }

// DomainSize returns the number of distinct values, 2^depth.
func (img *Image[T]) DomainSize() int { return 1 << img.depth }

// MaxValue returns the largest value of the domain, 2^depth - 1.
func (img *Image[T]) MaxValue() int { return img.DomainSize() - 1 }

// Bounds returns the region covering the whole image.
func (img *Image[T]) Bounds() Region {
	return Region{W: img.width, H: img.height}
}

// Pix returns the underlying sample buffer. Callers must treat it as read-only.
func (img *Image[T]) Pix() []T { return img.pix }

// Row returns the interleaved samples of row y (width*channels values).
func (img *Image[T]) Row(y int) []T {
	stride := img.width * img.channels
	return img.pix[y*stride : (y+1)*stride]
}

// String describes the image shape, e.g. "640x480x3@8".
func (img *Image[T]) String() string {
	return fmt.Sprintf("%dx%dx%d@%d", img.width, img.height, img.channels, img.depth)
}

// Valid reports whether (x, y, c) addresses a sample of the image.
func (img *Image[T]) Valid(x, y, c int) bool {
	return x >= 0 && x < img.width && y >= 0 && y < img.height && c >= 0 && c < img.channels
}

func (img *Image[T]) offset(x, y, c int) int {
	return (y*img.width+x)*img.channels + c
}

// At returns the sample at (x, y, c) without bounds checks beyond the
// slice's own. Use it only with coordinates already known to be valid.
func (img *Image[T]) At(x, y, c int) T {
	return img.pix[img.offset(x, y, c)]
}

// Lookup returns the sample at (x, y, c) and whether the coordinate is valid.
// Invalid coordinates yield the zero value and false.
func (img *Image[T]) Lookup(x, y, c int) (T, bool) {
	if !img.Valid(x, y, c) {
		var zero T
		return zero, false
	}
	return img.pix[img.offset(x, y, c)], true
}

// Pixel returns the sample at (x, y, c).
//
// Returns an error wrapping ErrOutOfRange for coordinates, or a channel,
// outside the image.
func (img *Image[T]) Pixel(x, y, c int) (T, error) {
	v, ok := img.Lookup(x, y, c)
	if !ok {
		return v, errors.Wrapf(ErrOutOfRange, "pixel (%d,%d) channel %d outside %s", x, y, c, img)
	}
	return v, nil
}

// Set stores v at (x, y, c) without bounds checks beyond the slice's own.
func (img *Image[T]) Set(x, y, c int, v T) {
	img.pix[img.offset(x, y, c)] = v
}

// SetPixel stores v at (x, y, c), rejecting invalid coordinates with
// ErrOutOfRange.
func (img *Image[T]) SetPixel(x, y, c int, v T) error {
	if !img.Valid(x, y, c) {
		return errors.Wrapf(ErrOutOfRange, "pixel (%d,%d) channel %d outside %s", x, y, c, img)
	}
	img.pix[img.offset(x, y, c)] = v
	return nil
}

// Fill sets every sample of every channel to v.
func (img *Image[T]) Fill(v T) {
	for i := range img.pix {
		img.pix[i] = v
	}
}

// Clone returns an independent deep copy.
func (img *Image[T]) Clone() *Image[T] {
	out := *img
	out.pix = make([]T, len(img.pix))
	copy(out.pix, img.pix)
	return &out
}

// Crop copies the pixels covered by r into a new image of size r.W x r.H.
//
// Returns an error wrapping ErrConstruction for an empty region, or
// ErrOutOfRange when r is not entirely inside the image.
func (img *Image[T]) Crop(r Region) (*Image[T], error) {
	if r.Empty() {
		return nil, errors.Wrapf(ErrConstruction, "empty crop region %+v", r)
	}
	if !r.Within(img.width, img.height) {
		return nil, errors.Wrapf(ErrOutOfRange, "crop region %+v outside %s", r, img)
	}
	out, err := NewWithDepth[T](r.W, r.H, img.channels, img.depth)
	if err != nil {
		return nil, err
	}
	n := r.W * img.channels
	for y := 0; y < r.H; y++ {
		src := img.offset(r.X, r.Y+y, 0)
		copy(out.pix[y*n:(y+1)*n], img.pix[src:src+n])
	}
	return out, nil
}

// SameShape reports whether two images have identical width, height and
// channel count.
func SameShape[T, U Pixel](a *Image[T], b *Image[U]) bool {
	return a.width == b.width && a.height == b.height && a.channels == b.channels
}

// BlankLike returns a zero-filled image with the shape and depth of img.
func BlankLike[T Pixel](img *Image[T]) *Image[T] {
	return &Image[T]{
		width:    img.width,
		height:   img.height,
		channels: img.channels,
		depth:    img.depth,
		pix:      make([]T, len(img.pix)),
	}
}

// Convert copies img into a new image with element type U.
//
// Values are rounded and clamped into U's domain when U is an integer type.
// The depth of the result is the smaller of img's depth and MaxDepth of U.
func Convert[U, T Pixel](img *Image[T]) *Image[U] {
	depth := min(img.depth, MaxDepth[U]())
	out := &Image[U]{
		width:    img.width,
		height:   img.height,
		channels: img.channels,
		depth:    depth,
		pix:      make([]U, len(img.pix)),
	}
	maxValue := (1 << depth) - 1
	for i, v := range img.pix {
		out.pix[i] = FromFloat[U](float64(v), maxValue)
	}
	return out
}
