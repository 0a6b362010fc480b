package codec

import (
	"image"
	"image/color"

	core "github.com/ironsheep/imagein/internal/imaging"
	"github.com/pkg/errors"
)

// Raw is an in-memory codec: whatever is written can be read back.
type Raw struct {
	width    int
	height   int
	channels int
	depth    int
	data     []byte
}

// NewRaw wraps an existing sample buffer. The buffer is copied.
func NewRaw(data []byte, width, height, channels, depth int) (*Raw, error) {
	r := &Raw{}
	if err := r.WriteData(data, width, height, channels, depth); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Raw) ReadWidth() (int, error)    { return r.width, nil }
func (r *Raw) ReadHeight() (int, error)   { return r.height, nil }
func (r *Raw) ReadChannels() (int, error) { return r.channels, nil }
func (r *Raw) ReadDepth() (int, error)    { return r.depth, nil }

// ReadData returns a copy of the stored samples.
func (r *Raw) ReadData() ([]byte, error) {
	return append([]byte(nil), r.data...), nil
}

// WriteData stores a copy of data after checking it against the header.
func (r *Raw) WriteData(data []byte, width, height, channels, depth int) error {
	if width <= 0 || height <= 0 || channels < 1 {
		return errors.Wrapf(core.ErrCodec, "invalid header %dx%dx%d", width, height, channels)
	}
	if depth != 8 && depth != 16 {
		return errors.Wrapf(core.ErrCodec, "unsupported depth %d", depth)
	}
	if want := width * height * channels * depth / 8; len(data) != want {
		return errors.Wrapf(core.ErrCodec, "data holds %d bytes, want %d", len(data), want)
	}
	r.width, r.height, r.channels, r.depth = width, height, channels, depth
	r.data = append([]byte(nil), data...)
	return nil
}

// Image converts the samples to a Go image for encoding.
//
// 1 channel maps to gray, 2 to gray with alpha, 3 to opaque RGB and 4 to
// RGBA. Other channel counts cannot be represented.
func (r *Raw) Image() (image.Image, error) {
	rect := image.Rect(0, 0, r.width, r.height)
	if r.depth == 16 {
		return r.image16(rect)
	}
	switch r.channels {
	case 1:
		g := image.NewGray(rect)
		copy(g.Pix, r.data)
		return g, nil
	case 2, 3, 4:
		n := image.NewNRGBA(rect)
		for i := 0; i < r.width*r.height; i++ {
			s := r.data[i*r.channels : (i+1)*r.channels]
			p := n.Pix[4*i : 4*i+4]
			switch r.channels {
			case 2:
				p[0], p[1], p[2], p[3] = s[0], s[0], s[0], s[1]
			case 3:
				p[0], p[1], p[2], p[3] = s[0], s[1], s[2], 0xff
			default:
				copy(p, s)
			}
		}
		return n, nil
	}
	return nil, errors.Wrapf(core.ErrCodec, "%d channels cannot be encoded", r.channels)
}

func (r *Raw) image16(rect image.Rectangle) (image.Image, error) {
	sample := func(i int) uint16 {
		return uint16(r.data[2*i])<<8 | uint16(r.data[2*i+1])
	}
	switch r.channels {
	case 1:
		g := image.NewGray16(rect)
		copy(g.Pix, r.data)
		return g, nil
	case 2, 3, 4:
		n := image.NewNRGBA64(rect)
		for y := 0; y < r.height; y++ {
			for x := 0; x < r.width; x++ {
				base := (y*r.width + x) * r.channels
				var c color.NRGBA64
				switch r.channels {
				case 2:
					v := sample(base)
					c = color.NRGBA64{R: v, G: v, B: v, A: sample(base + 1)}
				case 3:
					c = color.NRGBA64{R: sample(base), G: sample(base + 1), B: sample(base + 2), A: 0xffff}
				default:
					c = color.NRGBA64{R: sample(base), G: sample(base + 1), B: sample(base + 2), A: sample(base + 3)}
				}
				n.SetNRGBA64(x, y, c)
			}
		}
		return n, nil
	}
	return nil, errors.Wrapf(core.ErrCodec, "%d channels cannot be encoded", r.channels)
}
