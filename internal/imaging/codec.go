package imaging

import (
	"github.com/pkg/errors"
)

// Reader is the narrow contract the engine consumes from a file codec.
//
// Implementations decode a container (PNG, BMP, ...) and expose its raw
// samples. ReadData returns width*height*channels samples, row-major and
// channel-interleaved, one byte per sample at depth 8 and two big-endian
// bytes per sample at depth 16.
type Reader interface {
	ReadWidth() (int, error)
	ReadHeight() (int, error)
	ReadChannels() (int, error)
	ReadDepth() (int, error)
	ReadData() ([]byte, error)
}

// Writer is the symmetric encode side of the codec contract.
type Writer interface {
	WriteData(data []byte, width, height, channels, depth int) error
}

// Decode builds an Image from a codec Reader.
//
// Errors returned by the reader are propagated unchanged so the caller sees
// the codec's own failure. A depth other than 8 or 16, a 16-bit source
// decoded into 8-bit samples, or a buffer of the wrong length is reported
// as ErrCodec.
func Decode[T Pixel](r Reader) (*Image[T], error) {
	width, err := r.ReadWidth()
	if err != nil {
		return nil, err
	}
	height, err := r.ReadHeight()
	if err != nil {
		return nil, err
	}
	channels, err := r.ReadChannels()
	if err != nil {
		return nil, err
	}
	depth, err := r.ReadDepth()
	if err != nil {
		return nil, err
	}
	if depth != 8 && depth != 16 {
		return nil, errors.Wrapf(ErrCodec, "unsupported depth %d", depth)
	}
	if depth > MaxDepth[T]() {
		return nil, errors.Wrapf(ErrCodec, "depth %d does not fit %d-bit samples", depth, MaxDepth[T]())
	}
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}

	img, err := NewWithDepth[T](width, height, channels, depth)
	if err != nil {
		return nil, errors.Wrapf(ErrCodec, "invalid header: %v", err)
	}
	bytesPerSample := depth / 8
	if len(data) != len(img.pix)*bytesPerSample {
		return nil, errors.Wrapf(ErrCodec, "data holds %d bytes, want %d", len(data), len(img.pix)*bytesPerSample)
	}

	if bytesPerSample == 1 {
		for i, b := range data {
			img.pix[i] = T(b)
		}
		return img, nil
	}
	for i := range img.pix {
		img.pix[i] = T(uint16(data[2*i])<<8 | uint16(data[2*i+1]))
	}
	return img, nil
}

// Encode hands the samples of img to a codec Writer.
//
// Images of depth 16 are written as 16-bit big-endian samples. Everything
// else is written at depth 8: low-depth images (binarized masks) are
// stretched to [0, 255] and float images are rounded and clamped.
func Encode[T Pixel](img *Image[T], w Writer) error {
	if img.depth == 16 {
		data := make([]byte, 2*len(img.pix))
		for i, v := range img.pix {
			s := FromFloat[uint16](float64(v), 0xffff)
			data[2*i] = byte(s >> 8)
			data[2*i+1] = byte(s)
		}
		return w.WriteData(data, img.width, img.height, img.channels, 16)
	}

	scale := 1.0
	if img.depth < 8 {
		scale = 255.0 / float64(img.MaxValue())
	}
	data := make([]byte, len(img.pix))
	for i, v := range img.pix {
		data[i] = FromFloat[uint8](float64(v)*scale, 0xff)
	}
	return w.WriteData(data, img.width, img.height, img.channels, 8)
}
