package codec

import (
	"bytes"
	"encoding/base64"

	"github.com/disintegration/imaging"
	core "github.com/ironsheep/imagein/internal/imaging"
	"github.com/pkg/errors"
)

// ImageResult carries an encoded image for JSON transport.
type ImageResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Channels    int    `json:"channels"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Load decodes the file at path into an image with element type T, going
// through the cache when one is given.
func Load[T core.Pixel](cache *Cache, path string, opts ...FileOption) (*core.Image[T], error) {
	var (
		f   *File
		err error
	)
	if cache != nil {
		f, err = cache.Load(path, opts...)
	} else {
		f, err = Open(path, opts...)
	}
	if err != nil {
		return nil, err
	}
	return core.Decode[T](f)
}

// Save encodes img into the file at path.
func Save[T core.Pixel](img *core.Image[T], path string) error {
	return core.Encode(img, Create(path))
}

// EncodePNG encodes img as PNG bytes. Binarized masks are stretched to
// black and white.
func EncodePNG[T core.Pixel](img *core.Image[T]) ([]byte, error) {
	raw := &Raw{}
	if err := core.Encode(img, raw); err != nil {
		return nil, err
	}
	out, err := raw.Image()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, errors.Wrapf(core.ErrCodec, "encode png: %v", err)
	}
	return buf.Bytes(), nil
}

// EncodePNGBase64 encodes img as a base64 PNG result.
func EncodePNGBase64[T core.Pixel](img *core.Image[T]) (*ImageResult, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}
	return &ImageResult{
		Width:       img.Width(),
		Height:      img.Height(),
		Channels:    img.Channels(),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    "image/png",
	}, nil
}
