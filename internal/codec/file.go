package codec

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	core "github.com/ironsheep/imagein/internal/imaging"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// File adapts an image file on disk to the codec contract.
//
// Reading decodes the whole file once, on Open; the Read methods then serve
// the decoded header and samples. Writing encodes in the format implied by
// the file extension (png, jpg, gif, bmp, tif).
//
// Channel layout of decoded files:
//   - Gray, Gray16: 1 channel
//   - opaque colour images: 3 channels (RGB)
//   - images with transparency: 4 channels (RGBA, not premultiplied)
//   - any image opened WithGrayscale: 1 channel
//
// 16-bit sources keep depth 16; everything else decodes at depth 8.
type File struct {
	path string
	raw  *Raw
}

type fileOptions struct {
	grayscale bool
}

// FileOption configures Open.
type FileOption func(*fileOptions)

// WithGrayscale converts colour sources to a single luminance channel
// while decoding.
func WithGrayscale() FileOption { return func(o *fileOptions) { o.grayscale = true } }

// Open decodes the image at path.
//
// Returns an error wrapping ErrCodec if the file cannot be read or decoded.
func Open(path string, opts ...FileOption) (*File, error) {
	var o fileOptions
	for _, opt := range opts {
		opt(&o)
	}
	src, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrapf(core.ErrCodec, "open %s: %v", path, err)
	}
	if o.grayscale {
		if _, isGray16 := src.(*image.Gray16); !isGray16 {
			src = grayPlane(effect.Grayscale(src))
		}
	}
	return &File{path: path, raw: FromImage(src)}, nil
}

// grayPlane keeps one channel of an RGBA image whose channels are equal,
// as produced by effect.Grayscale.
func grayPlane(src *image.RGBA) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < b.Dx(); x++ {
			dst.Pix[y*dst.Stride+x] = row[4*x]
		}
	}
	return dst
}

// Create returns a File that writes to path. Its Read methods fail until
// data has been written.
func Create(path string) *File {
	return &File{path: path}
}

// Path returns the file path.
func (f *File) Path() string { return f.path }

func (f *File) decoded() (*Raw, error) {
	if f.raw == nil {
		return nil, errors.Wrapf(core.ErrCodec, "%s has not been decoded", f.path)
	}
	return f.raw, nil
}

func (f *File) ReadWidth() (int, error) {
	r, err := f.decoded()
	if err != nil {
		return 0, err
	}
	return r.ReadWidth()
}

func (f *File) ReadHeight() (int, error) {
	r, err := f.decoded()
	if err != nil {
		return 0, err
	}
	return r.ReadHeight()
}

func (f *File) ReadChannels() (int, error) {
	r, err := f.decoded()
	if err != nil {
		return 0, err
	}
	return r.ReadChannels()
}

func (f *File) ReadDepth() (int, error) {
	r, err := f.decoded()
	if err != nil {
		return 0, err
	}
	return r.ReadDepth()
}

func (f *File) ReadData() ([]byte, error) {
	r, err := f.decoded()
	if err != nil {
		return nil, err
	}
	return r.ReadData()
}

// WriteData encodes the samples into the file. The parent directory must
// exist.
func (f *File) WriteData(data []byte, width, height, channels, depth int) error {
	raw := &Raw{}
	if err := raw.WriteData(data, width, height, channels, depth); err != nil {
		return err
	}
	out, err := raw.Image()
	if err != nil {
		return err
	}
	if _, err := imaging.FormatFromFilename(f.path); err != nil {
		return errors.Wrapf(core.ErrCodec, "save %s: %v", f.path, err)
	}
	if err := imaging.Save(out, f.path); err != nil {
		return errors.Wrapf(core.ErrCodec, "save %s: %v", f.path, err)
	}
	f.raw = raw
	return nil
}

// Info describes an image file without its samples.
type Info struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Channels      int    `json:"channels"`
	Depth         int    `json:"depth"`
	Format        string `json:"format"`
	FileSizeBytes int64  `json:"file_size_bytes"`
}

// Stat opens path and reports its shape, format and size on disk.
func Stat(path string) (*Info, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(core.ErrCodec, "stat %s: %v", path, err)
	}
	return &Info{
		Width:         f.raw.width,
		Height:        f.raw.height,
		Channels:      f.raw.channels,
		Depth:         f.raw.depth,
		Format:        formatName(path),
		FileSizeBytes: st.Size(),
	}, nil
}

func formatName(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	}
	return "unknown"
}

// FromImage extracts the samples of a decoded Go image.
func FromImage(src image.Image) *Raw {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	r := &Raw{width: w, height: h}

	switch s := src.(type) {
	case *image.Gray:
		r.channels, r.depth = 1, 8
		r.data = make([]byte, 0, w*h)
		for y := 0; y < h; y++ {
			off := y * s.Stride
			r.data = append(r.data, s.Pix[off:off+w]...)
		}
		return r
	case *image.Gray16:
		r.channels, r.depth = 1, 16
		r.data = make([]byte, 0, 2*w*h)
		for y := 0; y < h; y++ {
			off := y * s.Stride
			r.data = append(r.data, s.Pix[off:off+2*w]...)
		}
		return r
	case *image.RGBA64, *image.NRGBA64:
		r.channels, r.depth = 4, 16
		r.data = make([]byte, 0, 8*w*h)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBA64Model.Convert(src.At(x, y)).(color.NRGBA64)
				r.data = append(r.data,
					byte(c.R>>8), byte(c.R), byte(c.G>>8), byte(c.G),
					byte(c.B>>8), byte(c.B), byte(c.A>>8), byte(c.A))
			}
		}
		return r
	}

	// Everything else goes through NRGBA; the alpha channel is kept only
	// when some pixel is not opaque.
	n := imaging.Clone(src)
	r.depth = 8
	r.channels = 3
	for i := 3; i < len(n.Pix); i += 4 {
		if n.Pix[i] != 0xff {
			r.channels = 4
			break
		}
	}
	if r.channels == 4 {
		r.data = append([]byte(nil), n.Pix...)
		return r
	}
	r.data = make([]byte, 0, 3*w*h)
	for i := 0; i < len(n.Pix); i += 4 {
		r.data = append(r.data, n.Pix[i], n.Pix[i+1], n.Pix[i+2])
	}
	return r
}
