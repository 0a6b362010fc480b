// Package imaging provides the image buffer every algorithm of the engine
// consumes and produces.
//
// The central type is Image[T], an owned, multi-channel raster whose
// element type T selects the value domain (8-bit, 16-bit or floating point
// samples). Region describes axis-aligned sub-areas used for crops,
// histograms and filter windows.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - A Region with origin (X, Y) and size (W, H) covers [X, X+W) x [Y, Y+H)
//
// # Storage
//
// Samples are stored row-major and interleaved by channel, so the value of
// channel c at (x, y) is at index (y*width+x)*channels + c. Constructors
// always copy their input, and every algorithm returns a freshly allocated
// image, so no two images ever alias the same samples.
//
// # Value Domain
//
// Each image carries a bit depth, defaulting to the natural depth of T
// (8 for uint8 and floats, 16 for uint16). The domain [0, 2^depth) sizes
// histograms and bounds point operators such as inversion. Binarized images
// carry depth 1.
//
// # Error Handling
//
// Errors wrap one of the package's sentinel kinds and can be matched with
// errors.Is:
//   - ErrOutOfRange: direct access outside the buffer
//   - ErrArityMismatch, ErrDimensionMismatch: algorithm input violations
//   - ErrConstruction: malformed buffers, regions, kernels or elements
//   - ErrCodec: failures of the file codec collaborator
//
// # Codec Boundary
//
// Decode and Encode connect an Image to any implementation of the narrow
// Reader/Writer codec contract. The package itself never parses a file
// format; see the codec package for the file and in-memory adapters.
package imaging
