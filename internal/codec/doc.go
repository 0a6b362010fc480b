// Package codec implements the engine's codec contract for image files and
// memory buffers.
//
// File decodes PNG, JPEG, GIF, BMP and TIFF files through
// github.com/disintegration/imaging and writes them back in the format
// implied by the extension. Raw keeps samples in memory and converts them
// to Go images for encoding. Cache memoizes decoded files by path.
//
// # Usage
//
//	img, err := codec.Load[uint8](cache, "/path/to/scan.png", codec.WithGrayscale())
//	if err != nil {
//	    return err
//	}
//	res, err := codec.EncodePNGBase64(img)
//
// All failures wrap imaging.ErrCodec.
package codec
