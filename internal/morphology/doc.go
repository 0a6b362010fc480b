// Package morphology implements binary mathematical morphology over
// imaging.Image values: erosion, dilation, opening, closing and the
// morphological gradient, parameterized by a structuring element.
//
// Each channel is processed independently as a binary plane where any
// non-zero sample is true. Erosion places the element on the pixel;
// dilation places its reflection, which makes opening anti-extensive and
// closing extensive. Closing runs on a canvas padded by the element's
// reach so that shapes touching the border are never eroded away.
package morphology
