// Package threshold selects binarization thresholds with Otsu's method and
// applies them to images.
package threshold
