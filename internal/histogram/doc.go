// Package histogram computes value histograms, their cumulated form and
// axis projections over a region of one image channel.
//
// Histogram and Cumulated have one bucket per value of the image domain,
// so an 8-bit image yields 256 buckets and a binarized image two.
// Projection has one bucket per row or column of the region. All three
// implement Series for presentation code that only needs bucket values.
package histogram
