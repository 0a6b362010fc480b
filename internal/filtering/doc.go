// Package filtering implements spatial correlation filters over
// imaging.Image values.
//
// A Filtering engine holds one or more odd-sized kernels, a boundary
// policy and a combination rule. Single-kernel filters (blurs, Laplacian)
// use Sum; gradient pairs (Sobel, Prewitt, Roberts) use Magnitude.
//
// # Boundary Policies
//
// Samples outside the image are resolved before they are read:
//   - Black: 0
//   - Mirror: reflection about the edge pixel, periodic for far offsets
//   - Nearest: the closest edge pixel
//   - Toroidal: wrap on both axes
//   - Spherical: horizontal wrap, pole crossing reflects the row and turns
//     the column by half the width
//
// Resolution works for any offset, so kernels larger than the image are
// valid under every policy.
//
// # Parallelism
//
// Output rows are split into contiguous bands, one per worker, and each
// band is computed on its own goroutine from the shared read-only input.
// Bands never overlap, so the result is identical for every worker count.
package filtering
