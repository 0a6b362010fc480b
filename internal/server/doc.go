// Package server exposes the image algorithms as MCP (Model Context
// Protocol) tools over JSON-RPC 2.0.
//
// # Protocol
//
// The server communicates over stdio:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods: initialize, tools/list, tools/call and ping.
//
// # Available Tools
//
// Inspection:
//   - image_load: decode into the cache and report shape and format
//   - image_crop: extract a region as PNG
//
// Histograms:
//   - image_histogram: per-value counts, cumulated counts and statistics
//   - image_projection: row or column sums
//
// Thresholding:
//   - image_otsu: per-channel Otsu thresholds
//   - image_binarize: fixed or Otsu binarization
//
// Processing:
//   - image_filter: convolution presets with a boundary policy
//   - image_morphology: erosion, dilation, opening, closing and gradient
//   - image_invert: inversion
//   - image_apply: any registered algorithm by name
//   - image_algorithms: list what the server can run
//
// Images are decoded once per path into 16-bit samples and kept at the
// depth of their file. Tools that produce an image return it as
// base64-encoded PNG and can also write it to an output path.
//
// # Error Handling
//
// Arguments that do not decode return code -32602. Every other tool
// failure returns -32000 with the error text in data.
//
// # Usage
//
//	srv := server.New(server.WithConfig(cfg), server.WithLogger(log))
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
