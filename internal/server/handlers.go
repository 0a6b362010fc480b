package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ironsheep/imagein/internal/algorithm"
	"github.com/ironsheep/imagein/internal/codec"
	"github.com/ironsheep/imagein/internal/filtering"
	"github.com/ironsheep/imagein/internal/histogram"
	"github.com/ironsheep/imagein/internal/imaging"
	"github.com/ironsheep/imagein/internal/morphology"
	"github.com/ironsheep/imagein/internal/threshold"
	"github.com/pkg/errors"
)

// Images are decoded into 16-bit samples so 8-bit and 16-bit files share
// one code path; each keeps the depth of its file.
type sample = uint16

var shapeNames = []string{"disk", "diamond", "square"}

func operationNames() []string {
	ops := []morphology.Operation{morphology.Erode, morphology.Dilate, morphology.Open, morphology.Close, morphology.Gradient}
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.String()
	}
	return names
}

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// argsError marks a failure to decode tool arguments.
type argsError struct{ err error }

func (e *argsError) Error() string { return "invalid arguments: " + e.err.Error() }

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &argsError{err: err}
	}
	return nil
}

// handleToolsCall runs a tool and wraps its result in MCP's content format:
//
//	{"content": [{"type": "text", "text": "<JSON result>"}]}
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	log := s.log.WithField("tool", params.Name)
	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		log.WithError(err).Warn("tool call failed")
		var ae *argsError
		if errors.As(err, &ae) {
			return errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	log.WithField("duration", time.Since(start)).Debug("tool call complete")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": mustMarshalJSON(result)},
			},
		},
	}
}

func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_crop":
		return s.handleImageCrop(args)
	case "image_histogram":
		return s.handleImageHistogram(args)
	case "image_projection":
		return s.handleImageProjection(args)
	case "image_otsu":
		return s.handleImageOtsu(args)
	case "image_filter":
		return s.handleImageFilter(ctx, args)
	case "image_morphology":
		return s.handleImageMorphology(args)
	case "image_binarize":
		return s.handleImageBinarize(args)
	case "image_invert":
		return s.handleImageInvert(args)
	case "image_apply":
		return s.handleImageApply(args)
	case "image_algorithms":
		return s.handleImageAlgorithms()
	default:
		return nil, errors.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON; a marshal
// failure yields an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// imageArgs are shared by every tool that reads an image.
type imageArgs struct {
	Path      string `json:"path"`
	Grayscale bool   `json:"grayscale"`
}

func (s *Server) load(a imageArgs) (*imaging.Image[sample], error) {
	if a.Path == "" {
		return nil, &argsError{err: errors.New("path is required")}
	}
	var opts []codec.FileOption
	if a.Grayscale {
		opts = append(opts, codec.WithGrayscale())
	}
	return codec.Load[sample](s.cache, a.Path, opts...)
}

// regionOf returns r, or the full image when r is nil.
func regionOf(img *imaging.Image[sample], r *imaging.Region) imaging.Region {
	if r == nil {
		return img.Bounds()
	}
	return *r
}

// imageOutput is the result of tools that produce an image.
type imageOutput struct {
	Algorithm string `json:"algorithm"`
	Depth     int    `json:"depth"`
	SavedTo   string `json:"saved_to,omitempty"`
	*codec.ImageResult
}

func (s *Server) respondImage(name string, img *imaging.Image[sample], output string) (*imageOutput, error) {
	if output != "" {
		if err := codec.Save(img, output); err != nil {
			return nil, err
		}
		s.cache.Evict(output)
	}
	res, err := codec.EncodePNGBase64(img)
	if err != nil {
		return nil, err
	}
	return &imageOutput{Algorithm: name, Depth: img.Depth(), SavedTo: output, ImageResult: res}, nil
}

// binarizer returns a fixed binarization when t is set, Otsu otherwise.
func binarizer(t *int) (*threshold.Binarization[sample], error) {
	if t == nil {
		return threshold.NewOtsu[sample](), nil
	}
	return threshold.NewFixed[sample](*t)
}

// === Image information ===

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.load(a)
	if err != nil {
		return nil, err
	}
	info, err := codec.Stat(a.Path)
	if err != nil {
		return nil, err
	}
	info.Channels = img.Channels()
	return info, nil
}

type imageCropArgs struct {
	imageArgs
	Region *imaging.Region `json:"region"`
	Output string          `json:"output"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Region == nil {
		return nil, &argsError{err: errors.New("region is required")}
	}
	img, err := s.load(a.imageArgs)
	if err != nil {
		return nil, err
	}
	out, err := img.Crop(*a.Region)
	if err != nil {
		return nil, err
	}
	return s.respondImage("crop", out, a.Output)
}

// === Histograms ===

type imageHistogramArgs struct {
	imageArgs
	Channel   int             `json:"channel"`
	Region    *imaging.Region `json:"region"`
	Cumulated bool            `json:"cumulated"`
}

type histogramResult struct {
	Channel   int                  `json:"channel"`
	Region    imaging.Region       `json:"region"`
	Bins      int                  `json:"bins"`
	Cumulated bool                 `json:"cumulated"`
	Counts    []int                `json:"counts"`
	Stats     histogram.Statistics `json:"stats"`
}

func (s *Server) handleImageHistogram(args json.RawMessage) (interface{}, error) {
	var a imageHistogramArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.load(a.imageArgs)
	if err != nil {
		return nil, err
	}
	h, err := histogram.New(img, a.Channel, regionOf(img, a.Region))
	if err != nil {
		return nil, err
	}
	res := &histogramResult{
		Channel:   h.Channel(),
		Region:    h.Region(),
		Bins:      h.Width(),
		Cumulated: a.Cumulated,
		Counts:    h.Counts(),
		Stats:     h.Stats(),
	}
	if a.Cumulated {
		res.Counts = h.Cumulate().Counts()
	}
	return res, nil
}

type imageProjectionArgs struct {
	imageArgs
	Horizontal bool            `json:"horizontal"`
	Value      *int            `json:"value"`
	Channel    int             `json:"channel"`
	Region     *imaging.Region `json:"region"`
}

type projectionResult struct {
	Horizontal bool           `json:"horizontal"`
	Line       int            `json:"line"`
	Channel    int            `json:"channel"`
	Region     imaging.Region `json:"region"`
	Values     []float64      `json:"values"`
	Total      float64        `json:"total"`
	Peak       int            `json:"peak"`
}

func (s *Server) handleImageProjection(args json.RawMessage) (interface{}, error) {
	var a imageProjectionArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.load(a.imageArgs)
	if err != nil {
		return nil, err
	}
	value := histogram.FullSpan
	if a.Value != nil {
		value = *a.Value
	}
	p, err := histogram.NewProjection(img, value, a.Horizontal, regionOf(img, a.Region), a.Channel)
	if err != nil {
		return nil, err
	}
	return &projectionResult{
		Horizontal: p.Horizontal(),
		Line:       p.Line(),
		Channel:    p.Channel(),
		Region:     p.Region(),
		Values:     p.Values(),
		Total:      p.Total(),
		Peak:       p.Peak(),
	}, nil
}

// === Thresholding ===

type imageOtsuArgs struct {
	imageArgs
	Region *imaging.Region `json:"region"`
}

func (s *Server) handleImageOtsu(args json.RawMessage) (interface{}, error) {
	var a imageOtsuArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.load(a.imageArgs)
	if err != nil {
		return nil, err
	}
	if a.Region != nil {
		if img, err = img.Crop(*a.Region); err != nil {
			return nil, err
		}
	}
	thresholds, err := threshold.NewOtsu[sample]().Thresholds(img)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"thresholds": thresholds,
		"depth":      img.Depth(),
	}, nil
}

type imageBinarizeArgs struct {
	imageArgs
	Threshold *int   `json:"threshold"`
	Output    string `json:"output"`
}

func (s *Server) handleImageBinarize(args json.RawMessage) (interface{}, error) {
	var a imageBinarizeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.load(a.imageArgs)
	if err != nil {
		return nil, err
	}
	b, err := binarizer(a.Threshold)
	if err != nil {
		return nil, err
	}
	out, err := algorithm.Run[sample](b, img)
	if err != nil {
		return nil, err
	}
	return s.respondImage(b.Name(), out, a.Output)
}

// === Filtering ===

type imageFilterArgs struct {
	imageArgs
	filtering.Params
	Filter  string `json:"filter"`
	Policy  string `json:"policy"`
	Workers *int   `json:"workers"`
	Output  string `json:"output"`
}

func (s *Server) handleImageFilter(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageFilterArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	policy := s.cfg.BoundaryPolicy()
	if a.Policy != "" {
		p, err := filtering.ParsePolicy(a.Policy)
		if err != nil {
			return nil, err
		}
		policy = p
	}
	workers := s.cfg.Workers
	if a.Workers != nil {
		workers = *a.Workers
	}

	f, err := filtering.NewPreset[sample](a.Filter, a.Params,
		filtering.WithPolicy(policy),
		filtering.WithWorkers(workers),
		filtering.WithLogger(s.log),
	)
	if err != nil {
		return nil, err
	}
	img, err := s.load(a.imageArgs)
	if err != nil {
		return nil, err
	}
	out, err := f.ApplyContext(ctx, img)
	if err != nil {
		return nil, errors.WithMessage(err, f.Name())
	}
	return s.respondImage(f.Name(), out, a.Output)
}

// === Morphology ===

type imageMorphologyArgs struct {
	imageArgs
	Operation string `json:"operation"`
	Shape     string `json:"shape"`
	Radius    *int   `json:"radius"`
	Threshold *int   `json:"threshold"`
	Output    string `json:"output"`
}

func (s *Server) handleImageMorphology(args json.RawMessage) (interface{}, error) {
	var a imageMorphologyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	op, err := morphology.ParseOperation(a.Operation)
	if err != nil {
		return nil, err
	}
	if a.Shape == "" {
		a.Shape = "disk"
	}
	radius := 1
	if a.Radius != nil {
		radius = *a.Radius
	}
	se, err := morphology.Shape(a.Shape, radius)
	if err != nil {
		return nil, err
	}
	m, err := morphology.New[sample](op, se)
	if err != nil {
		return nil, err
	}

	img, err := s.load(a.imageArgs)
	if err != nil {
		return nil, err
	}
	stages := []algorithm.Algorithm[sample]{m}
	if img.Depth() != 1 {
		b, err := binarizer(a.Threshold)
		if err != nil {
			return nil, err
		}
		stages = append([]algorithm.Algorithm[sample]{b}, stages...)
	}
	chain, err := algorithm.NewChain(stages...)
	if err != nil {
		return nil, err
	}
	out, err := algorithm.Run[sample](chain, img)
	if err != nil {
		return nil, err
	}
	return s.respondImage(chain.Name(), out, a.Output)
}

// === Registry ===

type imageInvertArgs struct {
	imageArgs
	Output string `json:"output"`
}

func (s *Server) handleImageInvert(args json.RawMessage) (interface{}, error) {
	var a imageInvertArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.apply("inversion", a.imageArgs, "", a.Output)
}

type imageApplyArgs struct {
	imageArgs
	Algorithm string `json:"algorithm"`
	Other     string `json:"other"`
	Output    string `json:"output"`
}

func (s *Server) handleImageApply(args json.RawMessage) (interface{}, error) {
	var a imageApplyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.apply(a.Algorithm, a.imageArgs, a.Other, a.Output)
}

func (s *Server) apply(name string, in imageArgs, other, output string) (*imageOutput, error) {
	alg, err := s.registry.Get(name)
	if err != nil {
		return nil, err
	}
	img, err := s.load(in)
	if err != nil {
		return nil, err
	}
	inputs := []*imaging.Image[sample]{img}
	if alg.Arity() == 2 {
		if other == "" {
			return nil, &argsError{err: errors.Errorf("%s needs a second image in 'other'", name)}
		}
		second, err := s.load(imageArgs{Path: other, Grayscale: in.Grayscale})
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, second)
	}
	out, err := algorithm.Run(alg, inputs...)
	if err != nil {
		return nil, err
	}
	return s.respondImage(alg.Name(), out, output)
}

func (s *Server) handleImageAlgorithms() (interface{}, error) {
	return map[string]interface{}{
		"algorithms": s.registry.Names(),
		"filters":    filtering.PresetNames(),
		"policies":   filtering.PolicyNames(),
		"operations": operationNames(),
		"shapes":     shapeNames,
	}, nil
}
