package main

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/ironsheep/imagein/internal/codec"
	"github.com/ironsheep/imagein/internal/filtering"
	"github.com/ironsheep/imagein/internal/histogram"
	"github.com/ironsheep/imagein/internal/imaging"
	"github.com/ironsheep/imagein/internal/threshold"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func loadFile(path string, grayscale bool) (*imaging.Image[uint16], error) {
	var opts []codec.FileOption
	if grayscale {
		opts = append(opts, codec.WithGrayscale())
	}
	return codec.Load[uint16](nil, path, opts...)
}

func (a *app) histogramCmd() *cobra.Command {
	var (
		channel   int
		cumulated bool
		grayscale bool
	)
	cmd := &cobra.Command{
		Use:   "histogram <file>",
		Short: "Print the histogram statistics and populated buckets of one channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := loadFile(args[0], grayscale)
			if err != nil {
				return err
			}
			h, err := histogram.New(img, channel, img.Bounds())
			if err != nil {
				return err
			}
			counts := h.Counts()
			if cumulated {
				counts = h.Cumulate().Counts()
			}
			// Only populated buckets, or for running totals the points
			// where the total changes.
			buckets := make(map[int]int)
			prev := 0
			for v, n := range counts {
				if cumulated {
					if n != prev {
						buckets[v] = n
					}
					prev = n
				} else if n != 0 {
					buckets[v] = n
				}
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"file":      args[0],
				"channel":   channel,
				"bins":      h.Width(),
				"cumulated": cumulated,
				"stats":     h.Stats(),
				"buckets":   buckets,
			})
		},
	}
	cmd.Flags().IntVarP(&channel, "channel", "c", 0, "channel index")
	cmd.Flags().BoolVar(&cumulated, "cumulated", false, "report running totals where they change")
	cmd.Flags().BoolVar(&grayscale, "grayscale", false, "convert to luminance first")
	return cmd
}

func (a *app) otsuCmd() *cobra.Command {
	var grayscale bool
	cmd := &cobra.Command{
		Use:   "otsu <file>",
		Short: "Print the Otsu threshold of every channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := loadFile(args[0], grayscale)
			if err != nil {
				return err
			}
			thresholds, err := threshold.NewOtsu[uint16]().Thresholds(img)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"file":       args[0],
				"depth":      img.Depth(),
				"thresholds": thresholds,
			})
		},
	}
	cmd.Flags().BoolVar(&grayscale, "grayscale", false, "convert to luminance first")
	return cmd
}

func (a *app) filterCmd() *cobra.Command {
	var (
		params    filtering.Params
		grayscale bool
	)
	cmd := &cobra.Command{
		Use:   "filter <preset> <in> <out>",
		Short: "Apply a filter preset and write the result",
		Long:  "Apply a filter preset to <in> and write <out> in the format its extension names.\n\nPresets: " + strings.Join(filtering.PresetNames(), ", "),
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filtering.NewPreset[uint16](args[0], params,
				filtering.WithPolicy(a.cfg.BoundaryPolicy()),
				filtering.WithWorkers(a.cfg.Workers),
				filtering.WithLogger(logrus.NewEntry(a.log)),
			)
			if err != nil {
				return err
			}
			img, err := loadFile(args[1], grayscale)
			if err != nil {
				return err
			}
			out, err := f.ApplyContext(context.Background(), img)
			if err != nil {
				return err
			}
			if err := codec.Save(out, args[2]); err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{"filter": f.Name(), "out": args[2]}).Info("filtered")
			return nil
		},
	}
	cmd.Flags().IntVar(&params.Radius, "radius", 1, "uniform_blur radius")
	cmd.Flags().IntVar(&params.Size, "size", 3, "gaussian_blur and prewitt kernel size")
	cmd.Flags().Float64Var(&params.Sigma, "sigma", 1, "gaussian_blur standard deviation")
	cmd.Flags().Float64Var(&params.Alpha, "alpha", 1, "gaussian_blur_alpha smoothing factor")
	cmd.Flags().BoolVar(&grayscale, "grayscale", false, "convert to luminance first")
	return cmd
}
