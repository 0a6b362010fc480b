package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/imagein/internal/config"
	"github.com/ironsheep/imagein/internal/server"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the state shared by every subcommand once flags are parsed.
type app struct {
	cfg config.Config
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cfg, envErr := config.Load()
	a.cfg = cfg

	root := &cobra.Command{
		Use:   "imagein",
		Short: "Image algorithm engine and MCP server",
		Long: `imagein runs histogram, threshold, filtering and morphology algorithms on
image files. Without a subcommand it serves them as MCP tools over stdio.

Environment variables:
  IMAGEIN_LOG_LEVEL   log level (default info)
  IMAGEIN_WORKERS     filtering worker bands, 0 for one per CPU
  IMAGEIN_POLICY      default boundary policy (default mirror)

Flags override the environment.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if envErr != nil {
				return envErr
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			a.log = initLogger(a.cfg, cmd.ErrOrStderr())
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	a.cfg.BindFlags(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve MCP tools over stdio (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.serve(cmd.InOrStdin(), cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "imagein %s\n", Version)
				fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
				fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
			},
		},
		a.histogramCmd(),
		a.otsuCmd(),
		a.filterCmd(),
	)
	return root
}

// initLogger writes to w because stdout carries the protocol. Debug and
// trace use the text formatter, everything else JSON.
func initLogger(cfg config.Config, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(cfg.Level())
	if cfg.Level() >= logrus.DebugLevel {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}

func (a *app) serve(in io.Reader, out io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server.Version = Version
	a.log.WithFields(logrus.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
		"workers": a.cfg.Workers,
		"policy":  a.cfg.Policy,
	}).Debug("starting")

	srv := server.New(
		server.WithConfig(a.cfg),
		server.WithLogger(logrus.NewEntry(a.log)),
		server.WithIO(in, out),
	)
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.log.WithError(err).Error("server stopped")
		return err
	}
	return nil
}
