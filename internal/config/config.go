// Package config holds the runtime settings shared by the CLI and the
// server: log level, filtering worker count and default boundary policy.
//
// Values come from defaults, then IMAGEIN_* environment variables, then
// command-line flags bound with BindFlags.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/ironsheep/imagein/internal/filtering"
	"github.com/ironsheep/imagein/internal/imaging"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// Environment variables read by Load.
const (
	EnvLogLevel = "IMAGEIN_LOG_LEVEL"
	EnvWorkers  = "IMAGEIN_WORKERS"
	EnvPolicy   = "IMAGEIN_POLICY"
)

// Config is the validated runtime configuration.
type Config struct {
	LogLevel string // logrus level name
	Workers  int    // filtering bands; 0 = one per CPU
	Policy   string // default boundary policy name
}

// Default returns the built-in settings.
func Default() Config {
	return Config{LogLevel: "info", Workers: 0, Policy: filtering.Mirror.String()}
}

// Load applies the environment on top of the defaults.
func Load() (Config, error) {
	return FromEnv(os.Getenv)
}

// FromEnv applies the variables returned by getenv on top of the defaults.
// Empty values are ignored.
func FromEnv(getenv func(string) string) (Config, error) {
	c := Default()
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(getenv(EnvWorkers)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, errors.Wrapf(imaging.ErrConstruction, "%s=%q is not an integer", EnvWorkers, v)
		}
		c.Workers = n
	}
	if v := strings.TrimSpace(getenv(EnvPolicy)); v != "" {
		c.Policy = v
	}
	return c, c.Validate()
}

// BindFlags registers flags that override c when parsed.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (trace, debug, info, warn, error)")
	fs.IntVar(&c.Workers, "workers", c.Workers, "filtering worker bands, 0 for one per CPU")
	fs.StringVar(&c.Policy, "policy", c.Policy, "default boundary policy ("+strings.Join(filtering.PolicyNames(), ", ")+")")
}

// Validate checks every field.
func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(imaging.ErrConstruction, "invalid log level %q", c.LogLevel)
	}
	if c.Workers < 0 {
		return errors.Wrapf(imaging.ErrConstruction, "negative worker count %d", c.Workers)
	}
	if _, err := filtering.ParsePolicy(c.Policy); err != nil {
		return err
	}
	return nil
}

// Level returns the parsed log level, Info when invalid.
func (c Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// BoundaryPolicy returns the parsed policy, Mirror when invalid.
func (c Config) BoundaryPolicy() filtering.Policy {
	p, err := filtering.ParsePolicy(c.Policy)
	if err != nil {
		return filtering.Mirror
	}
	return p
}
