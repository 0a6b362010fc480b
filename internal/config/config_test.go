package config

import (
	"testing"

	"github.com/ironsheep/imagein/internal/filtering"
	"github.com/ironsheep/imagein/internal/imaging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestDefault(t *testing.T) {
	c, err := FromEnv(env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, logrus.InfoLevel, c.Level())
	assert.Equal(t, filtering.Mirror, c.BoundaryPolicy())
}

func TestFromEnv(t *testing.T) {
	c, err := FromEnv(env(map[string]string{
		EnvLogLevel: "debug",
		EnvWorkers:  " 3 ",
		EnvPolicy:   "toroidal",
	}))
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, c.Level())
	assert.Equal(t, 3, c.Workers)
	assert.Equal(t, filtering.Toroidal, c.BoundaryPolicy())
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"level", map[string]string{EnvLogLevel: "loud"}},
		{"workers not int", map[string]string{EnvWorkers: "many"}},
		{"negative workers", map[string]string{EnvWorkers: "-2"}},
		{"policy", map[string]string{EnvPolicy: "wrap-around"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(env(tt.vars))
			assert.True(t, imaging.Is(err, imaging.ErrConstruction), "got %v", err)
		})
	}
}

func TestBindFlags(t *testing.T) {
	c := Default()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--workers=2", "--policy", "nearest", "--log-level=warn"}))

	require.NoError(t, c.Validate())
	assert.Equal(t, 2, c.Workers)
	assert.Equal(t, filtering.Nearest, c.BoundaryPolicy())
	assert.Equal(t, logrus.WarnLevel, c.Level())
}
