package filtering

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ironsheep/imagein/internal/algorithm"
	"github.com/ironsheep/imagein/internal/imaging"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allPolicies = []Policy{Black, Mirror, Nearest, Toroidal, Spherical}

// withCPUs reports n CPUs to the band splitter for the rest of the test.
func withCPUs(t *testing.T, n int) {
	t.Helper()
	prev := numCPU
	numCPU = func() int { return n }
	t.Cleanup(func() { numCPU = prev })
}

func pattern(t *testing.T, width, height, channels int) *imaging.Image[uint8] {
	t.Helper()
	data := make([]uint8, width*height*channels)
	for i := range data {
		data[i] = uint8((i*37 + i/7*11) % 256)
	}
	img, err := imaging.New(width, height, channels, data)
	require.NoError(t, err)
	return img
}

func TestPolicy_Resolve(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		x, y   int
		w, h   int
		wantX  int
		wantY  int
	}{
		{"mirror left", Mirror, -1, 0, 5, 5, 1, 0},
		{"mirror two left", Mirror, -2, 0, 5, 5, 2, 0},
		{"mirror right", Mirror, 5, 0, 5, 5, 3, 0},
		{"mirror far right", Mirror, 13, 0, 5, 5, 3, 0},
		{"mirror full period", Mirror, -8, 6, 5, 5, 0, 2},
		{"mirror single column", Mirror, -3, 0, 1, 5, 0, 0},
		{"nearest", Nearest, -3, 7, 5, 5, 0, 4},
		{"toroidal", Toroidal, -1, 12, 5, 5, 4, 2},
		{"toroidal exact", Toroidal, 5, -5, 5, 5, 0, 0},
		{"spherical north", Spherical, 0, -1, 4, 3, 2, 0},
		{"spherical south", Spherical, 1, 3, 4, 3, 3, 2},
		{"spherical wrap", Spherical, 3, -1, 4, 3, 1, 0},
		{"spherical far", Spherical, 0, -5, 4, 1, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, ok := tt.policy.Resolve(tt.x, tt.y, tt.w, tt.h)
			require.True(t, ok)
			assert.Equal(t, tt.wantX, x)
			assert.Equal(t, tt.wantY, y)
		})
	}

	_, _, ok := Black.Resolve(-1, 0, 5, 5)
	assert.False(t, ok)
}

func TestParsePolicy(t *testing.T) {
	for _, p := range allPolicies {
		got, err := ParsePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	got, err := ParsePolicy(" Mirror ")
	require.NoError(t, err)
	assert.Equal(t, Mirror, got)

	_, err = ParsePolicy("reflect101")
	assert.True(t, imaging.Is(err, imaging.ErrConstruction))
}

func TestIdentityKernel_AllPolicies(t *testing.T) {
	img := pattern(t, 9, 6, 3)
	centered, err := NewKernel([][]float64{{0, 0, 0}, {0, 1, 0}, {0, 0, 0}})
	require.NoError(t, err)

	for _, p := range allPolicies {
		t.Run(p.String(), func(t *testing.T) {
			unit, err := Identity[uint8](WithPolicy(p))
			require.NoError(t, err)
			out, err := algorithm.Run[uint8](unit, img)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(img.Pix(), out.Pix()))

			f, err := New[uint8]([]Kernel{centered}, WithPolicy(p))
			require.NoError(t, err)
			out, err = f.Apply(img)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(img.Pix(), out.Pix()))
		})
	}
}

func TestUniformBlur_SinglePixel(t *testing.T) {
	img, err := imaging.New(1, 1, 1, []uint8{90})
	require.NoError(t, err)

	want := map[Policy]uint8{Black: 10, Mirror: 90, Nearest: 90, Toroidal: 90, Spherical: 90}
	for _, p := range allPolicies {
		t.Run(p.String(), func(t *testing.T) {
			blur, err := UniformBlur[uint8](1, WithPolicy(p))
			require.NoError(t, err)
			out, err := blur.Apply(img)
			require.NoError(t, err)
			assert.Equal(t, want[p], out.At(0, 0, 0))
		})
	}
}

func TestLargeKernel_StaysInRange(t *testing.T) {
	img := pattern(t, 3, 2, 1)
	lo, hi := uint8(255), uint8(0)
	for _, v := range img.Pix() {
		lo, hi = min(lo, v), max(hi, v)
	}

	for _, p := range allPolicies {
		t.Run(p.String(), func(t *testing.T) {
			blur, err := UniformBlur[uint8](7, WithPolicy(p))
			require.NoError(t, err)
			out, err := blur.Apply(img)
			require.NoError(t, err)
			for _, v := range out.Pix() {
				assert.LessOrEqual(t, v, hi)
				if p != Black {
					assert.GreaterOrEqual(t, v, lo)
				}
			}
		})
	}
}

func TestWorkers_Deterministic(t *testing.T) {
	withCPUs(t, 8)
	img := pattern(t, 37, 23, 3)
	for _, p := range allPolicies {
		serial, err := GaussianBlur[uint8](5, 1.2, WithPolicy(p), WithWorkers(1))
		require.NoError(t, err)
		logger, hook := test.NewNullLogger()
		logger.SetLevel(logrus.DebugLevel)
		parallel, err := GaussianBlur[uint8](5, 1.2, WithPolicy(p), WithWorkers(7), WithLogger(logrus.NewEntry(logger)))
		require.NoError(t, err)

		a, err := serial.Apply(img)
		require.NoError(t, err)
		b, err := parallel.Apply(img)
		require.NoError(t, err)
		if diff := cmp.Diff(a.Pix(), b.Pix()); diff != "" {
			t.Errorf("%s: serial and parallel differ (-serial +parallel):\n%s", p, diff)
		}
		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, 7, hook.LastEntry().Data["bands"], "policy %s", p)
	}
}

func TestWorkers_Bands(t *testing.T) {
	tests := []struct {
		name    string
		cpus    int
		workers int
		height  int
		want    int
	}{
		{"serial", 8, 1, 23, 1},
		{"requested", 8, 7, 23, 7},
		{"capped by cpus", 3, 7, 23, 3},
		{"capped by height", 8, 7, 4, 4},
		{"one cpu", 1, 7, 23, 1},
		{"default uses cpus", 5, 0, 23, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withCPUs(t, tt.cpus)
			logger, hook := test.NewNullLogger()
			logger.SetLevel(logrus.DebugLevel)
			f, err := Sobel[uint8](WithWorkers(tt.workers), WithLogger(logrus.NewEntry(logger)))
			require.NoError(t, err)
			_, err = f.Apply(pattern(t, 5, tt.height, 1))
			require.NoError(t, err)
			require.NotNil(t, hook.LastEntry())
			assert.Equal(t, tt.want, hook.LastEntry().Data["bands"])
		})
	}
}

func TestApplyContext_Cancelled(t *testing.T) {
	withCPUs(t, 4)
	img := pattern(t, 16, 16, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		f, err := Sobel[uint8](WithWorkers(workers))
		require.NoError(t, err)
		_, err = f.ApplyContext(ctx, img)
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestSobel_Step(t *testing.T) {
	img, err := imaging.New(4, 3, 1, []float64{
		0, 0, 100, 100,
		0, 0, 100, 100,
		0, 0, 100, 100,
	})
	require.NoError(t, err)

	sobel, err := Sobel[float64](WithPolicy(Nearest))
	require.NoError(t, err)
	out, err := sobel.Apply(img)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 400, 400, 0}, out.Row(1))

	// Integer outputs clamp to the domain.
	u8, err := Sobel[uint8](WithPolicy(Nearest))
	require.NoError(t, err)
	clamped, err := u8.Apply(imaging.Convert[uint8](img))
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 255, 255, 0}, clamped.Row(1))
}

func TestSobel_ConstantImageIsFlat(t *testing.T) {
	img, err := imaging.NewBlank[uint8](6, 5, 1)
	require.NoError(t, err)
	img.Fill(120)

	for _, p := range []Policy{Mirror, Nearest, Toroidal, Spherical} {
		sobel, err := Sobel[uint8](WithPolicy(p))
		require.NoError(t, err)
		out, err := sobel.Apply(img)
		require.NoError(t, err)
		for _, v := range out.Pix() {
			require.Equal(t, uint8(0), v, "policy %s", p)
		}
	}
}

func TestRoberts(t *testing.T) {
	img, err := imaging.New(2, 2, 1, []float64{10, 0, 0, 0})
	require.NoError(t, err)
	roberts, err := Roberts[float64]()
	require.NoError(t, err)
	out, err := roberts.Apply(img)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, out.At(0, 0, 0), 1e-9)
}

func TestSquareLaplacian(t *testing.T) {
	img, err := imaging.New(3, 3, 1, []float64{0, 0, 0, 0, 1, 0, 0, 0, 0})
	require.NoError(t, err)
	lap, err := SquareLaplacian[float64]()
	require.NoError(t, err)
	out, err := lap.Apply(img)
	require.NoError(t, err)
	assert.Equal(t, -8.0, out.At(1, 1, 0))
	assert.Equal(t, 1.0, out.At(0, 0, 0))
}

func TestPrewittKernels(t *testing.T) {
	f, err := Prewitt[uint8](5)
	require.NoError(t, err)
	ks := f.Kernels()
	require.Len(t, ks, 2)
	assert.Equal(t, -1.0, ks[0].At(0, 3))
	assert.Equal(t, 0.0, ks[0].At(2, 0))
	assert.Equal(t, 1.0, ks[0].At(4, 1))
	assert.Equal(t, -1.0, ks[1].At(3, 0))
	assert.Equal(t, 1.0, ks[1].At(0, 4))
}

func TestGaussianBlurAlpha(t *testing.T) {
	f, err := GaussianBlurAlpha[float64](1)
	require.NoError(t, err)
	k := f.Kernels()[0]
	assert.Equal(t, 7, k.Width())
	assert.InDelta(t, 1.0, k.Sum(), 1e-12)
	assert.Greater(t, k.At(3, 3), k.At(2, 3))
	assert.InDelta(t, k.At(0, 3), k.At(6, 3), 1e-15)
}

func TestKernelAnchor(t *testing.T) {
	img, err := imaging.New(3, 1, 1, []uint8{1, 2, 3})
	require.NoError(t, err)

	k, err := NewKernelData(3, 1, []float64{1, 0, 0})
	require.NoError(t, err)
	f, err := New[uint8]([]Kernel{k})
	require.NoError(t, err)
	out, err := f.Apply(img)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 1, 2}, out.Pix())

	left, err := k.WithAnchor(0, 0)
	require.NoError(t, err)
	f, err = New[uint8]([]Kernel{left})
	require.NoError(t, err)
	out, err = f.Apply(img)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2, 3}, out.Pix())
}

func TestConstructionErrors(t *testing.T) {
	k, err := NewKernel([][]float64{{1}})
	require.NoError(t, err)

	build := map[string]func() error{
		"even kernel": func() error { _, err := NewKernel([][]float64{{1, 1}, {1, 1}}); return err },
		"ragged kernel": func() error {
			_, err := NewKernel([][]float64{{1, 1, 1}, {1}, {1, 1, 1}})
			return err
		},
		"empty kernel":   func() error { _, err := NewKernel(nil); return err },
		"short data":     func() error { _, err := NewKernelData(3, 3, []float64{1}); return err },
		"bad anchor":     func() error { _, err := k.WithAnchor(1, 0); return err },
		"no kernels":     func() error { _, err := New[uint8](nil); return err },
		"zero kernel":    func() error { _, err := New[uint8]([]Kernel{{}}); return err },
		"bad policy":     func() error { _, err := New[uint8]([]Kernel{k}, WithPolicy(Policy(42))); return err },
		"bad combo":      func() error { _, err := New[uint8]([]Kernel{k}, WithCombination(Combination(7))); return err },
		"neg workers":    func() error { _, err := New[uint8]([]Kernel{k}, WithWorkers(-1)); return err },
		"neg radius":     func() error { _, err := UniformBlur[uint8](-1); return err },
		"even gaussian":  func() error { _, err := GaussianBlur[uint8](4, 1); return err },
		"zero sigma":     func() error { _, err := GaussianBlur[uint8](3, 0); return err },
		"nan alpha":      func() error { _, err := GaussianBlurAlpha[uint8](math.NaN()); return err },
		"small prewitt":  func() error { _, err := Prewitt[uint8](1); return err },
		"unknown preset": func() error { _, err := NewPreset[uint8]("emboss", Params{}); return err },
	}
	for name, fn := range build {
		t.Run(name, func(t *testing.T) {
			err := fn()
			require.Error(t, err)
			assert.True(t, imaging.Is(err, imaging.ErrConstruction), "got %v", err)
		})
	}
}

func TestNewPreset(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			f, err := NewPreset[uint8](name, Params{Radius: 1, Size: 3, Sigma: 1, Alpha: 0.8})
			require.NoError(t, err)
			assert.Equal(t, name, f.Name())
		})
	}
}

func TestBands(t *testing.T) {
	assert.Equal(t, []band{{0, 4}, {4, 7}, {7, 10}}, bands(10, 3))
	assert.Equal(t, []band{{0, 1}, {1, 2}}, bands(2, 5))
	assert.Equal(t, []band{{0, 5}}, bands(5, 0))

	for rows := 1; rows < 40; rows++ {
		for n := 1; n <= 9; n++ {
			bs := bands(rows, n)
			next, smallest, largest := 0, rows, 0
			for _, b := range bs {
				require.Equal(t, next, b.start)
				size := b.end - b.start
				smallest, largest = min(smallest, size), max(largest, size)
				next = b.end
			}
			require.Equal(t, rows, next)
			require.LessOrEqual(t, largest-smallest, 1)
		}
	}
}

func TestDebugLogging(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	f, err := Sobel[uint8](WithLogger(logrus.NewEntry(logger)), WithWorkers(1))
	require.NoError(t, err)
	_, err = f.Apply(pattern(t, 4, 4, 1))
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "filter pass complete", entry.Message)
	assert.Equal(t, "sobel", entry.Data["filter"])
	assert.Equal(t, "filtering", entry.Data["component"])
}
