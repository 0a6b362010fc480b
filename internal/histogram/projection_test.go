package histogram

import (
	"testing"

	"github.com/ironsheep/imagein/internal/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// grid3x2 is
//
//	1 2 3
//	4 5 6
func grid3x2(t *testing.T) *imaging.Image[uint8] {
	t.Helper()
	img, err := imaging.New(3, 2, 1, []uint8{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	return img
}

func TestProjection_FullSpan(t *testing.T) {
	img := grid3x2(t)

	rows, err := NewProjection(img, FullSpan, true, img.Bounds(), 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 15}, rows.Values())
	assert.Equal(t, 2, rows.Width())
	assert.True(t, rows.Horizontal())

	cols, err := NewProjection(img, FullSpan, false, img.Bounds(), 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 7, 9}, cols.Values())
	assert.Equal(t, 21.0, cols.Total())
	assert.Equal(t, 2, cols.Peak())
}

func TestProjection_SingleLine(t *testing.T) {
	img := grid3x2(t)

	col1, err := NewProjection(img, 1, true, img.Bounds(), 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5}, col1.Values())

	row1, err := NewProjection(img, 1, false, img.Bounds(), 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5, 6}, row1.Values())
	assert.Equal(t, 1, row1.Line())
}

func TestProjection_SubRegion(t *testing.T) {
	img := grid3x2(t)
	r := imaging.Region{X: 1, Y: 0, W: 2, H: 2}

	rows, err := NewProjection(img, FullSpan, true, r, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 11}, rows.Values())

	// Selected lines are absolute image coordinates inside the region.
	col, err := NewProjection(img, 2, true, r, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 6}, col.Values())

	_, err = NewProjection(img, 0, true, r, 0)
	assert.True(t, imaging.Is(err, imaging.ErrOutOfRange))
}

func TestProjection_Errors(t *testing.T) {
	img := grid3x2(t)

	_, err := NewProjection(img, FullSpan, true, imaging.Region{X: 0, Y: 0, W: 4, H: 1}, 0)
	assert.True(t, imaging.Is(err, imaging.ErrOutOfRange))

	_, err = NewProjection(img, FullSpan, true, img.Bounds(), 2)
	assert.True(t, imaging.Is(err, imaging.ErrOutOfRange))

	_, err = NewProjection(img, 5, false, img.Bounds(), 0)
	assert.True(t, imaging.Is(err, imaging.ErrOutOfRange))

	_, err = NewProjection(img, -2, false, img.Bounds(), 0)
	assert.True(t, imaging.Is(err, imaging.ErrOutOfRange))
}
