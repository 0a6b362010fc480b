package morphology

import (
	"testing"

	"github.com/ironsheep/imagein/internal/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapes(t *testing.T) {
	tests := []struct {
		name  string
		build func(int) (*StructElem, error)
		r     int
		want  string
		count int
	}{
		{"disk1", Disk, 1, ".#.\n###\n.#.", 5},
		{"disk2", Disk, 2, "..#..\n.###.\n#####\n.###.\n..#..", 13},
		{"diamond1", Diamond, 1, ".#.\n###\n.#.", 5},
		{"square1", Square, 1, "###\n###\n###", 9},
		{"point", Square, 0, "#", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se, err := tt.build(tt.r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, se.String())
			assert.Equal(t, tt.count, se.count())
			ox, oy := se.Origin()
			assert.Equal(t, tt.r, ox)
			assert.Equal(t, tt.r, oy)
		})
	}

	d3, err := Diamond(3)
	require.NoError(t, err)
	assert.Equal(t, 25, d3.count())
	disk3, err := Disk(3)
	require.NoError(t, err)
	assert.Equal(t, 29, disk3.count())
}

func TestStructElem_ConstructionErrors(t *testing.T) {
	_, err := Disk(-1)
	assert.True(t, imaging.Is(err, imaging.ErrConstruction))

	_, err = NewStructElem(nil, 0, 0)
	assert.True(t, imaging.Is(err, imaging.ErrConstruction))

	_, err = NewStructElem([][]bool{{false, false}}, 0, 0)
	assert.True(t, imaging.Is(err, imaging.ErrConstruction))

	_, err = NewStructElem([][]bool{{true, true}, {true}}, 0, 0)
	assert.True(t, imaging.Is(err, imaging.ErrConstruction))

	_, err = NewStructElem([][]bool{{true}}, 1, 0)
	assert.True(t, imaging.Is(err, imaging.ErrConstruction))

	_, err = ParseStructElem("#x", 0, 0)
	assert.True(t, imaging.Is(err, imaging.ErrConstruction))

	_, err = Shape("hexagon", 1)
	assert.True(t, imaging.Is(err, imaging.ErrConstruction))
}

func TestStructElem_Mutation(t *testing.T) {
	se, err := ParseStructElem("#.\n..", 0, 0)
	require.NoError(t, err)

	require.NoError(t, se.Set(1, 1, true))
	assert.True(t, se.At(1, 1))
	assert.False(t, se.At(5, 5))

	assert.True(t, imaging.Is(se.Set(2, 0, true), imaging.ErrOutOfRange))

	require.NoError(t, se.Set(0, 0, false))
	assert.True(t, imaging.Is(se.Set(1, 1, false), imaging.ErrConstruction))
	assert.True(t, se.At(1, 1))

	require.NoError(t, se.SetOrigin(1, 1))
	assert.True(t, imaging.Is(se.SetOrigin(2, 0), imaging.ErrConstruction))

	require.NoError(t, se.Resize(3, 3))
	assert.Equal(t, "...\n.#.\n...", se.String())

	assert.True(t, imaging.Is(se.Resize(1, 1), imaging.ErrConstruction))
	assert.True(t, imaging.Is(se.Resize(0, 2), imaging.ErrConstruction))
	assert.Equal(t, 3, se.Width())

	clone := se.Clone()
	require.NoError(t, clone.Set(0, 0, true))
	assert.False(t, se.At(0, 0))
}
