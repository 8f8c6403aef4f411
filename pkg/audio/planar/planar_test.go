package planar

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

func TestPlanarize(t *testing.T) {
	b := []int16{1, 11, 2, 12, 3, 13, 4, 14}
	r, err := Planarize(2, b)
	require.NoError(t, err)
	require.Equal(t, [][]int16{{1, 2, 3, 4}, {11, 12, 13, 14}}, r, spew.Sdump(b))

	_, err = Planarize(3, b)
	require.Error(t, err)

	_, err = Planarize(0, b)
	require.Error(t, err)
}

func TestUnplanarize(t *testing.T) {
	b := [][]float32{{0.1, 0.2, 0.3}, {-0.1, -0.2, -0.3}}
	r, err := Unplanarize(b)
	require.NoError(t, err)
	require.Equal(t, []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}, r, spew.Sdump(b))

	_, err = Unplanarize([][]float32{{1, 2}, {1}})
	require.Error(t, err)
}

func TestPlanarizeUnplanarize(t *testing.T) {
	b := []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	p, err := Planarize(3, b)
	require.NoError(t, err)
	r, err := Unplanarize(p)
	require.NoError(t, err)
	require.Equal(t, b, r)
}
