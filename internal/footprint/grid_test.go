package footprint

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRaster = `ncols 3
nrows 2
xllcorner 680000
yllcorner 5238000
cellsize 10
NODATA_value -9999
0.1 0.2 0.3
0.4 -9999 0.6
`

func TestReadASCII(t *testing.T) {
	grid, err := ReadASCII(strings.NewReader(sampleRaster))
	require.NoError(t, err)

	want := &Grid{
		NCols:    3,
		NRows:    2,
		XLL:      680000,
		YLL:      5238000,
		CellSize: 10,
		NoData:   -9999,
		Values:   []float64{0.1, 0.2, 0.3, 0.4, -9999, 0.6},
	}
	assert.Empty(t, cmp.Diff(want, grid))
}

func TestReadASCII_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raster  string
		wantErr string
	}{
		{
			"malformed header",
			"ncols 3 extra\n",
			"malformed raster header",
		},
		{
			"unknown header",
			"ncols 3\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 10\nskew 0\n",
			`unknown raster header "skew"`,
		},
		{
			"non-numeric header",
			"ncols three\n",
			"raster header ncols",
		},
		{
			"zero cellsize",
			"ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 0\nNODATA_value -9999\n1\n",
			"cellsize must be positive",
		},
		{
			"cell count mismatch",
			"ncols 2\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 10\nNODATA_value -9999\n1 2 3\n",
			"raster has 3 cells, header promises 4",
		},
		{
			"non-numeric cell",
			"ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 10\nNODATA_value -9999\nx\n",
			"raster cell 0",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadASCII(strings.NewReader(tc.raster))
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestWriteASCII_RoundTrip(t *testing.T) {
	grid, err := ReadASCII(strings.NewReader(sampleRaster))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "fp.asc")
	require.NoError(t, WriteASCIIFile(path, grid))

	back, err := ReadASCIIFile(path)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(grid, back))
}

func TestWriteASCII_NaNBecomesNoData(t *testing.T) {
	grid := NewGrid(2, 1, 0, 0, 10, -9999)
	grid.Set(0, 0, 0.5)
	grid.Set(0, 1, math.NaN())

	path := filepath.Join(t.TempDir(), "fp.asc")
	require.NoError(t, WriteASCIIFile(path, grid))

	back, err := ReadASCIIFile(path)
	require.NoError(t, err)
	assert.Equal(t, -9999.0, back.At(0, 1))
}

func TestGrid_CellCenterAndCellAt(t *testing.T) {
	grid, err := ReadASCII(strings.NewReader(sampleRaster))
	require.NoError(t, err)

	// Row 0 is the northern edge: its centre y sits above row 1's.
	x, y := grid.CellCenter(0, 0)
	assert.Equal(t, 680005.0, x)
	assert.Equal(t, 5238015.0, y)

	row, col, ok := grid.CellAt(x, y)
	require.True(t, ok)
	assert.Equal(t, 0, row)
	assert.Equal(t, 0, col)

	// Every cell centre maps back to its own indices.
	for r := 0; r < grid.NRows; r++ {
		for c := 0; c < grid.NCols; c++ {
			x, y := grid.CellCenter(r, c)
			row, col, ok := grid.CellAt(x, y)
			require.True(t, ok)
			assert.Equal(t, r, row)
			assert.Equal(t, c, col)
		}
	}

	_, _, ok = grid.CellAt(0, 0)
	assert.False(t, ok)
}

func TestGrid_IsNoData(t *testing.T) {
	grid, err := ReadASCII(strings.NewReader(sampleRaster))
	require.NoError(t, err)

	assert.False(t, grid.IsNoData(0, 0))
	assert.True(t, grid.IsNoData(1, 1))

	grid.Set(0, 0, math.NaN())
	assert.True(t, grid.IsNoData(0, 0))
}

func TestGrid_SameAlignment(t *testing.T) {
	a := NewGrid(3, 2, 680000, 5238000, 10, -9999)

	// Offset by whole cells keeps the lattice.
	b := NewGrid(5, 5, 680020, 5237970, 10, -9999)
	assert.True(t, a.SameAlignment(b))

	// Half-cell shift breaks it.
	c := NewGrid(3, 2, 680005, 5238000, 10, -9999)
	assert.False(t, a.SameAlignment(c))

	// Different resolution breaks it.
	d := NewGrid(3, 2, 680000, 5238000, 20, -9999)
	assert.False(t, a.SameAlignment(d))
}

func TestGrid_SumAndNormalize(t *testing.T) {
	grid, err := ReadASCII(strings.NewReader(sampleRaster))
	require.NoError(t, err)

	// (0.1+0.2+0.3+0.4+0.6) * 100 m^2 per cell, nodata excluded.
	assert.InEpsilon(t, 160.0, grid.Sum(), 1e-12)

	require.NoError(t, grid.Normalize())
	assert.InEpsilon(t, 1.0, grid.Sum(), 1e-12)
	// Nodata cells stay untouched.
	assert.Equal(t, -9999.0, grid.At(1, 1))
}

func TestGrid_NormalizeNoMass(t *testing.T) {
	grid := NewGrid(2, 2, 0, 0, 10, -9999)
	err := grid.Normalize()
	require.EqualError(t, err, "footprint grid has no positive mass to normalize")
}

func TestNewGrid_FilledWithNoData(t *testing.T) {
	grid := NewGrid(2, 3, 0, 0, 10, -9999)
	want := make([]float64, 6)
	for i := range want {
		want[i] = -9999
	}
	assert.Empty(t, cmp.Diff(want, grid.Values))
}
