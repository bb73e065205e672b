package footprint

import (
	"fmt"
	"math"
)

// Contribution pairs one path's footprint climatology with its weight in the
// stitched composite, typically the fraction of valid measurement periods.
type Contribution struct {
	Station string
	Weight  float64
	Grid    *Grid
}

// Stitch merges per-path footprint grids into one composite covering the
// union of their extents. Overlapping cells take the weight-averaged density;
// cells no contribution covers stay nodata. When no contribution carries a
// weight, all paths count equally. The result is normalized to a probability
// density over the composite extent.
func Stitch(contributions []Contribution) (*Grid, error) {
	if len(contributions) == 0 {
		return nil, fmt.Errorf("no footprint grids to stitch")
	}
	allUnset := true
	for _, c := range contributions {
		if c.Weight < 0 {
			return nil, fmt.Errorf("station %s: stitching weight must not be negative, got %v", c.Station, c.Weight)
		}
		if c.Weight > 0 {
			allUnset = false
		}
		if c.Grid == nil {
			return nil, fmt.Errorf("station %s: missing footprint grid", c.Station)
		}
	}
	weights := make([]float64, len(contributions))
	for i, c := range contributions {
		if allUnset {
			weights[i] = 1
			continue
		}
		weights[i] = c.Weight
	}

	base := contributions[0].Grid
	for _, c := range contributions[1:] {
		if !base.SameAlignment(c.Grid) {
			return nil, fmt.Errorf("station %s: footprint grid is not aligned with station %s (cellsize %v vs %v)",
				c.Station, contributions[0].Station, c.Grid.CellSize, base.CellSize)
		}
	}

	out := unionGrid(contributions)
	weightSum := make([]float64, len(out.Values))
	accum := make([]float64, len(out.Values))

	for ci, c := range contributions {
		g := c.Grid
		for row := 0; row < g.NRows; row++ {
			for col := 0; col < g.NCols; col++ {
				if g.IsNoData(row, col) {
					continue
				}
				x, y := g.CellCenter(row, col)
				outRow, outCol, ok := out.CellAt(x, y)
				if !ok {
					continue
				}
				i := outRow*out.NCols + outCol
				accum[i] += weights[ci] * g.At(row, col)
				weightSum[i] += weights[ci]
			}
		}
	}

	for i := range out.Values {
		if weightSum[i] > 0 {
			out.Values[i] = accum[i] / weightSum[i]
		}
	}

	if err := out.Normalize(); err != nil {
		return nil, err
	}
	return out, nil
}

// MaskTerrain sets footprint cells to nodata wherever the terrain model
// reaches the beam elevation, then renormalizes what remains. Footprint cells
// the terrain model does not cover are left untouched.
func MaskTerrain(fp, dem *Grid, beamElevation float64) error {
	if !fp.SameAlignment(dem) {
		return fmt.Errorf("terrain model is not aligned with the footprint grid")
	}
	for row := 0; row < fp.NRows; row++ {
		for col := 0; col < fp.NCols; col++ {
			if fp.IsNoData(row, col) {
				continue
			}
			x, y := fp.CellCenter(row, col)
			demRow, demCol, ok := dem.CellAt(x, y)
			if !ok || dem.IsNoData(demRow, demCol) {
				continue
			}
			if dem.At(demRow, demCol) >= beamElevation {
				fp.Set(row, col, fp.NoData)
			}
		}
	}
	return fp.Normalize()
}

// unionGrid builds an empty grid covering the union of all contribution
// extents on the shared lattice.
func unionGrid(contributions []Contribution) *Grid {
	first := contributions[0].Grid
	xll, yll := first.XLL, first.YLL
	xur := first.XLL + float64(first.NCols)*first.CellSize
	yur := first.YLL + float64(first.NRows)*first.CellSize
	for _, c := range contributions[1:] {
		g := c.Grid
		xll = math.Min(xll, g.XLL)
		yll = math.Min(yll, g.YLL)
		xur = math.Max(xur, g.XLL+float64(g.NCols)*g.CellSize)
		yur = math.Max(yur, g.YLL+float64(g.NRows)*g.CellSize)
	}
	ncols := int(math.Round((xur - xll) / first.CellSize))
	nrows := int(math.Round((yur - yll) / first.CellSize))
	return NewGrid(ncols, nrows, xll, yll, first.CellSize, first.NoData)
}
