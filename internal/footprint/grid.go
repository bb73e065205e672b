// Package footprint stitches per-path footprint climatologies into a single
// source-area grid, masking cells blocked by terrain.
package footprint

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Grid is a regular raster in ESRI ASCII layout. Values are stored row-major
// from the top-left corner, matching the on-disk order.
type Grid struct {
	NCols    int
	NRows    int
	XLL      float64 // x of lower-left corner
	YLL      float64 // y of lower-left corner
	CellSize float64
	NoData   float64
	Values   []float64
}

// NewGrid allocates a grid with every cell set to the nodata value.
func NewGrid(ncols, nrows int, xll, yll, cellSize, noData float64) *Grid {
	values := make([]float64, ncols*nrows)
	for i := range values {
		values[i] = noData
	}
	return &Grid{
		NCols:    ncols,
		NRows:    nrows,
		XLL:      xll,
		YLL:      yll,
		CellSize: cellSize,
		NoData:   noData,
		Values:   values,
	}
}

// At returns the value at (row, col), row 0 being the northern edge.
func (g *Grid) At(row, col int) float64 {
	return g.Values[row*g.NCols+col]
}

// Set writes the value at (row, col).
func (g *Grid) Set(row, col int, v float64) {
	g.Values[row*g.NCols+col] = v
}

// IsNoData reports whether the value at (row, col) is the nodata sentinel.
func (g *Grid) IsNoData(row, col int) bool {
	v := g.At(row, col)
	return v == g.NoData || math.IsNaN(v)
}

// CellCenter returns the map coordinates of the centre of (row, col).
func (g *Grid) CellCenter(row, col int) (x, y float64) {
	x = g.XLL + (float64(col)+0.5)*g.CellSize
	y = g.YLL + (float64(g.NRows-1-row)+0.5)*g.CellSize
	return x, y
}

// CellAt returns the (row, col) containing map coordinates (x, y) and whether
// the point falls inside the grid.
func (g *Grid) CellAt(x, y float64) (row, col int, ok bool) {
	col = int(math.Floor((x - g.XLL) / g.CellSize))
	rowFromBottom := int(math.Floor((y - g.YLL) / g.CellSize))
	row = g.NRows - 1 - rowFromBottom
	ok = col >= 0 && col < g.NCols && row >= 0 && row < g.NRows
	return row, col, ok
}

// SameAlignment reports whether two grids share cell size and a common cell
// lattice, so cells of one can be indexed in the other without resampling.
func (g *Grid) SameAlignment(other *Grid) bool {
	const tol = 1e-6
	if math.Abs(g.CellSize-other.CellSize) > tol*g.CellSize {
		return false
	}
	dx := math.Mod(math.Abs(g.XLL-other.XLL), g.CellSize)
	dy := math.Mod(math.Abs(g.YLL-other.YLL), g.CellSize)
	snapped := func(d float64) bool {
		return d < tol*g.CellSize || g.CellSize-d < tol*g.CellSize
	}
	return snapped(dx) && snapped(dy)
}

// Sum integrates all data cells, weighted by cell area.
func (g *Grid) Sum() float64 {
	area := g.CellSize * g.CellSize
	var sum float64
	for row := 0; row < g.NRows; row++ {
		for col := 0; col < g.NCols; col++ {
			if g.IsNoData(row, col) {
				continue
			}
			sum += g.At(row, col) * area
		}
	}
	return sum
}

// Normalize scales the grid in place so it integrates to one, turning a
// stitched weight surface into a probability density. A grid with no positive
// mass cannot be normalized.
func (g *Grid) Normalize() error {
	total := g.Sum()
	if total <= 0 {
		return fmt.Errorf("footprint grid has no positive mass to normalize")
	}
	for i, v := range g.Values {
		if v == g.NoData || math.IsNaN(v) {
			continue
		}
		g.Values[i] = v / total
	}
	return nil
}

// ReadASCIIFile parses an ESRI ASCII raster from disk.
func ReadASCIIFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	grid, err := ReadASCII(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return grid, nil
}

// ReadASCII parses an ESRI ASCII raster: six header lines (ncols, nrows,
// xllcorner, yllcorner, cellsize, NODATA_value) followed by whitespace
// separated values in row-major order from the top-left.
func ReadASCII(r io.Reader) (*Grid, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	grid := &Grid{NoData: -9999}
	headers := map[string]bool{}
	for len(headers) < 6 && scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed raster header line: %q", scanner.Text())
		}
		key := strings.ToLower(fields[0])
		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("raster header %s: %w", key, err)
		}
		switch key {
		case "ncols":
			grid.NCols = int(value)
		case "nrows":
			grid.NRows = int(value)
		case "xllcorner":
			grid.XLL = value
		case "yllcorner":
			grid.YLL = value
		case "cellsize":
			grid.CellSize = value
		case "nodata_value":
			grid.NoData = value
		default:
			return nil, fmt.Errorf("unknown raster header %q", key)
		}
		headers[key] = true
	}
	if grid.NCols <= 0 || grid.NRows <= 0 {
		return nil, fmt.Errorf("raster header is missing grid dimensions")
	}
	if grid.CellSize <= 0 {
		return nil, fmt.Errorf("raster cellsize must be positive, got %v", grid.CellSize)
	}

	grid.Values = make([]float64, 0, grid.NCols*grid.NRows)
	for scanner.Scan() {
		for _, field := range strings.Fields(scanner.Text()) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("raster cell %d: %w", len(grid.Values), err)
			}
			grid.Values = append(grid.Values, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(grid.Values) != grid.NCols*grid.NRows {
		return nil, fmt.Errorf("raster has %d cells, header promises %d", len(grid.Values), grid.NCols*grid.NRows)
	}
	return grid, nil
}

// WriteASCIIFile writes the grid to disk in ESRI ASCII layout.
func WriteASCIIFile(path string, g *Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteASCII(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteASCII writes the grid in ESRI ASCII layout.
func WriteASCII(w io.Writer, g *Grid) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\n", g.NCols)
	fmt.Fprintf(bw, "nrows %d\n", g.NRows)
	fmt.Fprintf(bw, "xllcorner %s\n", formatCoord(g.XLL))
	fmt.Fprintf(bw, "yllcorner %s\n", formatCoord(g.YLL))
	fmt.Fprintf(bw, "cellsize %s\n", formatCoord(g.CellSize))
	fmt.Fprintf(bw, "NODATA_value %s\n", formatCoord(g.NoData))
	for row := 0; row < g.NRows; row++ {
		for col := 0; col < g.NCols; col++ {
			if col > 0 {
				bw.WriteByte(' ')
			}
			v := g.At(row, col)
			if math.IsNaN(v) {
				v = g.NoData
			}
			bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
