package wrangler

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// TransectPoint pairs a path height with its normalised position along the
// scintillometer beam.
type TransectPoint struct {
	PathHeight   float64 // m above terrain
	NormPosition float64 // 0 at the transmitter, 1 at the receiver
}

// ParseTransectFile reads a two-column transect CSV (path_height,
// norm_position) produced by the DEM preprocessing step.
func ParseTransectFile(path string) ([]TransectPoint, error) {
	if err := CheckFileExists(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transect file: %w", err)
	}
	defer f.Close()
	return ParseTransect(f)
}

// ParseTransect parses transect CSV content and validates positions.
func ParseTransect(r io.Reader) ([]TransectPoint, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	var points []TransectPoint
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read transect row: %w", err)
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("transect row has %d columns, expected 2", len(row))
		}
		if _, err := strconv.ParseFloat(row[0], 64); err != nil && len(points) == 0 {
			continue // header row
		}
		height, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, fmt.Errorf("parse path height %q: %w", row[0], err)
		}
		position, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse normalised position %q: %w", row[1], err)
		}
		if math.IsNaN(position) || position < 0 || position > 1 {
			return nil, fmt.Errorf("normalised position is not between 0 and 1: %v", position)
		}
		points = append(points, TransectPoint{PathHeight: height, NormPosition: position})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("transect file contains no data rows")
	}
	return points, nil
}
