package wrangler

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"
)

// defaultInnFluxHeaders describe the innFLUX CSV export: the timestamp is
// split over six columns, followed by the derived quantities.
var defaultInnFluxHeaders = []string{
	"year", "month", "day", "hour", "minutes", "seconds",
	"shf", "wind_speed", "obukhov",
}

// InnFluxRecord is one 30-minute eddy-covariance interval used as comparison
// data for the scintillometer fluxes.
type InnFluxRecord struct {
	Time   time.Time
	Values map[string]float64
}

// ParseInnFluxFile reads an innFLUX CSV export.
func ParseInnFluxFile(path string, headers []string, loc *time.Location) ([]InnFluxRecord, error) {
	if err := CheckFileExists(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open innflux file: %w", err)
	}
	defer f.Close()
	return ParseInnFlux(f, headers, loc)
}

// ParseInnFlux parses headerless innFLUX CSV content. The year through
// seconds columns collapse into the record timestamp; remaining columns are
// keyed by the header list (default when nil).
func ParseInnFlux(r io.Reader, headers []string, loc *time.Location) ([]InnFluxRecord, error) {
	if loc == nil {
		loc = time.UTC
	}
	if headers == nil {
		headers = defaultInnFluxHeaders
	}
	if len(headers) < 7 {
		return nil, fmt.Errorf("innflux header list needs the six timestamp columns plus data, got %d", len(headers))
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	var records []InnFluxRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read innflux row: %w", err)
		}
		if len(row) != len(headers) {
			return nil, fmt.Errorf("innflux row has %d columns, expected %d", len(row), len(headers))
		}

		parts := make([]int, 6)
		for i := 0; i < 6; i++ {
			n, err := strconv.Atoi(row[i])
			if err != nil {
				return nil, fmt.Errorf("parse innflux %s %q: %w", headers[i], row[i], err)
			}
			parts[i] = n
		}
		rec := InnFluxRecord{
			Time: time.Date(parts[0], time.Month(parts[1]), parts[2],
				parts[3], parts[4], parts[5], 0, time.UTC).In(loc),
			Values: make(map[string]float64, len(headers)-6),
		}
		for i := 6; i < len(headers); i++ {
			v, err := strconv.ParseFloat(row[i], 64)
			if err != nil {
				v = math.NaN()
			}
			rec.Values[headers[i]] = v
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("innflux file contains no data rows")
	}
	return records, nil
}
