package wrangler

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// zamgRenames maps ZAMG klima column codes to descriptive names.
var zamgRenames = map[string]string{
	"DD":  "wind_direction",
	"FF":  "vector_wind_speed",
	"FAM": "mean_wind_speed",
	"GSX": "global_irradiance",
	"P":   "pressure",
	"RF":  "relative_humidity",
	"RR":  "precipitation",
	"TL":  "temperature_2m",
}

// WeatherRecord is one time step of a ZAMG klima export, with columns renamed
// and gaps filled.
type WeatherRecord struct {
	Time    time.Time
	Station string
	Values  map[string]float64
}

// ZAMGPath builds the conventional klima export filename for a station-day.
func ZAMGPath(dir, stationID string, day time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("zamg_%s_%s.csv", stationID, day.Format("20060102")))
}

// ParseZAMGFile reads a klima CSV for the given station.
func ParseZAMGFile(path, stationID string, loc *time.Location) ([]WeatherRecord, error) {
	if err := CheckFileExists(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open weather file: %w", err)
	}
	defer f.Close()
	return ParseZAMG(f, stationID, loc)
}

// ParseZAMG parses klima CSV content. The first column must be the timestamp;
// known column codes are renamed, unknown ones kept verbatim. Missing values
// are forward-filled, then back-filled, so the result has no gaps.
func ParseZAMG(r io.Reader, stationID string, loc *time.Location) ([]WeatherRecord, error) {
	if loc == nil {
		loc = time.UTC
	}
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read weather header: %w", err)
	}
	names := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if renamed, ok := zamgRenames[h]; ok {
			h = renamed
		}
		names[i] = h
	}

	var records []WeatherRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read weather row: %w", err)
		}
		rec := WeatherRecord{Station: stationID, Values: map[string]float64{}}
		for i, field := range row {
			if i >= len(names) {
				break
			}
			field = strings.TrimSpace(field)
			if i == 0 {
				t, err := parseZAMGTime(field)
				if err != nil {
					return nil, err
				}
				rec.Time = t.In(loc)
				continue
			}
			if names[i] == "station" {
				if field != "" {
					rec.Station = field
				}
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				v = math.NaN()
			}
			rec.Values[names[i]] = v
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("weather file contains no data rows")
	}

	fillGaps(records)
	return records, nil
}

func parseZAMGTime(field string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, field); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse weather timestamp %q", field)
}

// fillGaps replaces NaNs column-wise with the last valid value, then with the
// next valid value for leading gaps.
func fillGaps(records []WeatherRecord) {
	if len(records) == 0 {
		return
	}
	for name := range records[0].Values {
		last := math.NaN()
		for i := range records {
			v := records[i].Values[name]
			if math.IsNaN(v) {
				records[i].Values[name] = last
			} else {
				last = v
			}
		}
		next := math.NaN()
		for i := len(records) - 1; i >= 0; i-- {
			v := records[i].Values[name]
			if math.IsNaN(v) {
				records[i].Values[name] = next
			} else {
				next = v
			}
		}
	}
}
