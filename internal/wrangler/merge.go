package wrangler

import (
	"fmt"
	"sort"
	"time"
)

// MergedRecord is one scintillometer interval joined with the weather
// observations in force at that time. Values holds the union of the .mnd
// columns and the renamed weather columns.
type MergedRecord struct {
	Time      time.Time
	Averaging time.Duration
	Station   string
	Values    map[string]float64
}

// MergeWithWeather aligns a weather series onto the scintillometer timestamps
// with last-observation-carried-forward and normalises units: temperatures
// that look like Celsius (< 100) become Kelvin, pressures that look like
// pascals (> 2000) become hPa.
func MergeWithWeather(ds *Dataset, weather []WeatherRecord) ([]MergedRecord, error) {
	if len(ds.Records) == 0 {
		return nil, fmt.Errorf("scintillometer dataset contains no records")
	}
	if len(weather) == 0 {
		return nil, fmt.Errorf("weather series contains no records")
	}

	sorted := make([]WeatherRecord, len(weather))
	copy(sorted, weather)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	merged := make([]MergedRecord, 0, len(ds.Records))
	for _, rec := range ds.Records {
		w := lastObservationAt(sorted, rec.Time)
		m := MergedRecord{
			Time:      rec.Time,
			Averaging: rec.Averaging,
			Station:   ds.StationCode,
			Values:    make(map[string]float64, len(rec.Values)+len(w.Values)),
		}
		for k, v := range rec.Values {
			m.Values[k] = v
		}
		for k, v := range w.Values {
			m.Values[k] = normaliseUnit(k, v)
		}
		merged = append(merged, m)
	}
	return merged, nil
}

// lastObservationAt returns the latest weather record not after t, or the
// earliest record when t precedes the series.
func lastObservationAt(sorted []WeatherRecord, t time.Time) WeatherRecord {
	idx := sort.Search(len(sorted), func(i int) bool { return sorted[i].Time.After(t) })
	if idx == 0 {
		return sorted[0]
	}
	return sorted[idx-1]
}

func normaliseUnit(name string, v float64) float64 {
	switch name {
	case "temperature_2m":
		if v < 100 {
			return v + 273.15
		}
	case "pressure":
		if v > 2000 {
			return v / 100
		}
	}
	return v
}
