package wrangler

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gampnico/scintillometry-tools/internal/domain"
)

// ParseRawMessage deserializes a RawMessage's value into a Reading. It
// expects the flat JSON produced by the station collector; numeric fields
// parse leniently to zero, matching the collector's habit of forwarding SRun
// output verbatim.
func ParseRawMessage(raw domain.RawMessage) (domain.Reading, error) {
	var rec domain.RawBLSRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return domain.Reading{}, fmt.Errorf("parse raw record: %w", err)
	}

	reading := domain.Reading{
		Station:    rec.Station,
		Time:       raw.Timestamp,
		Cn2:        parseFloatOrZero(rec.Cn2),
		CT2:        parseFloatOrZero(rec.CT2),
		HFree:      parseFloatOrZero(rec.HConvection),
		Pressure:   parseFloatOrZero(rec.Pressure),
		RawPayload: raw.Value,
	}
	if rec.Station == "" {
		reading.Station = raw.Headers["station_code"]
	}

	if rec.Time != "" {
		if t, err := time.Parse(time.RFC3339, SplitISODate(rec.Time, true)); err == nil {
			reading.Time = t
		}
		if d, err := ParseISODuration(SplitISODate(rec.Time, false)); err == nil {
			reading.Averaging = d
		}
	}
	return reading, nil
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
