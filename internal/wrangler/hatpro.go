package wrangler

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gampnico/scintillometry-tools/internal/atmosphere"
)

// defaultHATPROLevels are the scan heights (m above the station) of the
// radiometer's boundary-layer mode.
var defaultHATPROLevels = []int{0, 10, 30, 50, 75, 100, 125, 150, 200, 250}

// ConstructHATPROLevels validates scan levels, falling back to the default
// boundary-layer set when none are given.
func ConstructHATPROLevels(levels []int) ([]int, error) {
	if len(levels) == 0 {
		return append([]int(nil), defaultHATPROLevels...), nil
	}
	for i, l := range levels {
		if l < 0 {
			return nil, fmt.Errorf("scan levels must be non-negative, got %d", l)
		}
		if i > 0 && l <= levels[i-1] {
			return nil, fmt.Errorf("scan levels must be strictly increasing, got %v", levels)
		}
	}
	return append([]int(nil), levels...), nil
}

// LoadHATPRO parses one raw radiometer export into a profile. The first line
// is a header ("rawdate" plus the scan heights); rows are semicolon-separated
// with a timestamp followed by one value per level.
func LoadHATPRO(r io.Reader, levels []int, loc *time.Location, elevation float64) (*atmosphere.Profile, error) {
	if loc == nil {
		loc = time.UTC
	}
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		return nil, fmt.Errorf("radiometer file is empty")
	}
	header := splitHATPRORow(scanner.Text())
	if len(header) != len(levels)+1 {
		return nil, fmt.Errorf("radiometer header has %d columns for %d scan levels", len(header), len(levels))
	}

	var (
		times  []time.Time
		values [][]float64
	)
	for scanner.Scan() {
		fields := splitHATPRORow(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != len(levels)+1 {
			return nil, fmt.Errorf("radiometer row has %d columns, expected %d", len(fields), len(levels)+1)
		}
		t, err := parseZAMGTime(fields[0])
		if err != nil {
			return nil, fmt.Errorf("parse radiometer timestamp: %w", err)
		}
		row := make([]float64, len(levels))
		for j, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("parse radiometer value %q: %w", field, err)
			}
			row[j] = v
		}
		times = append(times, t.In(loc))
		values = append(values, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read radiometer content: %w", err)
	}

	profile, err := atmosphere.NewProfile(levels, times, values)
	if err != nil {
		return nil, err
	}
	profile.Elevation = elevation
	return profile, nil
}

func splitHATPRORow(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	fields := strings.Split(line, ";")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

// ParseHATPRO loads the humidity and temperature scans sharing a filename
// prefix ("<prefix>_humidity.csv", "<prefix>_temperature.csv"). Humidity is
// delivered in g m^-3 and converted to kg m^-3.
func ParseHATPRO(prefix string, levels []int, loc *time.Location, elevation float64) (map[string]*atmosphere.Profile, error) {
	scans, err := ConstructHATPROLevels(levels)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*atmosphere.Profile, 2)
	for _, variable := range []string{"humidity", "temperature"} {
		path := fmt.Sprintf("%s_%s.csv", prefix, variable)
		if err := CheckFileExists(path); err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open radiometer file: %w", err)
		}
		profile, err := LoadHATPRO(f, scans, loc, elevation)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s scan: %w", variable, err)
		}
		if variable == "humidity" {
			for i := range profile.Values {
				for j := range profile.Values[i] {
					profile.Values[i][j] *= 1e-3
				}
			}
		}
		out[variable] = profile
	}
	return out, nil
}

// ParseVertical dispatches vertical measurements by device. Only the HATPRO
// radiometer is supported.
func ParseVertical(prefix, device string, levels []int, loc *time.Location, elevation float64) (map[string]*atmosphere.Profile, error) {
	if !strings.EqualFold(device, "hatpro") {
		return nil, fmt.Errorf("%s measurements are not supported. Use 'hatpro'.", strings.Title(device)) //nolint:staticcheck // device names are plain ASCII
	}
	return ParseHATPRO(prefix, levels, loc, elevation)
}
