// Package wrangler parses the file formats the toolkit ingests: BLS450 .mnd
// output, path transects, ZAMG klima exports, HATPRO vertical scans, and
// innFLUX eddy-covariance exports.
package wrangler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrNotFormat1 is returned for .mnd files written by unsupported SRun versions.
var ErrNotFormat1 = errors.New("the input file does not follow FORMAT-1")

// Dataset is a parsed .mnd file: header metadata plus one record per
// averaging interval.
type Dataset struct {
	Format      string
	CreatedAt   time.Time
	StationCode string
	Parameters  map[string]string
	Names       []string
	Records     []Record
}

// Record holds the numeric columns of one averaging interval, keyed by the
// variable names declared in the file header.
type Record struct {
	Time      time.Time
	Averaging time.Duration
	Values    map[string]float64
}

// Value looks up a named column, reporting whether it was present.
func (r Record) Value(name string) (float64, bool) {
	v, ok := r.Values[name]
	return v, ok
}

// Column collects one named column across all records. Missing values are NaN.
func (d *Dataset) Column(name string) []float64 {
	out := make([]float64, len(d.Records))
	for i, rec := range d.Records {
		v, ok := rec.Values[name]
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// CheckFileExists returns an error naming the path when it does not exist.
func CheckFileExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("no file found with path: %s", path)
	}
	return nil
}

// ParseMNDFile reads and parses a .mnd file. Record timestamps are converted
// into loc; nil keeps UTC.
func ParseMNDFile(path string, loc *time.Location) (*Dataset, error) {
	if err := CheckFileExists(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mnd file: %w", err)
	}
	defer f.Close()
	return ParseMND(f, loc)
}

// ParseMND parses FORMAT-1 .mnd content.
//
// The header carries the format tag, the file creation timestamp, the
// instrument name, and a declared column count. Parameter lines use
// "Key: value", variable names are prefixed with '#', and data rows are
// tab-separated with a mixed ISO-8601 duration/date in the first column.
func ParseMND(r io.Reader, loc *time.Location) (*Dataset, error) {
	if loc == nil {
		loc = time.UTC
	}

	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read mnd content: %w", err)
	}
	if len(lines) < 4 {
		return nil, ErrNotFormat1
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[0]), "FORMAT-1") {
		return nil, ErrNotFormat1
	}

	ds := &Dataset{
		Format:     strings.TrimSpace(lines[0]),
		Parameters: map[string]string{},
	}
	if created, err := time.Parse(time.RFC3339, strings.TrimSpace(lines[1])); err == nil {
		ds.CreatedAt = created
	}

	declared, err := parseColumnCount(lines[3])
	if err != nil {
		return nil, err
	}

	for _, line := range lines[4:] {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, "#"):
			ds.Names = append(ds.Names, strings.TrimSpace(strings.TrimPrefix(trimmed, "#")))
		case strings.Contains(trimmed, "/") && strings.ContainsAny(line, "\t"):
			rec, err := parseDataRow(line, ds.Names, loc)
			if err != nil {
				return nil, err
			}
			ds.Records = append(ds.Records, rec)
		case strings.Contains(trimmed, ":"):
			key, value, _ := strings.Cut(trimmed, ":")
			ds.Parameters[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}

	if len(ds.Names) != declared {
		return nil, fmt.Errorf("mnd header declares %d columns but names %d", declared, len(ds.Names))
	}
	ds.StationCode = ds.Parameters["Station Code"]
	return ds, nil
}

// parseColumnCount extracts the declared column count from the fourth header
// line, e.g. "Columns 5".
func parseColumnCount(line string) (int, error) {
	_, rest, ok := strings.Cut(strings.TrimSpace(line), " ")
	if !ok {
		return 0, ErrNotFormat1
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || n < 1 {
		return 0, ErrNotFormat1
	}
	return n, nil
}

func parseDataRow(line string, names []string, loc *time.Location) (Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != len(names) {
		return Record{}, fmt.Errorf("data row has %d fields, expected %d", len(fields), len(names))
	}

	rec := Record{Values: make(map[string]float64, len(names)-1)}
	for i, name := range names {
		field := strings.TrimSpace(fields[i])
		if name == "time" {
			t, err := time.Parse(time.RFC3339, SplitISODate(field, true))
			if err != nil {
				return Record{}, fmt.Errorf("parse record time %q: %w", field, err)
			}
			rec.Time = t.In(loc)
			d, err := ParseISODuration(SplitISODate(field, false))
			if err != nil {
				return Record{}, fmt.Errorf("parse averaging duration %q: %w", field, err)
			}
			rec.Averaging = d
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			v = math.NaN()
		}
		rec.Values[name] = v
	}
	return rec, nil
}

// SplitISODate splits a mixed ISO-8601 duration/date value on the slash and
// returns the date half when wantDate is set, otherwise the duration half.
func SplitISODate(value string, wantDate bool) string {
	duration, date, found := strings.Cut(value, "/")
	if !found {
		return value
	}
	if wantDate {
		return date
	}
	return duration
}

// ParseISODuration parses the restricted PTxxHxxMxxS form SRun writes.
func ParseISODuration(value string) (time.Duration, error) {
	s := strings.TrimPrefix(strings.TrimSpace(value), "PT")
	if s == value {
		return 0, fmt.Errorf("duration %q does not start with PT", value)
	}
	var total time.Duration
	for _, part := range []struct {
		suffix string
		unit   time.Duration
	}{{"H", time.Hour}, {"M", time.Minute}, {"S", time.Second}} {
		idx := strings.Index(s, part.suffix)
		if idx < 0 {
			continue
		}
		n, err := strconv.Atoi(s[:idx])
		if err != nil {
			return 0, fmt.Errorf("duration %q has a malformed %s component", value, part.suffix)
		}
		total += time.Duration(n) * part.unit
		s = s[idx+1:]
	}
	if s != "" {
		return 0, fmt.Errorf("duration %q has trailing content", value)
	}
	return total, nil
}

// Calibrate rescales Cn2 and the instrument flux for a mis-configured path
// length. lengths must contain exactly the incorrect then the correct path
// length in metres; Cn2 scales with path length as L^-3.
func (d *Dataset) Calibrate(lengths []float64) error {
	if len(lengths) != 2 || lengths[0] <= 0 || lengths[1] <= 0 {
		return fmt.Errorf("calibration path lengths must be formatted as: [incorrect, correct], got %v", lengths)
	}
	factor := math.Pow(lengths[1], -3) / math.Pow(lengths[0], -3)
	for _, rec := range d.Records {
		for _, name := range []string{"Cn2", "H_convection"} {
			if v, ok := rec.Values[name]; ok {
				rec.Values[name] = v * factor
			}
		}
	}
	return nil
}
