package atmosphere

import (
	"fmt"
	"math"
	"time"
)

// Profile is a time-by-level matrix of one atmospheric variable. Levels are
// scan heights in metres above the station; Values is indexed [time][level].
type Profile struct {
	Levels    []int
	Times     []time.Time
	Values    [][]float64
	Elevation float64 // station elevation, m ASL
}

// NewProfile validates dimensions and builds a profile.
func NewProfile(levels []int, times []time.Time, values [][]float64) (*Profile, error) {
	if len(values) != len(times) {
		return nil, fmt.Errorf("profile has %d rows for %d timestamps", len(values), len(times))
	}
	for i, row := range values {
		if len(row) != len(levels) {
			return nil, fmt.Errorf("profile row %d has %d values for %d levels", i, len(row), len(levels))
		}
	}
	return &Profile{Levels: levels, Times: times, Values: values}, nil
}

// Clone deep-copies the profile.
func (p *Profile) Clone() *Profile {
	values := make([][]float64, len(p.Values))
	for i, row := range p.Values {
		values[i] = append([]float64(nil), row...)
	}
	return &Profile{
		Levels:    append([]int(nil), p.Levels...),
		Times:     append([]time.Time(nil), p.Times...),
		Values:    values,
		Elevation: p.Elevation,
	}
}

// Column extracts the series for one level height.
func (p *Profile) Column(level int) ([]float64, error) {
	for j, l := range p.Levels {
		if l != level {
			continue
		}
		out := make([]float64, len(p.Values))
		for i, row := range p.Values {
			out[i] = row[j]
		}
		return out, nil
	}
	return nil, fmt.Errorf("profile has no level %d", level)
}

// sameShape reports whether two profiles share levels and timestamps.
func sameShape(a, b *Profile) error {
	if len(a.Levels) != len(b.Levels) || len(a.Times) != len(b.Times) {
		return fmt.Errorf("profiles have mismatched shapes: %dx%d vs %dx%d",
			len(a.Times), len(a.Levels), len(b.Times), len(b.Levels))
	}
	for j := range a.Levels {
		if a.Levels[j] != b.Levels[j] {
			return fmt.Errorf("profiles have mismatched levels at index %d", j)
		}
	}
	return nil
}

// combine applies f element-wise over two shape-checked profiles.
func combine(a, b *Profile, f func(x, y float64) float64) (*Profile, error) {
	if err := sameShape(a, b); err != nil {
		return nil, err
	}
	out := a.Clone()
	for i := range out.Values {
		for j := range out.Values[i] {
			out.Values[i][j] = f(a.Values[i][j], b.Values[i][j])
		}
	}
	return out, nil
}

// Constructor derives secondary vertical profiles from radiometer scans.
type Constructor struct {
	Constants Constants
}

// NewConstructor returns a Constructor with the default constants.
func NewConstructor() *Constructor {
	return &Constructor{Constants: NewConstants()}
}

// WaterVapourPressure computes e = rho_v * R_v * T from absolute humidity
// (kg m^-3) and temperature (K) scans.
func (c *Constructor) WaterVapourPressure(absHumidity, temperature *Profile) (*Profile, error) {
	rv := c.Constants.RVapour
	return combine(absHumidity, temperature, func(rho, t float64) float64 {
		return rho * rv * t
	})
}

// AirPressureAt raises or lowers a pressure series hydrostatically from zRef
// to zTarget using the temperature at the target height.
func (c *Constructor) AirPressureAt(pressure, temperature []float64, zTarget, zRef float64) ([]float64, error) {
	if len(pressure) != len(temperature) {
		return nil, fmt.Errorf("pressure and temperature series differ in length: %d vs %d",
			len(pressure), len(temperature))
	}
	out := make([]float64, len(pressure))
	for i := range pressure {
		out[i] = pressure[i] * math.Exp(-c.Constants.G*(zTarget-zRef)/(c.Constants.RDry*temperature[i]))
	}
	return out, nil
}

// ExtrapolateAirPressure builds a pressure profile from a surface series (Pa)
// across the temperature profile's scan levels, level by level so each step
// uses the previous level as its reference.
func (c *Constructor) ExtrapolateAirPressure(surface []float64, temperature *Profile) (*Profile, error) {
	if len(surface) != len(temperature.Times) {
		return nil, fmt.Errorf("surface pressure has %d values for %d timestamps",
			len(surface), len(temperature.Times))
	}

	out := temperature.Clone()
	previous := append([]float64(nil), surface...)
	previousZ := float64(temperature.Levels[0])
	for j, level := range temperature.Levels {
		if j == 0 {
			for i := range out.Values {
				out.Values[i][j] = surface[i]
			}
			continue
		}
		column := make([]float64, len(temperature.Values))
		for i, row := range temperature.Values {
			column[i] = row[j]
		}
		next, err := c.AirPressureAt(previous, column, float64(level), previousZ)
		if err != nil {
			return nil, err
		}
		for i := range out.Values {
			out.Values[i][j] = next[i]
		}
		previous = next
		previousZ = float64(level)
	}
	return out, nil
}

// MixingRatio computes r = e*R_dry / (R_v*p) from water-vapour pressure and
// dry air pressure profiles.
func (c *Constructor) MixingRatio(wvPressure, dryPressure *Profile) (*Profile, error) {
	rd, rv := c.Constants.RDry, c.Constants.RVapour
	return combine(wvPressure, dryPressure, func(e, p float64) float64 {
		return e * rd / (rv * p)
	})
}

// VirtualTemperature computes Tv = T(1 + 0.61r).
func (c *Constructor) VirtualTemperature(temperature, mixingRatio *Profile) (*Profile, error) {
	return combine(temperature, mixingRatio, func(t, r float64) float64 {
		return t * (1 + 0.61*r)
	})
}

// ReducedPressure reduces a pressure profile to mean sea level using the
// virtual temperature: p0 = p * exp(z / (alpha * Tv)), alpha = R_dry/|g|.
func (c *Constructor) ReducedPressure(pressure, virtualTemperature *Profile, elevation float64) (*Profile, error) {
	alpha := c.Constants.RDry / math.Abs(c.Constants.G)
	return combine(pressure, virtualTemperature, func(p, tv float64) float64 {
		return p * math.Exp(elevation/(alpha*tv))
	})
}

// PotentialTemperature computes theta = T * (p_ref/p)^(R_dry/cp).
func (c *Constructor) PotentialTemperature(temperature, pressure *Profile) (*Profile, error) {
	exponent := c.Constants.RDry / c.Constants.Cp
	ref := c.Constants.RefPressure
	return combine(temperature, pressure, func(t, p float64) float64 {
		return t * math.Pow(ref/p, exponent)
	})
}
