// Package transect computes path weighting and effective beam heights from a
// scintillometer path transect.
package transect

import (
	"fmt"
	"math"
)

// StabilityConstant returns the exponent b accounting for the height
// dependence of Cn2. Values follow Hartogensis et al. (2003) and Kleissl et
// al. (2008); an empty name disables the height dependency.
func StabilityConstant(name string) (float64, error) {
	switch name {
	case "":
		return 1, nil
	case "stable":
		return -2.0 / 3.0, nil
	case "unstable":
		return -4.0 / 3.0, nil
	default:
		return 0, fmt.Errorf("%s is not an implemented stability condition", name)
	}
}

// besselWeight evaluates the path weighting kernel 2*J1(u)/u at a normalised
// position, with the removable singularity at the path centre filled in.
func besselWeight(position float64) float64 {
	u := 2.283 * math.Pi * (position - 0.5)
	if u == 0 {
		return 1
	}
	return 2 * math.J1(u) / u
}

// PathWeights computes the beam weighting for each normalised position.
func PathWeights(positions []float64) []float64 {
	weights := make([]float64, len(positions))
	for i, x := range positions {
		weights[i] = 2.163 * besselWeight(x)
	}
	return weights
}

// EffectiveHeight computes the path-weighted effective beam height:
//
//	z_eff = (trapz(h^b * w) / trapz(w))^(1/b)
//
// Heights and positions run in parallel along the transect; NaN weighted
// heights (path-building intersections) contribute zero.
func EffectiveHeight(heights, positions []float64, stability string) (float64, error) {
	if len(heights) != len(positions) {
		return 0, fmt.Errorf("transect has %d heights for %d positions", len(heights), len(positions))
	}
	if len(heights) < 2 {
		return 0, fmt.Errorf("transect needs at least two points, got %d", len(heights))
	}
	b, err := StabilityConstant(stability)
	if err != nil {
		return 0, err
	}

	weights := PathWeights(positions)
	weighted := make([]float64, len(heights))
	for i := range heights {
		w := math.Pow(heights[i], b) * weights[i]
		if math.IsNaN(w) {
			w = 0
		}
		weighted[i] = w
	}

	zEff := math.Pow(trapezoid(weighted)/trapezoid(weights), 1/b)
	return zEff, nil
}

// MeanHeight is the arithmetic mean path height.
func MeanHeight(heights []float64) float64 {
	if len(heights) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, h := range heights {
		sum += h
	}
	return sum / float64(len(heights))
}

// Parameters returns the effective and mean path heights for a transect.
func Parameters(heights, positions []float64, stability string) (effective, mean float64, err error) {
	effective, err = EffectiveHeight(heights, positions, stability)
	if err != nil {
		return 0, 0, err
	}
	return effective, MeanHeight(heights), nil
}

// trapezoid integrates sampled values with unit spacing.
func trapezoid(values []float64) float64 {
	var sum float64
	for i := 1; i < len(values); i++ {
		sum += (values[i-1] + values[i]) / 2
	}
	return sum
}
