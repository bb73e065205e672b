// Package fluxes derives sensible heat fluxes from scintillometer structure
// parameters.
package fluxes

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/gampnico/scintillometry-tools/internal/atmosphere"
	"github.com/gampnico/scintillometry-tools/internal/domain"
)

var consts = atmosphere.NewConstants()

// StructureParameter converts the refractive index structure parameter Cn2
// into the temperature structure parameter CT2:
//
//	CT2 = Cn2 * (T^2 / (a*P))^2
//
// with a the refractive-index coefficient for optical wavelengths,
// temperature in K and pressure in Pa. The sign of a drops out under the
// square.
func StructureParameter(cn2, temperatureK, pressurePa float64) float64 {
	ratio := temperatureK * temperatureK / (consts.Refractive * pressurePa)
	return cn2 * ratio * ratio
}

// AirDensity returns dry air density from the ideal gas law, kg m^-3.
func AirDensity(pressurePa, temperatureK float64) float64 {
	return pressurePa / (consts.RDry * temperatureK)
}

// FreeConvection estimates sensible heat flux under free convection:
//
//	H = rho * cp * b * z_eff * sqrt(g/T) * CT2^(3/4)
//
// valid for unstable stratification over the effective beam height z_eff.
func FreeConvection(ct2, effectiveHeight, temperatureK, pressurePa float64) float64 {
	rho := AirDensity(pressurePa, temperatureK)
	return rho * consts.Cp * consts.FreeConvB * effectiveHeight *
		math.Sqrt(consts.G/temperatureK) * math.Pow(ct2, 0.75)
}

// Derive produces the flux estimate for one calibrated reading. The estimate
// ID is deterministic over the reading's key fields so downstream upserts are
// idempotent and topic replays safe.
func Derive(reading domain.Reading, station domain.Station, met domain.Meteorology) domain.FluxEstimate {
	ct2 := StructureParameter(reading.Cn2, met.Temperature, met.Pressure)
	h := FreeConvection(ct2, station.EffectiveHeight, met.Temperature, met.Pressure)

	return domain.FluxEstimate{
		ID:               estimateID(reading),
		Station:          reading.Station,
		Time:             reading.Time,
		Averaging:        reading.Averaging,
		Cn2:              reading.Cn2,
		CT2:              ct2,
		EffectiveHeight:  station.EffectiveHeight,
		Temperature:      met.Temperature,
		Pressure:         met.Pressure,
		SensibleHeatFlux: h,
		WeatherSource:    met.Source,
		RawPayload:       reading.RawPayload,
		ProcessedAt:      domain.Clock.Now(),
	}
}

// estimateID hashes the reading's key fields into a short deterministic ID.
func estimateID(reading domain.Reading) string {
	input := fmt.Sprintf("%s|%d|%g|%g",
		reading.Station, reading.Time.UTC().Unix(), reading.Cn2, reading.Pressure)
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if reading.Station == "" {
		return short
	}
	return reading.Station + "-" + short
}
