package domain

import (
	"context"
	"log/slog"
	"time"
)

// Observation holds surface weather for one station at one time, in the units
// delivered by the GeoSphere API: degrees Celsius and hPa.
type Observation struct {
	Time             time.Time
	Temperature      float64 // °C
	Pressure         float64 // hPa
	RelativeHumidity float64 // %
	WindSpeed        float64 // m s^-1
}

// WeatherProvider supplies the most recent surface observation for a station.
type WeatherProvider interface {
	Latest(ctx context.Context, stationID string) (Observation, error)
}

// Meteorology is the air temperature and pressure fed into a flux derivation,
// tagged with where they came from.
type Meteorology struct {
	Temperature float64 // K
	Pressure    float64 // Pa
	Source      string  // "provider", "station", "fallback", "failed"
}

// kelvinOffset converts the provider's Celsius temperatures.
const kelvinOffset = 273.15

// ResolveMeteorology picks the temperature and pressure for a reading.
// Pressure prefers the instrument's own sensor, then the provider, then the
// fallback. Temperature comes from the provider when one is configured; a
// provider failure degrades gracefully to the fallback and tags the estimate
// so downstream consumers can filter.
func ResolveMeteorology(ctx context.Context, reading Reading, provider WeatherProvider, providerID string, fallbackTemperature float64, logger *slog.Logger) Meteorology {
	met := Meteorology{
		Temperature: fallbackTemperature,
		Source:      "fallback",
	}
	if reading.Pressure > 0 {
		met.Pressure = reading.Pressure * 100 // hPa -> Pa
		met.Source = "station"
	}

	if provider == nil || providerID == "" {
		if met.Pressure == 0 {
			met.Pressure = 101325
		}
		return met
	}

	obs, err := provider.Latest(ctx, providerID)
	if err != nil {
		logger.Warn("weather provider failed",
			"station", reading.Station,
			"provider_id", providerID,
			"error", err,
		)
		met.Source = "failed"
		if met.Pressure == 0 {
			met.Pressure = 101325
		}
		return met
	}

	met.Temperature = obs.Temperature + kelvinOffset
	if met.Pressure == 0 && obs.Pressure > 0 {
		met.Pressure = obs.Pressure * 100
	}
	if met.Pressure == 0 {
		met.Pressure = 101325
	}
	met.Source = "provider"
	return met
}
