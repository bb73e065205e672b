package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/gampnico/scintillometry-tools/internal/domain"
	"github.com/gampnico/scintillometry-tools/internal/fluxes"
	"github.com/gampnico/scintillometry-tools/internal/wrangler"
)

// FluxTransformer implements Transformer: it parses raw BLS450 records,
// recalibrates mis-surveyed paths, resolves meteorology, and derives the
// sensible heat flux. Pass a nil weather provider to run on instrument
// pressure and the fallback temperature alone.
type FluxTransformer struct {
	stations            map[string]domain.Station
	weather             domain.WeatherProvider
	fallbackTemperature float64
	logger              *slog.Logger
}

// NewTransformer creates a FluxTransformer for the given station registry.
func NewTransformer(stations map[string]domain.Station, weather domain.WeatherProvider, fallbackTemperature float64, logger *slog.Logger) *FluxTransformer {
	return &FluxTransformer{
		stations:            stations,
		weather:             weather,
		fallbackTemperature: fallbackTemperature,
		logger:              logger,
	}
}

func (t *FluxTransformer) Transform(ctx context.Context, raw domain.RawMessage) (domain.FluxEstimate, error) {
	reading, err := wrangler.ParseRawMessage(raw)
	if err != nil {
		return domain.FluxEstimate{}, err
	}

	station, ok := t.stations[reading.Station]
	if !ok {
		return domain.FluxEstimate{}, fmt.Errorf("unknown station %q", reading.Station)
	}

	if station.NeedsCalibration() {
		factor := math.Pow(station.PathLength, -3) / math.Pow(station.ConfiguredLength, -3)
		reading.Cn2 *= factor
		reading.HFree *= factor
	}

	met := domain.ResolveMeteorology(ctx, reading, t.weather, station.GeosphereID, t.fallbackTemperature, t.logger)

	return fluxes.Derive(reading, station, met), nil
}
