package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gampnico/scintillometry-tools/internal/domain"
	"github.com/gampnico/scintillometry-tools/internal/wrangler"
)

func testDataset(t *testing.T, values map[string]float64) *wrangler.Dataset {
	t.Helper()
	return &wrangler.Dataset{
		Format:      "FORMAT-1.1",
		StationCode: "hottinger",
		Records: []wrangler.Record{
			{
				Time:      time.Date(2020, 6, 3, 3, 23, 0, 0, time.UTC),
				Averaging: 30 * time.Second,
				Values:    values,
			},
		},
	}
}

func testStation() domain.Station {
	return domain.Station{Code: "hottinger", PathLength: 2700, EffectiveHeight: 32.5}
}

func TestDeriveEstimates_NoWeather(t *testing.T) {
	ds := testDataset(t, map[string]float64{"Cn2": 1.9e-16, "pressure": 950.0})

	estimates, err := deriveEstimates(ds, testStation(), nil, 288.15)
	require.NoError(t, err)
	require.Len(t, estimates, 1)

	assert.Equal(t, 288.15, estimates[0].Temperature)
	assert.Equal(t, 95000.0, estimates[0].Pressure)
	assert.Equal(t, "fallback", estimates[0].WeatherSource)
	assert.Positive(t, estimates[0].SensibleHeatFlux)
}

func TestDeriveEstimates_NoWeatherNoInstrumentPressure(t *testing.T) {
	ds := testDataset(t, map[string]float64{"Cn2": 1.9e-16})

	estimates, err := deriveEstimates(ds, testStation(), nil, 288.15)
	require.NoError(t, err)
	require.Len(t, estimates, 1)
	assert.Equal(t, 101325.0, estimates[0].Pressure)
}

func TestDeriveEstimates_MergedWeather(t *testing.T) {
	ds := testDataset(t, map[string]float64{"Cn2": 1.9e-16})
	weather := []wrangler.WeatherRecord{
		{
			Time:    time.Date(2020, 6, 3, 3, 0, 0, 0, time.UTC),
			Station: "11803",
			Values:  map[string]float64{"temperature_2m": 17.8, "pressure": 948.3},
		},
	}

	estimates, err := deriveEstimates(ds, testStation(), weather, 288.15)
	require.NoError(t, err)
	require.Len(t, estimates, 1)

	assert.InEpsilon(t, 17.8+273.15, estimates[0].Temperature, 1e-12)
	assert.InEpsilon(t, 94830.0, estimates[0].Pressure, 1e-12)
	assert.Equal(t, "station", estimates[0].WeatherSource)
}

func TestDeriveEstimates_MergedWeatherWithoutPressure(t *testing.T) {
	ds := testDataset(t, map[string]float64{"Cn2": 1.9e-16})
	weather := []wrangler.WeatherRecord{
		{
			Time:    time.Date(2020, 6, 3, 3, 0, 0, 0, time.UTC),
			Station: "11803",
			Values:  map[string]float64{"temperature_2m": 17.8},
		},
	}

	estimates, err := deriveEstimates(ds, testStation(), weather, 288.15)
	require.NoError(t, err)
	require.Len(t, estimates, 1)

	// No pressure column anywhere: the standard atmosphere fills in, same
	// as the weatherless path, instead of deriving a zero-density flux.
	assert.Equal(t, 101325.0, estimates[0].Pressure)
	assert.Positive(t, estimates[0].SensibleHeatFlux)
}
