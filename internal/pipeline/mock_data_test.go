package pipeline_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gampnico/scintillometry-tools/internal/domain"
	"github.com/gampnico/scintillometry-tools/internal/fluxes"
	"github.com/gampnico/scintillometry-tools/internal/pipeline"
	"github.com/gampnico/scintillometry-tools/internal/wrangler"
)

// TestFluxTransformer_WithMockData runs the transformer over the committed
// collector fixture and checks each estimate against an independent
// derivation from the same inputs.
func TestFluxTransformer_WithMockData(t *testing.T) {
	records := readMockRecords(t)
	require.Len(t, records, 20)

	transformer := pipeline.NewTransformer(testStations(), nil, 288.15, slog.Default())

	for i, rec := range records {
		payload, err := json.Marshal(rec)
		require.NoError(t, err)

		raw := domain.RawMessage{
			Key:   []byte(rec.Station),
			Value: payload,
			Topic: "bls-raw-records",
		}

		estimate, err := transformer.Transform(context.Background(), raw)
		require.NoError(t, err, "record %d", i)

		assert.Equal(t, "hottinger", estimate.Station)
		assert.Equal(t, 30*time.Second, estimate.Averaging)
		assert.Equal(t, "station", estimate.WeatherSource)

		cn2 := mustParse(t, rec.Cn2)
		pressurePa := mustParse(t, rec.Pressure) * 100

		wantCT2 := fluxes.StructureParameter(cn2, 288.15, pressurePa)
		assert.InEpsilon(t, wantCT2, estimate.CT2, 1e-12, "record %d", i)

		wantH := fluxes.FreeConvection(wantCT2, 32.5, 288.15, pressurePa)
		assert.InEpsilon(t, wantH, estimate.SensibleHeatFlux, 1e-12, "record %d", i)

		expectedTime, err := time.Parse(time.RFC3339, wrangler.SplitISODate(rec.Time, true))
		require.NoError(t, err)
		assert.Equal(t, expectedTime, estimate.Time.UTC(), "record %d", i)
	}
}

// TestMockMNDMatchesRawRecords cross-checks the two fixture representations
// of the same day: parsing the .mnd must yield the values the collector
// published as JSON.
func TestMockMNDMatchesRawRecords(t *testing.T) {
	ds, err := wrangler.ParseMNDFile(filepath.Join("..", "..", "data", "mock", "bls450_200603.mnd"), nil)
	require.NoError(t, err)
	assert.Equal(t, "hottinger", ds.StationCode)

	records := readMockRecords(t)
	require.Len(t, ds.Records, len(records))

	for i, rec := range records {
		mnd := ds.Records[i]
		assert.InEpsilon(t, mustParse(t, rec.Cn2), mnd.Values["Cn2"], 1e-9, "record %d", i)
		assert.InEpsilon(t, mustParse(t, rec.Pressure), mnd.Values["pressure"], 1e-9, "record %d", i)
		expectedTime, err := time.Parse(time.RFC3339, wrangler.SplitISODate(rec.Time, true))
		require.NoError(t, err)
		assert.Equal(t, expectedTime, mnd.Time.UTC(), "record %d", i)
	}
}

func readMockRecords(t *testing.T) []domain.RawBLSRecord {
	t.Helper()

	path := filepath.Join("..", "..", "data", "mock", "bls_records_200603.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []domain.RawBLSRecord
	require.NoError(t, json.Unmarshal(data, &records))
	return records
}

func mustParse(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(s, 64)
	require.NoError(t, err)
	return v
}
