package wrangler

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInnFlux = "2020,6,3,3,0,0,12.4,1.8,-42.1\n" +
	"2020,6,3,3,30,0,15.1,2.0,-39.8\n" +
	"2020,6,3,4,0,0,NaN,2.2,-35.0\n"

func TestParseInnFlux(t *testing.T) {
	records, err := ParseInnFlux(strings.NewReader(sampleInnFlux), nil, nil)
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, time.Date(2020, 6, 3, 3, 0, 0, 0, time.UTC), first.Time)
	assert.Equal(t, 12.4, first.Values["shf"])
	assert.Equal(t, 1.8, first.Values["wind_speed"])
	assert.Equal(t, -42.1, first.Values["obukhov"])

	assert.Equal(t, time.Date(2020, 6, 3, 3, 30, 0, 0, time.UTC), records[1].Time)
}

func TestParseInnFlux_LenientValues(t *testing.T) {
	records, err := ParseInnFlux(strings.NewReader(sampleInnFlux), nil, nil)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(records[2].Values["shf"]))
}

func TestParseInnFlux_CustomHeaders(t *testing.T) {
	headers := []string{"year", "month", "day", "hour", "minutes", "seconds", "shf"}
	records, err := ParseInnFlux(strings.NewReader("2020,6,3,3,0,0,12.4\n"), headers, nil)
	require.NoError(t, err)
	assert.Equal(t, 12.4, records[0].Values["shf"])
}

func TestParseInnFlux_ColumnMismatch(t *testing.T) {
	_, err := ParseInnFlux(strings.NewReader("2020,6,3,3,0\n"), nil, nil)
	require.Error(t, err)
}

func TestParseInnFlux_BadTimestamp(t *testing.T) {
	_, err := ParseInnFlux(strings.NewReader("x,6,3,3,0,0,12.4,1.8,-42.1\n"), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "year")
}

func TestParseInnFlux_Empty(t *testing.T) {
	_, err := ParseInnFlux(strings.NewReader(""), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data rows")
}
