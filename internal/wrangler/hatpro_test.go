package wrangler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructHATPROLevels_Default(t *testing.T) {
	levels, err := ConstructHATPROLevels(nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10, 30, 50, 75, 100, 125, 150, 200, 250}, levels)
}

func TestConstructHATPROLevels_Custom(t *testing.T) {
	levels, err := ConstructHATPROLevels([]int{0, 50, 100})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 50, 100}, levels)
}

func TestConstructHATPROLevels_Invalid(t *testing.T) {
	_, err := ConstructHATPROLevels([]int{-10, 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-negative")

	_, err = ConstructHATPROLevels([]int{0, 50, 50})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strictly increasing")
}

const sampleHATPRO = "rawdate;0;10;30\n" +
	"2020-06-03 03:10:00;10.2;10.1;9.9\n" +
	"2020-06-03 03:20:00;10.4;10.2;10.0\n"

func TestLoadHATPRO(t *testing.T) {
	profile, err := LoadHATPRO(strings.NewReader(sampleHATPRO), []int{0, 10, 30}, nil, 612.0)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 10, 30}, profile.Levels)
	assert.Equal(t, 612.0, profile.Elevation)
	require.Len(t, profile.Times, 2)
	assert.Equal(t, time.Date(2020, 6, 3, 3, 10, 0, 0, time.UTC), profile.Times[0])
	assert.Equal(t, []float64{10.2, 10.1, 9.9}, profile.Values[0])
	assert.Equal(t, []float64{10.4, 10.2, 10.0}, profile.Values[1])
}

func TestLoadHATPRO_ColumnMismatch(t *testing.T) {
	_, err := LoadHATPRO(strings.NewReader(sampleHATPRO), []int{0, 10}, nil, 612.0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan levels")
}

func TestParseHATPRO_ConvertsHumidity(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "hatpro_200603")

	humidity := "rawdate;0;10;30\n2020-06-03 03:10:00;8.2;8.0;7.7\n"
	temperature := "rawdate;0;10;30\n2020-06-03 03:10:00;290.1;289.8;289.2\n"
	require.NoError(t, os.WriteFile(prefix+"_humidity.csv", []byte(humidity), 0o644))
	require.NoError(t, os.WriteFile(prefix+"_temperature.csv", []byte(temperature), 0o644))

	profiles, err := ParseHATPRO(prefix, []int{0, 10, 30}, nil, 612.0)
	require.NoError(t, err)
	require.Contains(t, profiles, "humidity")
	require.Contains(t, profiles, "temperature")

	// g m^-3 -> kg m^-3.
	assert.InEpsilon(t, 8.2e-3, profiles["humidity"].Values[0][0], 1e-12)
	assert.Equal(t, 290.1, profiles["temperature"].Values[0][0])
}

func TestParseVertical_UnsupportedDevice(t *testing.T) {
	_, err := ParseVertical("prefix", "windcube", nil, nil, 0)
	require.Error(t, err)
	assert.Equal(t, "Windcube measurements are not supported. Use 'hatpro'.", err.Error())
}
