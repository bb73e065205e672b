package wrangler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransect(t *testing.T) {
	content := "path_height,norm_position\n" +
		"12.5,0.0\n" +
		"30.2,0.25\n" +
		"42.0,0.5\n" +
		"28.9,0.75\n" +
		"15.0,1.0\n"

	points, err := ParseTransect(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, points, 5)
	assert.Equal(t, 12.5, points[0].PathHeight)
	assert.Equal(t, 0.0, points[0].NormPosition)
	assert.Equal(t, 42.0, points[2].PathHeight)
	assert.Equal(t, 1.0, points[4].NormPosition)
}

func TestParseTransect_NoHeader(t *testing.T) {
	points, err := ParseTransect(strings.NewReader("12.5,0.0\n15.0,1.0\n"))
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestParseTransect_PositionOutOfRange(t *testing.T) {
	for _, content := range []string{
		"12.5,1.5\n",
		"12.5,-0.1\n",
	} {
		_, err := ParseTransect(strings.NewReader(content))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "normalised position is not between 0 and 1")
	}
}

func TestParseTransect_Empty(t *testing.T) {
	_, err := ParseTransect(strings.NewReader("path_height,norm_position\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data rows")
}
