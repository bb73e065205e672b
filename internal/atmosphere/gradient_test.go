package atmosphere

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradient_Backward(t *testing.T) {
	c := NewConstructor()
	p := testProfile(t, []int{0, 10, 30}, [][]float64{
		{290.0, 289.0, 287.0},
	})

	g, err := c.Gradient(p, "backward")
	require.NoError(t, err)

	assert.Equal(t, 0.0, g.Values[0][0])
	assert.InEpsilon(t, -0.1, g.Values[0][1], 1e-12)
	assert.InEpsilon(t, -0.1, g.Values[0][2], 1e-12)
}

func TestGradient_UnevenLinearFieldIsExact(t *testing.T) {
	c := NewConstructor()
	// f(z) = 2z + 5 over uneven spacing; the centred scheme must recover
	// the slope exactly at interior levels.
	p := testProfile(t, []int{0, 10, 30, 100}, [][]float64{
		{5, 25, 65, 205},
	})

	g, err := c.Gradient(p, "uneven")
	require.NoError(t, err)

	assert.Equal(t, 0.0, g.Values[0][0])
	assert.InEpsilon(t, 2.0, g.Values[0][1], 1e-12)
	assert.InEpsilon(t, 2.0, g.Values[0][2], 1e-12)
	// Top uses a backward difference.
	assert.InEpsilon(t, 2.0, g.Values[0][3], 1e-12)
}

func TestGradient_UnevenQuadraticInterior(t *testing.T) {
	c := NewConstructor()
	// f(z) = z^2: the uneven centred scheme is exact for quadratics at
	// interior points, the backward top boundary is not.
	p := testProfile(t, []int{0, 10, 30, 100}, [][]float64{
		{0, 100, 900, 10000},
	})

	g, err := c.Gradient(p, "uneven")
	require.NoError(t, err)

	assert.InEpsilon(t, 20.0, g.Values[0][1], 1e-12)
	assert.InEpsilon(t, 60.0, g.Values[0][2], 1e-12)
	assert.InEpsilon(t, (10000.0-900.0)/70.0, g.Values[0][3], 1e-12)
}

func TestGradient_PreservesInput(t *testing.T) {
	c := NewConstructor()
	p := testProfile(t, []int{0, 10}, [][]float64{{290.0, 289.0}})

	_, err := c.Gradient(p, "backward")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{290.0, 289.0}}, p.Values)
}

func TestGradient_UnknownScheme(t *testing.T) {
	c := NewConstructor()
	p := testProfile(t, []int{0, 10}, [][]float64{{290.0, 289.0}})

	_, err := c.Gradient(p, "central")
	require.EqualError(t, err,
		"'central' is not an implemented differencing scheme. Use 'uneven' or 'backward'.")
}
