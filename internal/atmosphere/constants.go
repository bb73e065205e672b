// Package atmosphere provides physical constants and vertical-profile
// construction from microwave radiometer scans.
package atmosphere

// Constants bundles the thermodynamic constants used across profile and flux
// derivations. Values follow standard micrometeorological references.
type Constants struct {
	RDry        float64 // specific gas constant for dry air, J kg^-1 K^-1
	RVapour     float64 // specific gas constant for water vapour, J kg^-1 K^-1
	Cp          float64 // specific heat capacity of air at constant pressure, J kg^-1 K^-1
	G           float64 // gravitational acceleration, m s^-2
	RefPressure float64 // reference pressure for potential temperature, Pa
	Kelvin      float64 // 0°C in K
	Refractive  float64 // refractive-index coefficient a, K Pa^-1
	FreeConvB   float64 // free-convection similarity coefficient
	VonKarman   float64
	Latent      float64 // latent heat of vaporisation, J kg^-1
}

// NewConstants returns the default constant set.
func NewConstants() Constants {
	return Constants{
		RDry:        287.04,
		RVapour:     461.5,
		Cp:          1004.67,
		G:           9.81,
		RefPressure: 1e5,
		Kelvin:      273.15,
		Refractive:  7.8e-7,
		FreeConvB:   0.48,
		VonKarman:   0.4,
		Latent:      2.45e6,
	}
}
