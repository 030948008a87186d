package planetprops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exoscan/exoscan/internal/types"
)

func TestDeriveJupiterAnalog(t *testing.T) {
	// Jupiter seen edge-on: K ≈ 12.5 m/s, P ≈ 11.86 yr around 1 M☉.
	fit := &types.OrbitalFit{
		PeriodDays:   4332.6,
		KAmplitudeMS: 12.5,
		Eccentricity: 0.0489,
		Quality:      types.FitGood,
	}

	props, err := Derive(fit, StellarParams{MassSolar: 1.0})
	require.NoError(t, err)

	assert.InEpsilon(t, 317.8, props.MinimumMassEarth, 0.05, "Jupiter minimum mass")
	assert.InEpsilon(t, 1.0, props.MinimumMassJupiter, 0.05)
	assert.InEpsilon(t, 5.2, props.SemiMajorAxisAU, 0.02, "Jupiter semi-major axis")
	assert.Nil(t, props.EquilibriumTempK, "no luminosity supplied, no temperature")
}

func TestDeriveEarthAnalog(t *testing.T) {
	fit := &types.OrbitalFit{
		PeriodDays:   365.25,
		KAmplitudeMS: 0.0895,
		Eccentricity: 0.0167,
		Quality:      types.FitGood,
	}

	props, err := Derive(fit, StellarParams{MassSolar: 1.0})
	require.NoError(t, err)

	assert.InEpsilon(t, 1.0, props.MinimumMassEarth, 0.05, "Earth minimum mass")
	assert.InEpsilon(t, 1.0, props.SemiMajorAxisAU, 0.01)
}

func TestDeriveEquilibriumTemperature(t *testing.T) {
	fit := &types.OrbitalFit{
		PeriodDays:   365.25,
		KAmplitudeMS: 0.09,
		Quality:      types.FitGood,
	}

	lum := 1.0
	props, err := Derive(fit, StellarParams{MassSolar: 1.0, LuminositySolar: &lum})
	require.NoError(t, err)

	// Earth's textbook equilibrium temperature with albedo 0.3 is ~255 K.
	require.NotNil(t, props.EquilibriumTempK)
	assert.InDelta(t, 255, *props.EquilibriumTempK, 5)
}

func TestDeriveScalesWithAmplitude(t *testing.T) {
	base := &types.OrbitalFit{PeriodDays: 100, KAmplitudeMS: 10, Quality: types.FitGood}
	double := &types.OrbitalFit{PeriodDays: 100, KAmplitudeMS: 20, Quality: types.FitGood}

	a, err := Derive(base, StellarParams{MassSolar: 1})
	require.NoError(t, err)
	b, err := Derive(double, StellarParams{MassSolar: 1})
	require.NoError(t, err)

	// Minimum mass is linear in K; the orbit itself is unchanged.
	assert.InEpsilon(t, 2*a.MinimumMassEarth, b.MinimumMassEarth, 1e-9)
	assert.Equal(t, a.SemiMajorAxisAU, b.SemiMajorAxisAU)
}

func TestDeriveInvalidArguments(t *testing.T) {
	fit := &types.OrbitalFit{PeriodDays: 100, KAmplitudeMS: 10, Quality: types.FitGood}

	_, err := Derive(fit, StellarParams{MassSolar: 0})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = Derive(fit, StellarParams{MassSolar: -1})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = Derive(&types.OrbitalFit{PeriodDays: 0}, StellarParams{MassSolar: 1})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = Derive(nil, StellarParams{MassSolar: 1})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}
