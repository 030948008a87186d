// Package planetprops converts a fitted Keplerian orbit plus stellar
// parameters into physical planet quantities. Radial velocities alone
// never constrain the orbital inclination, so all masses are the
// m·sin(i) lower bound.
package planetprops

import (
	"fmt"
	"math"

	"github.com/exoscan/exoscan/internal/types"
)

// Physical constants (SI unless noted).
const (
	gravConst     = 6.674e-11  // m³/(kg·s²)
	solarMassKG   = 1.989e30   // kg
	earthMassKG   = 5.972e24   // kg
	jupiterEarths = 317.8      // Jupiter mass in Earth masses
	metersPerAU   = 1.496e11   // m
	secondsPerDay = 86400.0

	// assumedAlbedo enters the equilibrium temperature estimate; 0.3 is
	// the conventional rocky/icy bond albedo.
	assumedAlbedo = 0.3

	// tEqOneAU is the zero-albedo equilibrium temperature at 1 AU
	// around a 1 L☉ star, in kelvin.
	tEqOneAU = 278.6
)

// StellarParams describes the host star. LuminositySolar is optional;
// when nil, no equilibrium temperature is derived.
type StellarParams struct {
	MassSolar       float64
	LuminositySolar *float64
}

// Derive computes minimum planet mass, semi-major axis and (when the
// stellar luminosity is known) an equilibrium temperature from an
// orbital fit.
func Derive(fit *types.OrbitalFit, stellar StellarParams) (*types.PlanetProperties, error) {
	if stellar.MassSolar <= 0 {
		return nil, fmt.Errorf("%w: stellar mass must be positive, got %g",
			types.ErrInvalidArgument, stellar.MassSolar)
	}
	if fit == nil || fit.PeriodDays <= 0 {
		return nil, fmt.Errorf("%w: orbital fit has no positive period", types.ErrInvalidArgument)
	}

	periodSec := fit.PeriodDays * secondsPerDay
	starKG := stellar.MassSolar * solarMassKG

	// Single-lined mass function, solved for m·sin(i) with the planet
	// mass neglected against the star:
	//   K = (2πG/P)^(1/3) · m·sin(i) / M★^(2/3) / sqrt(1-e²)
	factor := math.Cbrt(periodSec / (2 * math.Pi * gravConst))
	mSinI := fit.KAmplitudeMS * math.Sqrt(1-fit.Eccentricity*fit.Eccentricity) *
		factor * math.Pow(starKG, 2.0/3.0)
	massEarth := mSinI / earthMassKG

	// Kepler's third law; the planet's own mass is negligible.
	aMeters := math.Cbrt(gravConst * starKG * periodSec * periodSec / (4 * math.Pi * math.Pi))
	aAU := aMeters / metersPerAU

	props := &types.PlanetProperties{
		MinimumMassEarth:   massEarth,
		MinimumMassJupiter: massEarth / jupiterEarths,
		SemiMajorAxisAU:    aAU,
	}

	if stellar.LuminositySolar != nil && *stellar.LuminositySolar > 0 && aAU > 0 {
		t := tEqOneAU * math.Pow(*stellar.LuminositySolar, 0.25) *
			math.Pow(1-assumedAlbedo, 0.25) / math.Sqrt(aAU)
		props.EquilibriumTempK = &t
	}

	return props, nil
}
