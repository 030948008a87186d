// Package kepler solves Kepler's equation and evaluates the Keplerian
// radial-velocity model. The equation solve is the innermost numerical
// routine of the whole engine: it runs once per observation per fit
// iteration, so it is kept allocation-free and convergence-safe.
package kepler

import (
	"fmt"
	"math"
)

const (
	// solveTolerance is the convergence tolerance on the eccentric
	// anomaly in radians.
	solveTolerance = 1e-10

	maxNewtonIterations = 64
	maxBisectIterations = 128
)

// Params describes a single Keplerian radial-velocity orbit.
type Params struct {
	PeriodDays   float64 // P - orbital period (days)
	KAmplitude   float64 // K - RV semi-amplitude (m/s)
	Eccentricity float64 // e - eccentricity, 0 <= e < 1
	OmegaRad     float64 // ω - argument of periastron (radians)
	TPeriastron  float64 // t₀ - time of periastron passage (days)
	Gamma        float64 // γ - systemic velocity offset (m/s)
}

// WrapAngle normalizes an angle to [0, 2π).
func WrapAngle(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return theta
}

// SolveEccentricAnomaly solves Kepler's equation M = E - e*sin(E) for
// the eccentric anomaly E. Newton-Raphson from M (or π for high
// eccentricity), with a bisection fallback if Newton stalls. The mean
// anomaly may be any real value; the result lies in [0, 2π).
func SolveEccentricAnomaly(M, e float64) (float64, error) {
	if e < 0 || e >= 1 {
		return 0, fmt.Errorf("eccentricity out of range [0,1): %g", e)
	}
	M = WrapAngle(M)

	// Circular orbits are exact.
	if e == 0 {
		return M, nil
	}

	E := M
	if e > 0.8 {
		E = math.Pi // better initial guess for high eccentricity
	}

	for i := 0; i < maxNewtonIterations; i++ {
		f := E - e*math.Sin(E) - M
		fp := 1 - e*math.Cos(E)

		deltaE := f / fp
		E -= deltaE

		if math.Abs(deltaE) < solveTolerance {
			E = WrapAngle(E)
			// Newton can overshoot a root at E=0 to a hair below zero,
			// which wraps to just under 2π; fold it back so the residual
			// against the wrapped mean anomaly stays within tolerance.
			if M < math.Pi && 2*math.Pi-E < solveTolerance {
				E = 0
			}
			return E, nil
		}
	}

	// Newton stalled (can happen for e close to 1 with M near 0).
	// E - e*sin(E) is monotonic in E, so bisection always converges.
	lo, hi := 0.0, 2*math.Pi
	for i := 0; i < maxBisectIterations; i++ {
		mid := 0.5 * (lo + hi)
		if mid-e*math.Sin(mid)-M > 0 {
			hi = mid
		} else {
			lo = mid
		}
		if hi-lo < solveTolerance {
			return 0.5 * (lo + hi), nil
		}
	}

	return 0, fmt.Errorf("kepler equation did not converge for M=%g e=%g", M, e)
}

// TrueAnomaly converts an eccentric anomaly to the true anomaly.
func TrueAnomaly(E, e float64) float64 {
	return 2 * math.Atan2(
		math.Sqrt(1+e)*math.Sin(E/2),
		math.Sqrt(1-e)*math.Cos(E/2),
	)
}

// RadialVelocity evaluates the Keplerian RV model at time t (days):
//
//	v(t) = γ + K [cos(ν+ω) + e cos ω]
//
// where ν is the true anomaly at t. A failed anomaly solve falls back
// to the mean anomaly, which is exact for circular orbits and keeps the
// model finite for the optimizer.
func RadialVelocity(t float64, p Params) float64 {
	M := 2 * math.Pi * (t - p.TPeriastron) / p.PeriodDays

	E, err := SolveEccentricAnomaly(M, p.Eccentricity)
	if err != nil {
		E = WrapAngle(M)
	}
	nu := TrueAnomaly(E, p.Eccentricity)

	return p.Gamma + p.KAmplitude*(math.Cos(nu+p.OmegaRad)+p.Eccentricity*math.Cos(p.OmegaRad))
}

// RadialVelocitySeries evaluates the model over a time grid.
func RadialVelocitySeries(times []float64, p Params) []float64 {
	rv := make([]float64, len(times))
	for i, t := range times {
		rv[i] = RadialVelocity(t, p)
	}
	return rv
}
