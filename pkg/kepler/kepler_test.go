package kepler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const residualTolerance = 1e-8

func TestSolveEccentricAnomalyResidualGrid(t *testing.T) {
	eccentricities := []float64{0, 1e-6, 0.0167, 0.05, 0.3, 0.6, 0.8, 0.9, 0.95, 0.99}

	for _, e := range eccentricities {
		for m := 0.0; m < 2*math.Pi; m += math.Pi / 16 {
			E, err := SolveEccentricAnomaly(m, e)
			require.NoError(t, err, "e=%g M=%g", e, m)

			residual := E - e*math.Sin(E) - m
			assert.InDelta(t, 0, residual, residualTolerance,
				"Kepler residual too large for e=%g M=%g", e, m)
		}
	}
}

func TestSolveEccentricAnomalyCircular(t *testing.T) {
	for m := 0.0; m < 2*math.Pi; m += 0.1 {
		E, err := SolveEccentricAnomaly(m, 0)
		require.NoError(t, err)
		assert.Equal(t, m, E, "circular orbit must be exact")
	}
}

func TestSolveEccentricAnomalyWrapsMeanAnomaly(t *testing.T) {
	E1, err := SolveEccentricAnomaly(0.5, 0.3)
	require.NoError(t, err)
	E2, err := SolveEccentricAnomaly(0.5+6*math.Pi, 0.3)
	require.NoError(t, err)
	assert.InDelta(t, E1, E2, residualTolerance)

	E3, err := SolveEccentricAnomaly(-0.5, 0.3)
	require.NoError(t, err)
	assert.True(t, E3 >= 0 && E3 < 2*math.Pi, "E=%g out of [0,2π)", E3)
}

func TestSolveEccentricAnomalyWrapBoundary(t *testing.T) {
	// Newton can overshoot the E=0 root to a tiny negative value at
	// high eccentricity with M at the wrap boundary; the returned E
	// must not land at the far end of [0, 2π).
	for _, e := range []float64{0.9, 0.95, 0.99} {
		E, err := SolveEccentricAnomaly(0, e)
		require.NoError(t, err, "e=%g", e)

		assert.True(t, E >= 0 && E < 2*math.Pi, "e=%g E=%g", e, E)
		assert.InDelta(t, 0, E-e*math.Sin(E), residualTolerance, "e=%g", e)
	}
}

func TestSolveEccentricAnomalyRejectsBadEccentricity(t *testing.T) {
	_, err := SolveEccentricAnomaly(1.0, -0.1)
	assert.Error(t, err)
	_, err = SolveEccentricAnomaly(1.0, 1.0)
	assert.Error(t, err)
}

func TestTrueAnomalyCircular(t *testing.T) {
	for E := 0.0; E < 2*math.Pi; E += 0.25 {
		nu := TrueAnomaly(E, 0)
		// atan2 wraps to (-π, π]; compare on the circle.
		assert.InDelta(t, 0, math.Abs(math.Remainder(nu-E, 2*math.Pi)), 1e-12)
	}
}

func TestRadialVelocityCircular(t *testing.T) {
	p := Params{
		PeriodDays:  10,
		KAmplitude:  30,
		TPeriastron: 2,
		Gamma:       -5,
	}

	// At periastron the circular model reads γ + K.
	assert.InDelta(t, -5+30, RadialVelocity(2, p), 1e-9)

	// Half a period later it reads γ - K.
	assert.InDelta(t, -5-30, RadialVelocity(7, p), 1e-9)

	// The model is periodic.
	assert.InDelta(t, RadialVelocity(3, p), RadialVelocity(3+10, p), 1e-9)
}

func TestRadialVelocityEccentricOffset(t *testing.T) {
	p := Params{
		PeriodDays:   100,
		KAmplitude:   40,
		Eccentricity: 0.4,
		OmegaRad:     math.Pi / 3,
		TPeriastron:  0,
		Gamma:        12,
	}

	// At t = t₀, ν = 0: v = γ + K (cos ω + e cos ω).
	want := 12 + 40*(math.Cos(math.Pi/3)+0.4*math.Cos(math.Pi/3))
	assert.InDelta(t, want, RadialVelocity(0, p), 1e-9)
}

func TestRadialVelocitySeriesMatchesPointwise(t *testing.T) {
	p := Params{PeriodDays: 12, KAmplitude: 50, Gamma: 3}
	times := []float64{0, 1.5, 3.7, 100.2}

	series := RadialVelocitySeries(times, p)
	require.Len(t, series, len(times))
	for i, tt := range times {
		assert.Equal(t, RadialVelocity(tt, p), series[i])
	}
}

func TestWrapAngle(t *testing.T) {
	assert.InDelta(t, 0.5, WrapAngle(0.5+4*math.Pi), 1e-12)
	assert.InDelta(t, 2*math.Pi-0.5, WrapAngle(-0.5), 1e-12)
	assert.Equal(t, 0.0, WrapAngle(0))
}
