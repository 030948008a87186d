package analyzer

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/exoscan/exoscan/internal/types"
	"github.com/exoscan/exoscan/pkg/kepler"
)

// scenarioRequest builds the canonical test scenario: 150 points over
// 400 days with an injected circular K=50 m/s, P=12 d signal and
// seeded 2 m/s Gaussian noise.
func scenarioRequest(k float64, seed uint64) AnalyzeRequest {
	const (
		n        = 150
		baseline = 400.0
		sigma    = 2.0
	)
	noise := distuv.Normal{Mu: 0, Sigma: sigma, Src: rand.NewSource(seed)}
	orbit := kepler.Params{PeriodDays: 12, KAmplitude: k, TPeriastron: 2}

	req := AnalyzeRequest{
		Time:             make([]float64, n),
		RV:               make([]float64, n),
		RVError:          make([]float64, n),
		StellarMassSolar: 1.0,
	}
	for i := 0; i < n; i++ {
		t := baseline * float64(i) / float64(n-1)
		req.Time[i] = t
		req.RV[i] = kepler.RadialVelocity(t, orbit) + noise.Rand()
		req.RVError[i] = sigma
	}
	return req
}

func TestAnalyzeDetectsInjectedPlanet(t *testing.T) {
	m := NewManager(nil)
	result, err := m.Analyze(context.Background(), scenarioRequest(50, 7))
	require.NoError(t, err)

	assert.Equal(t, types.PlanetDetected, result.Status)
	assert.NotEmpty(t, result.Significance)
	assert.NotEmpty(t, result.ID)

	require.NotNil(t, result.Periodogram)
	assert.True(t, result.Periodogram.SignificantDetection)
	assert.InDelta(t, 12.0, result.Periodogram.BestPeriod, 0.6)

	require.NotNil(t, result.OrbitalFit)
	assert.NotEqual(t, types.FitUnknown, result.OrbitalFit.Quality)
	assert.InEpsilon(t, 50.0, result.OrbitalFit.KAmplitudeMS, 0.10)
	assert.InEpsilon(t, 12.0, result.OrbitalFit.PeriodDays, 0.05)

	require.NotNil(t, result.PlanetProperties)
	assert.Greater(t, result.PlanetProperties.MinimumMassEarth, 0.0)
	assert.Greater(t, result.PlanetProperties.SemiMajorAxisAU, 0.0)
	assert.Nil(t, result.PlanetProperties.EquilibriumTempK)

	require.NotNil(t, result.Summary)
	assert.Equal(t, result.OrbitalFit.KAmplitudeMS, result.Summary.RVAmplitudeMS)
}

func TestAnalyzeNoiseYieldsNoDetection(t *testing.T) {
	m := NewManager(nil)
	result, err := m.Analyze(context.Background(), scenarioRequest(0, 23))
	require.NoError(t, err)

	assert.Equal(t, types.NoDetection, result.Status)
	assert.Empty(t, result.Significance)
	require.NotNil(t, result.Periodogram)
}

func TestAnalyzeGeneratedJupiterDataset(t *testing.T) {
	m := NewManager(nil)

	ds, err := m.GenerateDataset("jupiter", 150, 42)
	require.NoError(t, err)

	result, err := m.Analyze(context.Background(), AnalyzeRequest{
		Time:             ds.Time,
		RV:               ds.RV,
		RVError:          ds.RVError,
		StellarMassSolar: 1.0,
	})
	require.NoError(t, err)

	assert.Equal(t, types.PlanetDetected, result.Status)
	assert.InEpsilon(t, ds.Params.PeriodDays, result.Periodogram.BestPeriod, 0.10,
		"recovered period should be near the injected %g days", ds.Params.PeriodDays)
}

func TestAnalyzeGeneratedNoiseDataset(t *testing.T) {
	m := NewManager(nil)

	ds, err := m.GenerateDataset("noise", 150, 42)
	require.NoError(t, err)

	result, err := m.Analyze(context.Background(), AnalyzeRequest{
		Time:             ds.Time,
		RV:               ds.RV,
		RVError:          ds.RVError,
		StellarMassSolar: 1.0,
	})
	require.NoError(t, err)
	assert.Equal(t, types.NoDetection, result.Status)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	m := NewManager(nil)
	req := scenarioRequest(50, 7)

	a, err := m.Analyze(context.Background(), req)
	require.NoError(t, err)
	b, err := m.Analyze(context.Background(), req)
	require.NoError(t, err)

	// No hidden randomness inside analyze: bit-identical numerics.
	assert.Equal(t, a.Periodogram.BestPeriod, b.Periodogram.BestPeriod)
	assert.Equal(t, a.Periodogram.FalseAlarmProbability, b.Periodogram.FalseAlarmProbability)
	assert.Equal(t, a.OrbitalFit.KAmplitudeMS, b.OrbitalFit.KAmplitudeMS)
	assert.Equal(t, a.OrbitalFit.PeriodDays, b.OrbitalFit.PeriodDays)
	assert.Equal(t, a.OrbitalFit.ChiSquared, b.OrbitalFit.ChiSquared)

	// Result identity differs per invocation.
	assert.NotEqual(t, a.ID, b.ID)
}

func TestAnalyzeLuminosityEnablesTemperature(t *testing.T) {
	m := NewManager(nil)
	req := scenarioRequest(50, 7)
	lum := 1.0
	req.LuminositySolar = &lum

	result, err := m.Analyze(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, result.PlanetProperties)
	require.NotNil(t, result.PlanetProperties.EquilibriumTempK)
	assert.Greater(t, *result.PlanetProperties.EquilibriumTempK, 0.0)
}

func TestAnalyzeInvalidArguments(t *testing.T) {
	m := NewManager(nil)
	ctx := context.Background()

	// Mismatched lengths.
	req := scenarioRequest(50, 7)
	req.RV = req.RV[:len(req.RV)-1]
	_, err := m.Analyze(ctx, req)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	// Non-positive stellar mass.
	req = scenarioRequest(50, 7)
	req.StellarMassSolar = 0
	_, err = m.Analyze(ctx, req)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	// Non-positive uncertainty.
	req = scenarioRequest(50, 7)
	req.RVError[3] = 0
	_, err = m.Analyze(ctx, req)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	// Too few points.
	req = scenarioRequest(50, 7)
	req.Time, req.RV, req.RVError = req.Time[:5], req.RV[:5], req.RVError[:5]
	_, err = m.Analyze(ctx, req)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestGenerateDatasetInvalidKind(t *testing.T) {
	m := NewManager(nil)
	_, err := m.GenerateDataset("saturn", 100, 1)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = m.GenerateDataset("jupiter", 0, 1)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestAnalyzeDownsamplesPeriodogramCurve(t *testing.T) {
	m := NewManager(nil)
	req := scenarioRequest(50, 7)
	req.DownsamplePoints = 50

	result, err := m.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(result.Periodogram.Periods), 53)
	assert.Equal(t, len(result.Periodogram.Periods), len(result.Periodogram.Power))

	// The downsampled curve still contains the peak power.
	maxP := 0.0
	for _, p := range result.Periodogram.Power {
		maxP = math.Max(maxP, p)
	}
	assert.Equal(t, result.Periodogram.PeakPower, maxP)
}
