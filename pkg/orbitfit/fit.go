// Package orbitfit fits the six-parameter Keplerian radial-velocity
// model to an observation series by weighted nonlinear least squares.
// An orbit that cannot be fit is an expected outcome on noisy data, so
// numerical failure degrades to a zero-amplitude result tagged
// FitUnknown instead of an error.
package orbitfit

import (
	"context"
	"log"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/exoscan/exoscan/internal/types"
	"github.com/exoscan/exoscan/pkg/kepler"
)

const (
	// maxEccentricity bounds the fit away from the parabolic limit,
	// where the anomaly solve loses conditioning.
	maxEccentricity = 0.95

	// penalty dominates any physical chi-square and steers the simplex
	// back inside the parameter bounds.
	penalty = 1e12

	// nParams is the Keplerian parameter count (P, K, e, ω, t₀, γ).
	nParams = 6
)

// Options bounds the optimizer's work.
type Options struct {
	// MaxIterations caps the outer Nelder-Mead iterations.
	MaxIterations int

	// TSweepSteps is the number of periastron-time seeds swept over one
	// period before the fit, to avoid local minima in t₀.
	TSweepSteps int
}

// DefaultOptions returns the standard fit budget.
func DefaultOptions() Options {
	return Options{MaxIterations: 500, TSweepSteps: 24}
}

// Fit performs the weighted Keplerian fit seeded from the periodogram's
// best period. It never fails: a diverged or non-convergent fit comes
// back with Quality=FitUnknown (and K=0 when no finite starting point
// exists at all).
func Fit(ctx context.Context, obs types.Observations, seedPeriod float64, opts Options) *types.OrbitalFit {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultOptions().MaxIterations
	}
	if opts.TSweepSteps <= 0 {
		opts.TSweepSteps = DefaultOptions().TSweepSteps
	}

	if obs.Len() < nParams+1 || seedPeriod <= 0 || !isFinite(seedPeriod) {
		return unknownFit(seedPeriod)
	}
	if err := ctx.Err(); err != nil {
		return unknownFit(seedPeriod)
	}

	x0, ok := seed(obs, seedPeriod, opts.TSweepSteps)
	if !ok {
		log.Printf("Orbit fit: no finite starting point found for period %.4f, reporting no detectable orbit", seedPeriod)
		return unknownFit(seedPeriod)
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 { return objective(obs, x) },
	}
	settings := &optimize.Settings{
		MajorIterations: opts.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-9,
			Iterations: 60,
		},
	}

	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil || result == nil || !isFinite(result.F) {
		log.Printf("Orbit fit: optimizer failed for period %.4f: %v", seedPeriod, err)
		return unknownFit(seedPeriod)
	}

	fit := assemble(obs, result.X)
	// Nelder-Mead often pins the minimum long before its converger
	// fires, so an exhausted iteration budget with a finite objective is
	// a normal termination; quality comes from the reduced chi-square.
	fit.Converged = result.Status == optimize.FunctionConvergence ||
		result.Status == optimize.FunctionThreshold ||
		result.Status == optimize.IterationLimit
	if !fit.Converged {
		fit.Quality = types.FitUnknown
	}
	return fit
}

// seed builds the optimizer starting point: K from half the
// peak-to-trough range, γ from the error-weighted mean, circular orbit,
// and t₀ swept over one period keeping the lowest-chi-square phase.
func seed(obs types.Observations, period float64, sweepSteps int) ([]float64, bool) {
	weights := make([]float64, obs.Len())
	for i, e := range obs.RVError {
		weights[i] = 1.0 / (e * e)
	}
	gamma0 := stat.Mean(obs.RV, weights)
	k0 := 0.5 * (floats.Max(obs.RV) - floats.Min(obs.RV))

	tMin := floats.Min(obs.Time)

	bestChi := math.Inf(1)
	bestT0 := tMin
	for s := 0; s < sweepSteps; s++ {
		t0 := tMin + period*float64(s)/float64(sweepSteps)
		chi := objective(obs, []float64{period, k0, 0, 0, t0, gamma0})
		if chi < bestChi {
			bestChi = chi
			bestT0 = t0
		}
	}
	if !isFinite(bestChi) || bestChi >= penalty {
		return nil, false
	}

	return []float64{period, k0, 0, 0, bestT0, gamma0}, true
}

// objective is the weighted chi-square of the Keplerian model, with
// out-of-bounds parameters pushed back by a large penalty.
func objective(obs types.Observations, x []float64) float64 {
	p := paramsFromVector(x)

	var violation float64
	if p.PeriodDays <= 0 {
		violation += 1 - p.PeriodDays
	}
	if p.KAmplitude < 0 {
		violation += -p.KAmplitude
	}
	if p.Eccentricity < 0 {
		violation += -p.Eccentricity
	}
	if p.Eccentricity > maxEccentricity {
		violation += p.Eccentricity - maxEccentricity
	}
	if violation > 0 {
		return penalty * (1 + violation)
	}

	var chi float64
	for i, t := range obs.Time {
		r := (obs.RV[i] - kepler.RadialVelocity(t, p)) / obs.RVError[i]
		chi += r * r
	}
	if !isFinite(chi) {
		return penalty
	}
	return chi
}

func paramsFromVector(x []float64) kepler.Params {
	return kepler.Params{
		PeriodDays:   x[0],
		KAmplitude:   x[1],
		Eccentricity: x[2],
		OmegaRad:     x[3],
		TPeriastron:  x[4],
		Gamma:        x[5],
	}
}

// assemble normalizes the fitted vector and computes fit diagnostics.
func assemble(obs types.Observations, x []float64) *types.OrbitalFit {
	p := paramsFromVector(x)
	p.OmegaRad = kepler.WrapAngle(p.OmegaRad)
	if p.Eccentricity < 0 {
		p.Eccentricity = 0
	}
	if p.Eccentricity > maxEccentricity {
		p.Eccentricity = maxEccentricity
	}
	if p.KAmplitude < 0 {
		// A negative amplitude is the same orbit half a phase away.
		p.KAmplitude = -p.KAmplitude
		p.OmegaRad = kepler.WrapAngle(p.OmegaRad + math.Pi)
	}
	// Normalize t₀ into the first observed period.
	tMin := floats.Min(obs.Time)
	p.TPeriastron = tMin + math.Mod(math.Mod(p.TPeriastron-tMin, p.PeriodDays)+p.PeriodDays, p.PeriodDays)

	model := kepler.RadialVelocitySeries(obs.Time, p)
	residuals := make([]float64, len(model))

	var chi, rss float64
	for i := range model {
		residuals[i] = obs.RV[i] - model[i]
		r := residuals[i] / obs.RVError[i]
		chi += r * r
		rss += residuals[i] * residuals[i]
	}

	n := obs.Len()
	reduced := math.Inf(1)
	if n > nParams {
		reduced = chi / float64(n-nParams)
	}

	return &types.OrbitalFit{
		PeriodDays:        p.PeriodDays,
		KAmplitudeMS:      p.KAmplitude,
		Eccentricity:      p.Eccentricity,
		OmegaRad:          p.OmegaRad,
		TPeriastronDays:   p.TPeriastron,
		GammaMS:           p.Gamma,
		ChiSquared:        chi,
		ReducedChiSquared: reduced,
		RMS:               math.Sqrt(rss / float64(n)),
		Quality:           qualityBucket(reduced),
		ModelRV:           model,
		Residuals:         residuals,
	}
}

// qualityBucket maps reduced chi-square to the qualitative buckets.
func qualityBucket(reduced float64) types.FitQuality {
	switch {
	case !isFinite(reduced):
		return types.FitUnknown
	case reduced < 1.5:
		return types.FitGood
	case reduced < 3.0:
		return types.FitModerate
	default:
		return types.FitPoor
	}
}

// unknownFit is the "no detectable orbit" result.
func unknownFit(seedPeriod float64) *types.OrbitalFit {
	return &types.OrbitalFit{
		PeriodDays: seedPeriod,
		Quality:    types.FitUnknown,
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
