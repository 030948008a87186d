// Package periodogram computes the generalized Lomb-Scargle periodogram
// of an unevenly sampled radial-velocity series. The generalized form
// (Zechmeister & Kürster 2009) weights every point by its measurement
// uncertainty and fits a floating mean, which is what makes it valid
// for heteroscedastic RV data where a plain FFT is not.
package periodogram

import (
	"context"
	"fmt"
	"log"
	"math"
	"runtime"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/exoscan/exoscan/internal/types"
)

// MinObservations is the smallest series the engine accepts.
const MinObservations = 10

// powers within tieEpsilon of each other count as a tie; ties are
// broken in favor of the longer period.
const tieEpsilon = 1e-12

// Options configures a periodogram scan. The zero value is not usable;
// start from DefaultOptions.
type Options struct {
	// Oversample is the frequency grid oversampling factor relative to
	// the Rayleigh resolution 1/baseline. Values below 5 under-resolve
	// narrow peaks.
	Oversample float64

	// MaxObservations caps the series size fed into the grid search.
	// Larger series are decimated uniformly beforehand.
	MaxObservations int

	// Workers is the number of goroutines scanning the grid.
	Workers int

	// FAPThreshold and MinPeakPower gate SignificantDetection. The
	// power floor rejects formally "significant" but physically
	// negligible peaks in pathological inputs.
	FAPThreshold float64
	MinPeakPower float64

	// DownsamplePoints bounds the length of the period/power curve
	// returned for display. Zero disables curve downsampling.
	DownsamplePoints int

	// MinPeriodDays / MaxPeriodDays override the automatic search
	// range when positive.
	MinPeriodDays float64
	MaxPeriodDays float64
}

// DefaultOptions returns the standard scan configuration.
func DefaultOptions() Options {
	return Options{
		Oversample:       10,
		MaxObservations:  5000,
		Workers:          runtime.GOMAXPROCS(0),
		FAPThreshold:     0.01,
		MinPeakPower:     0.08,
		DownsamplePoints: 500,
	}
}

// Engine computes periodograms. It is stateless apart from its options
// and safe for concurrent use.
type Engine struct {
	opts Options
}

// NewEngine creates an engine, filling unset options with defaults.
func NewEngine(opts Options) *Engine {
	def := DefaultOptions()
	if opts.Oversample < 5 {
		opts.Oversample = def.Oversample
	}
	if opts.MaxObservations <= 0 {
		opts.MaxObservations = def.MaxObservations
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	if opts.FAPThreshold <= 0 {
		opts.FAPThreshold = def.FAPThreshold
	}
	if opts.MinPeakPower <= 0 {
		opts.MinPeakPower = def.MinPeakPower
	}
	if opts.DownsamplePoints < 0 {
		opts.DownsamplePoints = def.DownsamplePoints
	}
	return &Engine{opts: opts}
}

// Compute runs the full scan: validation, decimation, grid build,
// parallel power evaluation, peak selection and false-alarm estimation.
func (e *Engine) Compute(ctx context.Context, obs types.Observations) (*types.Periodogram, error) {
	if err := obs.Validate(MinObservations); err != nil {
		return nil, err
	}

	work := obs
	if obs.Len() > e.opts.MaxObservations {
		work = decimate(obs, e.opts.MaxObservations)
		log.Printf("Periodogram: decimated %d observations to %d before grid search",
			obs.Len(), work.Len())
	}

	freqs, err := e.frequencyGrid(work.Time)
	if err != nil {
		return nil, err
	}

	power, err := e.scan(ctx, work, freqs)
	if err != nil {
		return nil, err
	}

	peakIdx := selectPeak(power)
	bestPeriod := 1.0 / freqs[peakIdx]
	peakPower := power[peakIdx]

	n := work.Len()
	baseline := timeSpan(work.Time)
	fap := falseAlarmProbability(peakPower, n, baseline, freqs[0], freqs[len(freqs)-1])

	periods := make([]float64, len(freqs))
	for i, f := range freqs {
		periods[i] = 1.0 / f
	}

	// Reverse to ascending period for the returned curve.
	reverse(periods)
	reverse(power)
	curvePeriods, curvePower := downsampleCurve(periods, power, e.opts.DownsamplePoints)

	return &types.Periodogram{
		Periods:               curvePeriods,
		Power:                 curvePower,
		BestPeriod:            bestPeriod,
		PeakPower:             peakPower,
		FalseAlarmProbability: fap,
		SignificantDetection:  fap < e.opts.FAPThreshold && peakPower >= e.opts.MinPeakPower,
		EffectiveObservations: n,
	}, nil
}

// frequencyGrid builds the search grid in cycles/day. The lower bound
// allows periods up to twice the baseline, the upper bound stops at the
// pseudo-Nyquist frequency of the median sampling spacing.
func (e *Engine) frequencyGrid(times []float64) ([]float64, error) {
	baseline := timeSpan(times)
	if baseline <= 0 {
		return nil, fmt.Errorf("%w: observations span zero time", types.ErrInvalidArgument)
	}

	spacing := medianSpacing(times)
	if spacing <= 0 {
		return nil, fmt.Errorf("%w: observation times are degenerate (median spacing %g)",
			types.ErrInvalidArgument, spacing)
	}

	fMin := 0.5 / baseline
	fMax := 1.0 / (2.0 * spacing)

	if e.opts.MaxPeriodDays > 0 {
		fMin = 1.0 / e.opts.MaxPeriodDays
	}
	if e.opts.MinPeriodDays > 0 {
		fMax = 1.0 / e.opts.MinPeriodDays
	}
	if fMax <= fMin {
		return nil, fmt.Errorf("%w: empty period search range (fmin=%g, fmax=%g)",
			types.ErrInvalidArgument, fMin, fMax)
	}

	df := 1.0 / (e.opts.Oversample * baseline)
	n := int((fMax-fMin)/df) + 1

	freqs := make([]float64, n)
	for i := range freqs {
		freqs[i] = fMin + float64(i)*df
	}
	return freqs, nil
}

// scan evaluates GLS power over the grid. Frequencies are independent,
// so the grid is chunked across workers; each worker writes a disjoint
// slice of the shared power array.
func (e *Engine) scan(ctx context.Context, obs types.Observations, freqs []float64) ([]float64, error) {
	sums := precompute(obs)
	power := make([]float64, len(freqs))

	workers := e.opts.Workers
	if workers > len(freqs) {
		workers = len(freqs)
	}

	chunk := (len(freqs) + workers - 1) / workers
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(freqs) {
			hi = len(freqs)
		}
		if lo >= hi {
			break
		}

		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			for i := lo; i < hi; i++ {
				power[i] = glsPower(sums, 2*math.Pi*freqs[i])
			}
		}(lo, hi)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return power, nil
}

// weighted holds the frequency-independent weighted sums of the series.
type weighted struct {
	t, y, w []float64
	yMean   float64 // weighted mean of y
	yy      float64 // weighted variance of y about its mean
}

func precompute(obs types.Observations) weighted {
	n := obs.Len()
	w := make([]float64, n)

	var wSum float64
	for i, e := range obs.RVError {
		w[i] = 1.0 / (e * e)
		wSum += w[i]
	}
	for i := range w {
		w[i] /= wSum
	}

	var yMean float64
	for i, y := range obs.RV {
		yMean += w[i] * y
	}
	var yy float64
	for i, y := range obs.RV {
		d := y - yMean
		yy += w[i] * d * d
	}

	return weighted{t: obs.Time, y: obs.RV, w: w, yMean: yMean, yy: yy}
}

// glsPower computes the normalized generalized Lomb-Scargle power at
// angular frequency omega, following Zechmeister & Kürster (2009),
// eq. 5-15. Weights are pre-normalized to Σw = 1 and y is centered on
// its weighted mean, so the YC/YS cross terms need no further
// correction; CC, SS and CS are centered on the weighted trig means to
// realize the floating-mean fit. The result lies in [0, 1].
func glsPower(s weighted, omega float64) float64 {
	var c, sn, yc, ys, ccHat, cs float64

	for i, t := range s.t {
		cosx := math.Cos(omega * t)
		sinx := math.Sin(omega * t)
		wi := s.w[i]
		yd := s.y[i] - s.yMean

		c += wi * cosx
		sn += wi * sinx
		yc += wi * yd * cosx
		ys += wi * yd * sinx
		ccHat += wi * cosx * cosx
		cs += wi * cosx * sinx
	}

	cc := ccHat - c*c
	ss := (1.0 - ccHat) - sn*sn
	cs -= c * sn

	d := cc*ss - cs*cs
	if d <= 0 || s.yy <= 0 {
		return 0
	}

	p := (ss*yc*yc + cc*ys*ys - 2*cs*yc*ys) / (s.yy * d)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// selectPeak returns the index of the maximum power. Powers tied within
// tieEpsilon resolve to the lower frequency, i.e. the longer, more
// physically plausible period.
func selectPeak(power []float64) int {
	best := 0
	for i := 1; i < len(power); i++ {
		if power[i] > power[best]+tieEpsilon {
			best = i
		}
	}
	return best
}

// falseAlarmProbability estimates the probability that a peak of the
// observed height arises from noise alone, using the Horne & Baliunas
// style analytic approximation on the GLS-normalized power: the
// single-frequency tail probability (1-z)^((N-3)/2) corrected for
// M ≈ T·Δf effectively independent frequencies.
func falseAlarmProbability(z float64, n int, baseline, fMin, fMax float64) float64 {
	if n <= 3 {
		return 1
	}
	if z >= 1 {
		return 0
	}

	prob := math.Pow(1-z, float64(n-3)/2)

	m := baseline * (fMax - fMin)
	if m < 1 {
		m = 1
	}

	if prob*m < 0.01 {
		return prob * m
	}
	fap := 1 - math.Pow(1-prob, m)
	if fap > 1 {
		fap = 1
	}
	return fap
}

// decimate reduces a series to at most maxPoints by uniform striding.
// The first and last observations are always kept so the baseline is
// preserved.
func decimate(obs types.Observations, maxPoints int) types.Observations {
	n := obs.Len()
	if n <= maxPoints {
		return obs
	}

	out := types.Observations{
		Time:    make([]float64, 0, maxPoints),
		RV:      make([]float64, 0, maxPoints),
		RVError: make([]float64, 0, maxPoints),
	}
	step := float64(n-1) / float64(maxPoints-1)
	for i := 0; i < maxPoints; i++ {
		j := int(math.Round(float64(i) * step))
		if j >= n {
			j = n - 1
		}
		out.Time = append(out.Time, obs.Time[j])
		out.RV = append(out.RV, obs.RV[j])
		out.RVError = append(out.RVError, obs.RVError[j])
	}
	return out
}

// downsampleCurve reduces the display curve to at most maxPoints,
// always retaining the endpoints and the peak. Selection is uniform
// and deterministic.
func downsampleCurve(periods, power []float64, maxPoints int) ([]float64, []float64) {
	n := len(periods)
	if maxPoints <= 0 || n <= maxPoints {
		return periods, power
	}

	peak := floats.MaxIdx(power)
	keep := map[int]struct{}{0: {}, peak: {}, n - 1: {}}

	step := float64(n-1) / float64(maxPoints-1)
	for i := 0; i < maxPoints; i++ {
		j := int(math.Round(float64(i) * step))
		if j >= n {
			j = n - 1
		}
		keep[j] = struct{}{}
	}

	idx := make([]int, 0, len(keep))
	for j := range keep {
		idx = append(idx, j)
	}
	sort.Ints(idx)

	outP := make([]float64, len(idx))
	outW := make([]float64, len(idx))
	for i, j := range idx {
		outP[i] = periods[j]
		outW[i] = power[j]
	}
	return outP, outW
}

func timeSpan(times []float64) float64 {
	return floats.Max(times) - floats.Min(times)
}

// medianSpacing returns the median gap between consecutive sorted
// observation times.
func medianSpacing(times []float64) float64 {
	sorted := make([]float64, len(times))
	copy(sorted, times)
	sort.Float64s(sorted)

	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, sorted[i]-sorted[i-1])
	}
	sort.Float64s(gaps)

	mid := len(gaps) / 2
	if len(gaps)%2 == 1 {
		return gaps[mid]
	}
	return 0.5 * (gaps[mid-1] + gaps[mid])
}

func reverse(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
