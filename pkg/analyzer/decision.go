package analyzer

import (
	"sort"

	"github.com/exoscan/exoscan/internal/types"
)

// snrFloor is the minimum fitted amplitude relative to the median
// measurement uncertainty for a believable detection.
const snrFloor = 3.0

// Significance labels, ordered by strength.
const (
	SignificanceHigh     = "high"
	SignificanceModerate = "moderate"
	SignificanceMarginal = "marginal"
)

// decide combines periodogram significance and fit quality into the
// final verdict. planet_detected requires a significant periodogram
// peak, a converged fit and a fitted amplitude clearing the
// signal-to-noise floor.
func decide(pg *types.Periodogram, fit *types.OrbitalFit, obs types.Observations, fapThreshold float64) (types.DetectionStatus, string) {
	if pg == nil || !pg.SignificantDetection {
		return types.NoDetection, ""
	}
	if fit == nil || fit.Quality == types.FitUnknown {
		return types.NoDetection, ""
	}

	snr := 0.0
	if medErr := medianError(obs.RVError); medErr > 0 {
		snr = fit.KAmplitudeMS / medErr
	}
	if snr <= snrFloor {
		return types.NoDetection, ""
	}

	return types.PlanetDetected, significanceLabel(pg.FalseAlarmProbability, snr, fapThreshold)
}

// significanceLabel grades a detection by how far the false alarm
// probability falls below the threshold and by the SNR margin.
func significanceLabel(fap, snr, threshold float64) string {
	switch {
	case fap < threshold/100 && snr >= 5:
		return SignificanceHigh
	case fap < threshold/10:
		return SignificanceModerate
	default:
		return SignificanceMarginal
	}
}

func medianError(errs []float64) float64 {
	if len(errs) == 0 {
		return 0
	}
	sorted := make([]float64, len(errs))
	copy(sorted, errs)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return 0.5 * (sorted[mid-1] + sorted[mid])
}
