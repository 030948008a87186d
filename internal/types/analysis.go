package types

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidArgument is returned when an operation is called with
// malformed input (mismatched arrays, non-positive counts or masses).
// Callers can test for it with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// Observations holds a radial-velocity time series. Times are in days,
// velocities and their uncertainties in m/s. Sampling may be uneven;
// times are not required to be sorted.
type Observations struct {
	Time    []float64 `json:"time"`
	RV      []float64 `json:"rv"`
	RVError []float64 `json:"rv_error"`
}

// Len returns the number of observations.
func (o Observations) Len() int { return len(o.Time) }

// Validate checks the series invariants: equal component lengths of at
// least minPoints, and strictly positive uncertainties.
func (o Observations) Validate(minPoints int) error {
	if len(o.Time) != len(o.RV) || len(o.Time) != len(o.RVError) {
		return fmt.Errorf("%w: time, rv and rv_error must have equal length (got %d/%d/%d)",
			ErrInvalidArgument, len(o.Time), len(o.RV), len(o.RVError))
	}
	if len(o.Time) < minPoints {
		return fmt.Errorf("%w: need at least %d observations, got %d",
			ErrInvalidArgument, minPoints, len(o.Time))
	}
	for i, e := range o.RVError {
		if e <= 0 {
			return fmt.Errorf("%w: rv_error[%d] must be positive, got %g",
				ErrInvalidArgument, i, e)
		}
	}
	return nil
}

// Periodogram holds the Lomb-Scargle scan result. Periods and Power
// are the (possibly display-downsampled) curve; the derived scalars are
// always taken from the full-resolution scan.
type Periodogram struct {
	Periods               []float64 `json:"periods"`
	Power                 []float64 `json:"power"`
	BestPeriod            float64   `json:"best_period"`             // days
	PeakPower             float64   `json:"peak_power"`              // normalized, 0..1
	FalseAlarmProbability float64   `json:"false_alarm_probability"` // 0..1
	SignificantDetection  bool      `json:"significant_detection"`
	EffectiveObservations int       `json:"effective_observations"`
}

// FitQuality buckets the reduced chi-square of an orbital fit.
type FitQuality string

const (
	FitGood     FitQuality = "good"
	FitModerate FitQuality = "moderate"
	FitPoor     FitQuality = "poor"
	FitUnknown  FitQuality = "unknown"
)

// OrbitalFit holds the fitted Keplerian parameters and fit diagnostics.
// A fit that diverged carries Quality=FitUnknown and a zero K amplitude
// rather than an error: noisy data legitimately has no detectable
// orbit.
type OrbitalFit struct {
	PeriodDays        float64    `json:"period_days"`
	KAmplitudeMS      float64    `json:"k_amplitude_ms"`
	Eccentricity      float64    `json:"eccentricity"`
	OmegaRad          float64    `json:"omega_rad"`         // argument of periastron, [0, 2π)
	TPeriastronDays   float64    `json:"t_periastron_days"` // time of periastron passage
	GammaMS           float64    `json:"systemic_velocity_ms"`
	ChiSquared        float64    `json:"chi_squared"`
	ReducedChiSquared float64    `json:"reduced_chi_squared"`
	RMS               float64    `json:"rms_ms"`
	Quality           FitQuality `json:"fit_quality"`
	Converged         bool       `json:"converged"`
	ModelRV           []float64  `json:"rv_model,omitempty"`
	Residuals         []float64  `json:"residuals,omitempty"`
}

// PlanetProperties holds physical quantities derived from an orbital
// fit. EquilibriumTempK is nil when no stellar luminosity was supplied;
// it is never defaulted.
type PlanetProperties struct {
	MinimumMassEarth   float64  `json:"minimum_mass_earth"`
	MinimumMassJupiter float64  `json:"minimum_mass_jupiter"`
	SemiMajorAxisAU    float64  `json:"semi_major_axis_au"`
	EquilibriumTempK   *float64 `json:"equilibrium_temperature_k,omitempty"`
}

// DetectionStatus is the binary analysis verdict.
type DetectionStatus string

const (
	PlanetDetected DetectionStatus = "planet_detected"
	NoDetection    DetectionStatus = "no_detection"
)

// AnalysisSummary condenses the headline numbers of a detection.
type AnalysisSummary struct {
	PeriodDays         float64    `json:"period_days"`
	RVAmplitudeMS      float64    `json:"rv_amplitude_ms"`
	MinPlanetMassEarth float64    `json:"min_planet_mass_earth"`
	SemiMajorAxisAU    float64    `json:"semi_major_axis_au"`
	FitQuality         FitQuality `json:"fit_quality"`
}

// AnalysisResult aggregates one full analysis invocation. It is owned
// exclusively by the call that produced it and never shared.
type AnalysisResult struct {
	ID               string            `json:"id"`
	Status           DetectionStatus   `json:"detection_status"`
	Significance     string            `json:"detection_significance,omitempty"`
	Periodogram      *Periodogram      `json:"periodogram"`
	OrbitalFit       *OrbitalFit       `json:"orbital_fit,omitempty"`
	PlanetProperties *PlanetProperties `json:"planet_properties,omitempty"`
	Summary          *AnalysisSummary  `json:"analysis_summary,omitempty"`
	Duration         time.Duration     `json:"duration"`
	Timestamp        time.Time         `json:"timestamp"`
}
