// Package analyzer composes the detection pipeline: periodogram scan,
// Keplerian orbit fit, planet property derivation and the final
// detection verdict. Every call is a pure computation over its inputs;
// nothing is shared across invocations.
package analyzer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/exoscan/exoscan/internal/types"
	"github.com/exoscan/exoscan/pkg/dataset"
	"github.com/exoscan/exoscan/pkg/orbitfit"
	"github.com/exoscan/exoscan/pkg/periodogram"
	"github.com/exoscan/exoscan/pkg/planetprops"
	"github.com/exoscan/exoscan/pkg/utils"
)

// MinObservations is the smallest series Analyze accepts.
const MinObservations = periodogram.MinObservations

// Manager handles all analysis operations
type Manager struct {
	cfg *utils.Config
}

// NewManager creates a new analysis manager
func NewManager(cfg *utils.Config) *Manager {
	if cfg == nil {
		cfg = utils.DefaultConfig()
	}
	return &Manager{cfg: cfg}
}

// AnalyzeRequest carries one analysis invocation's input.
type AnalyzeRequest struct {
	Time    []float64 `json:"time"`
	RV      []float64 `json:"rv"`
	RVError []float64 `json:"rv_error"`

	StellarMassSolar float64  `json:"stellar_mass"`
	LuminositySolar  *float64 `json:"stellar_luminosity,omitempty"`

	// DownsamplePoints overrides the configured periodogram curve
	// length when positive.
	DownsamplePoints int `json:"downsample_points,omitempty"`
}

// GenerateDataset synthesizes a test dataset of the given kind using
// the configured campaign model.
func (m *Manager) GenerateDataset(kind string, points int, seed uint64) (*dataset.Dataset, error) {
	opts := dataset.DefaultOptions()
	opts.BaselineDays = m.cfg.Generator.BaselineDays
	opts.JitterMS = m.cfg.Generator.JitterMS
	opts.InstrumentMS = m.cfg.Generator.InstrumentMS
	opts.DriftMSPerDay = m.cfg.Generator.DriftMSPerDay
	opts.ErrorFloorMS = m.cfg.Generator.ErrorFloorMS
	opts.ErrorCeilMS = m.cfg.Generator.ErrorCeilMS

	return dataset.GenerateWithOptions(dataset.Kind(kind), points, seed, opts)
}

// Analyze runs the full detection pipeline. Input violations come back
// as types.ErrInvalidArgument; numerical failures inside the pipeline
// degrade to a no_detection verdict instead of an error.
func (m *Manager) Analyze(ctx context.Context, req AnalyzeRequest) (*types.AnalysisResult, error) {
	start := time.Now()

	obs := types.Observations{Time: req.Time, RV: req.RV, RVError: req.RVError}
	if err := obs.Validate(MinObservations); err != nil {
		return nil, err
	}
	if req.StellarMassSolar <= 0 {
		return nil, fmt.Errorf("%w: stellar mass must be positive, got %g",
			types.ErrInvalidArgument, req.StellarMassSolar)
	}

	log.Printf("Starting radial velocity analysis on %d observations", obs.Len())

	pg, err := m.periodogramEngine(req.DownsamplePoints).Compute(ctx, obs)
	if err != nil {
		return nil, fmt.Errorf("periodogram failed: %w", err)
	}
	log.Printf("Periodogram: best period %.4f d (power %.3f, FAP %.3g)",
		pg.BestPeriod, pg.PeakPower, pg.FalseAlarmProbability)

	result := &types.AnalysisResult{
		ID:          uuid.NewString(),
		Status:      types.NoDetection,
		Periodogram: pg,
		Timestamp:   time.Now(),
	}

	if !pg.SignificantDetection {
		log.Printf("No significant periodic signal detected")
		result.Duration = time.Since(start)
		return result, nil
	}

	fit := orbitfit.Fit(ctx, obs, pg.BestPeriod, orbitfit.Options{
		MaxIterations: m.cfg.Analysis.MaxFitIterations,
		TSweepSteps:   m.cfg.Analysis.TSweepSteps,
	})
	result.OrbitalFit = fit
	log.Printf("Orbit fit: P=%.4f d, K=%.3f m/s, e=%.3f, quality=%s",
		fit.PeriodDays, fit.KAmplitudeMS, fit.Eccentricity, fit.Quality)

	if fit.Quality != types.FitUnknown {
		props, err := planetprops.Derive(fit, planetprops.StellarParams{
			MassSolar:       req.StellarMassSolar,
			LuminositySolar: req.LuminositySolar,
		})
		if err != nil {
			return nil, err
		}
		result.PlanetProperties = props
		result.Summary = &types.AnalysisSummary{
			PeriodDays:         fit.PeriodDays,
			RVAmplitudeMS:      fit.KAmplitudeMS,
			MinPlanetMassEarth: props.MinimumMassEarth,
			SemiMajorAxisAU:    props.SemiMajorAxisAU,
			FitQuality:         fit.Quality,
		}
	}

	result.Status, result.Significance = decide(pg, fit, obs, m.cfg.Analysis.FAPThreshold)
	result.Duration = time.Since(start)

	log.Printf("Analysis completed in %v: %s", result.Duration, result.Status)
	return result, nil
}

// periodogramEngine builds an engine from config, with an optional
// per-request curve downsample override.
func (m *Manager) periodogramEngine(downsample int) *periodogram.Engine {
	opts := periodogram.Options{
		Oversample:       m.cfg.Analysis.Oversample,
		MaxObservations:  m.cfg.Analysis.MaxObservations,
		Workers:          m.cfg.Analysis.MaxConcurrent,
		FAPThreshold:     m.cfg.Analysis.FAPThreshold,
		MinPeakPower:     m.cfg.Analysis.MinPeakPower,
		DownsamplePoints: m.cfg.Analysis.DownsamplePoints,
	}
	if downsample > 0 {
		opts.DownsamplePoints = downsample
	}
	return periodogram.NewEngine(opts)
}
