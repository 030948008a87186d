// Package dataset synthesizes radial-velocity test datasets and reads
// and writes observation tables. Generated datasets carry the injected
// ground truth for visualization; the detection pipeline never looks at
// it.
package dataset

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/exoscan/exoscan/internal/types"
	"github.com/exoscan/exoscan/pkg/kepler"
)

// Kind selects the injected signal class.
type Kind string

const (
	KindJupiter Kind = "jupiter"
	KindEarth   Kind = "earth"
	KindNoise   Kind = "noise"
)

// InjectionParams records the ground truth of a synthetic dataset.
type InjectionParams struct {
	HasPlanet        bool    `json:"has_planet"`
	KAmplitude       float64 `json:"k_amplitude"`
	PeriodDays       float64 `json:"period"`
	Eccentricity     float64 `json:"eccentricity"`
	PlanetMassEarth  float64 `json:"planet_mass_earth"`
	StellarMassSolar float64 `json:"stellar_mass"`
}

// Dataset is a synthetic observation series plus its ground truth.
type Dataset struct {
	types.Observations
	TrueSignal []float64       `json:"true_signal,omitempty"`
	Params     InjectionParams `json:"parameters"`
}

// Options tunes the observing campaign and noise model. Defaults match
// a two-year campaign on a quiet solar-type star.
type Options struct {
	BaselineDays      float64 // observing baseline
	JitterMS          float64 // stellar jitter sigma (m/s)
	InstrumentMS      float64 // instrumental noise sigma (m/s)
	DriftMSPerDay     float64 // slow instrumental drift
	ErrorFloorMS      float64 // lower bound of reported uncertainties
	ErrorCeilMS       float64 // upper bound of reported uncertainties
	RandomizedGaps    bool    // jitter observation times to emulate scheduling
	StellarMassSolar  float64
}

// DefaultOptions returns the standard campaign parameters.
func DefaultOptions() Options {
	return Options{
		BaselineDays:     730,
		JitterMS:         2.0,
		InstrumentMS:     1.5,
		DriftMSPerDay:    0.005,
		ErrorFloorMS:     1.5,
		ErrorCeilMS:      4.0,
		RandomizedGaps:   true,
		StellarMassSolar: 1.0,
	}
}

// Preset describes a named demo dataset.
type Preset struct {
	Kind        Kind   `json:"kind"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Presets lists the canonical demo datasets.
func Presets() []Preset {
	return []Preset{
		{KindJupiter, "Jupiter-like Planet", "Strong signal from a Jupiter-mass planet in a one-year orbit"},
		{KindEarth, "Earth-like Planet", "Weak signal from an Earth-mass planet (challenging detection)"},
		{KindNoise, "No Planet (Noise Only)", "Pure stellar and instrumental noise with no planetary signal"},
	}
}

// injection returns the injected orbit for a kind, or has-planet=false.
func injection(kind Kind, stellarMass float64) (InjectionParams, bool) {
	switch kind {
	case KindJupiter:
		return InjectionParams{
			HasPlanet:        true,
			KAmplitude:       80.0,
			PeriodDays:       365.25,
			Eccentricity:     0.05,
			PlanetMassEarth:  317.8,
			StellarMassSolar: stellarMass,
		}, true
	case KindEarth:
		return InjectionParams{
			HasPlanet:        true,
			KAmplitude:       0.09,
			PeriodDays:       365.25,
			Eccentricity:     0.0167,
			PlanetMassEarth:  1.0,
			StellarMassSolar: stellarMass,
		}, true
	default:
		return InjectionParams{StellarMassSolar: stellarMass}, false
	}
}

// Generate synthesizes a dataset of the given kind. The seed fully
// determines the output; equal seeds yield equal datasets.
func Generate(kind Kind, points int, seed uint64) (*Dataset, error) {
	return GenerateWithOptions(kind, points, seed, DefaultOptions())
}

// GenerateWithOptions is Generate with an explicit campaign model.
func GenerateWithOptions(kind Kind, points int, seed uint64, opts Options) (*Dataset, error) {
	if points <= 0 {
		return nil, fmt.Errorf("%w: points must be positive, got %d", types.ErrInvalidArgument, points)
	}
	switch kind {
	case KindJupiter, KindEarth, KindNoise:
	default:
		return nil, fmt.Errorf("%w: unknown dataset kind %q (use: jupiter, earth, noise)",
			types.ErrInvalidArgument, kind)
	}
	if opts.BaselineDays <= 0 {
		opts.BaselineDays = DefaultOptions().BaselineDays
	}
	if opts.StellarMassSolar <= 0 {
		opts.StellarMassSolar = 1.0
	}

	src := rand.NewSource(seed)
	unit := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	errDist := distuv.Uniform{Min: opts.ErrorFloorMS, Max: opts.ErrorCeilMS, Src: src}
	if opts.ErrorCeilMS <= opts.ErrorFloorMS {
		errDist.Max = opts.ErrorFloorMS + 0.1
	}

	ds := &Dataset{
		Observations: types.Observations{
			Time:    make([]float64, points),
			RV:      make([]float64, points),
			RVError: make([]float64, points),
		},
		TrueSignal: make([]float64, points),
	}

	// Observation epochs: a regular cadence, optionally jittered by up
	// to 40% of the spacing to emulate real scheduling gaps.
	spacing := opts.BaselineDays / float64(points-1)
	if points == 1 {
		spacing = 0
	}
	for i := range ds.Time {
		t := float64(i) * spacing
		if opts.RandomizedGaps && i > 0 && i < points-1 {
			t += 0.4 * spacing * unit.Rand()
		}
		ds.Time[i] = t
	}

	params, hasPlanet := injection(kind, opts.StellarMassSolar)
	ds.Params = params

	if hasPlanet {
		orbit := kepler.Params{
			PeriodDays:   params.PeriodDays,
			KAmplitude:   params.KAmplitude,
			Eccentricity: params.Eccentricity,
			OmegaRad:     0,
			TPeriastron:  0,
			Gamma:        0,
		}
		ds.TrueSignal = kepler.RadialVelocitySeries(ds.Time, orbit)
	}

	for i := range ds.RV {
		noise := opts.JitterMS*unit.Rand() + opts.InstrumentMS*unit.Rand()
		drift := opts.DriftMSPerDay * ds.Time[i]
		ds.RV[i] = ds.TrueSignal[i] + noise + drift
		ds.RVError[i] = errDist.Rand()
	}

	if !hasPlanet {
		ds.TrueSignal = nil
	}
	return ds, nil
}
