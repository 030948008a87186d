package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/exoscan/exoscan/internal/types"
	"github.com/exoscan/exoscan/pkg/analyzer"
	"github.com/exoscan/exoscan/pkg/dataset"
)

var (
	anInput       string
	anStellarMass float64
	anLuminosity  float64
	anDownsample  int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a radial-velocity series for planetary signals",
	Long: `Analyze a radial-velocity observation series (CSV columns: time,
rv, rv_error) for periodic planetary signals. Reports the periodogram
peak, the fitted Keplerian orbit, derived planet properties and the
detection verdict.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		obs, err := dataset.LoadObservations(anInput, analyzer.MinObservations)
		if err != nil {
			return err
		}

		req := analyzer.AnalyzeRequest{
			Time:             obs.Time,
			RV:               obs.RV,
			RVError:          obs.RVError,
			StellarMassSolar: anStellarMass,
			DownsamplePoints: anDownsample,
		}
		if cmd.Flags().Changed("luminosity") {
			lum := anLuminosity
			req.LuminositySolar = &lum
		}

		result, err := globalManager.Analyze(context.Background(), req)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		return printResult(result)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&anInput, "input", "", "observation CSV file (required)")
	analyzeCmd.Flags().Float64Var(&anStellarMass, "stellar-mass", 1.0, "host star mass in solar masses")
	analyzeCmd.Flags().Float64Var(&anLuminosity, "luminosity", 1.0, "host star luminosity in solar units (enables equilibrium temperature)")
	analyzeCmd.Flags().IntVar(&anDownsample, "downsample", 0, "downsample the returned periodogram curve to this many points")
	_ = analyzeCmd.MarkFlagRequired("input")
}

// printResult renders an analysis result as tables with the verdict
// highlighted.
func printResult(result *types.AnalysisResult) error {
	detected := color.New(color.FgGreen, color.Bold)
	notDetected := color.New(color.FgYellow, color.Bold)

	if result.Status == types.PlanetDetected {
		detected.Printf("\nPLANET DETECTED (significance: %s)\n\n", result.Significance)
	} else {
		notDetected.Printf("\nNo planet detected\n\n")
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Quantity", "Value"})

	pg := result.Periodogram
	rows := [][]string{
		{"Best period (days)", fmtFloat(pg.BestPeriod)},
		{"Peak power", fmtFloat(pg.PeakPower)},
		{"False alarm probability", strconv.FormatFloat(pg.FalseAlarmProbability, 'g', 3, 64)},
		{"Significant periodogram peak", strconv.FormatBool(pg.SignificantDetection)},
		{"Observations used", strconv.Itoa(pg.EffectiveObservations)},
	}

	if fit := result.OrbitalFit; fit != nil {
		rows = append(rows,
			[]string{"RV semi-amplitude K (m/s)", fmtFloat(fit.KAmplitudeMS)},
			[]string{"Eccentricity", fmtFloat(fit.Eccentricity)},
			[]string{"Systemic velocity (m/s)", fmtFloat(fit.GammaMS)},
			[]string{"Reduced chi-square", fmtFloat(fit.ReducedChiSquared)},
			[]string{"Fit quality", string(fit.Quality)},
		)
	}
	if props := result.PlanetProperties; props != nil {
		rows = append(rows,
			[]string{"Minimum mass (Earth)", fmtFloat(props.MinimumMassEarth)},
			[]string{"Minimum mass (Jupiter)", fmtFloat(props.MinimumMassJupiter)},
			[]string{"Semi-major axis (AU)", fmtFloat(props.SemiMajorAxisAU)},
		)
		if props.EquilibriumTempK != nil {
			rows = append(rows, []string{"Equilibrium temperature (K)", fmtFloat(*props.EquilibriumTempK)})
		}
	}

	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Printf("Analysis %s completed in %v\n", result.ID, result.Duration)
	return nil
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
