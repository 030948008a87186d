package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/exoscan/exoscan/pkg/analyzer"
	"github.com/exoscan/exoscan/pkg/utils"
)

const (
	// Application constants
	appName = "exoscan"
	version = "v1.0.0"
)

var (
	// Global analysis manager, built once per invocation
	globalManager *analyzer.Manager

	// Configuration
	globalConfig *utils.Config
	cfgFile      string
	homeDir      string
	jsonOutput   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Radial-velocity exoplanet detection engine",
	Long: `exoscan searches stellar radial-velocity time series for orbiting
planets. It computes a generalized Lomb-Scargle periodogram over the
period search range, fits a Keplerian orbit to the best candidate
period, derives physical planet properties and issues a detection
verdict with a quantified significance.

It can also synthesize realistic test datasets (Jupiter-like,
Earth-like, or pure noise) for demonstration and validation.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init" || cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		if cfgFile == "" && homeDir != "" {
			cfgFile = filepath.Join(homeDir, "config.yaml")
		}
		cfg, err := utils.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		globalConfig = cfg
		globalManager = analyzer.NewManager(cfg)
		return nil
	},
}

// initCmd initializes the client configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Initialize the exoscan configuration. This writes the default
configuration file and creates the local data directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Initializing exoscan %s\n", version)
		return utils.SaveConfig(utils.DefaultConfig(), homeDir)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.exoscan/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "home directory (default is $HOME/.exoscan)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit raw JSON instead of tables")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(analyzeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
