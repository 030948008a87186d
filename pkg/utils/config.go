package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the client configuration
type Config struct {
	Client    ClientConfig    `yaml:"client" mapstructure:"client"`
	Analysis  AnalysisConfig  `yaml:"analysis" mapstructure:"analysis"`
	Generator GeneratorConfig `yaml:"generator" mapstructure:"generator"`
}

// ClientConfig contains client-specific configuration
type ClientConfig struct {
	DataDir  string `yaml:"data_dir" mapstructure:"data_dir"`
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
}

// AnalysisConfig contains analysis-specific configuration
type AnalysisConfig struct {
	Oversample       float64 `yaml:"oversample" mapstructure:"oversample"`
	FAPThreshold     float64 `yaml:"fap_threshold" mapstructure:"fap_threshold"`
	MinPeakPower     float64 `yaml:"min_peak_power" mapstructure:"min_peak_power"`
	MaxObservations  int     `yaml:"max_observations" mapstructure:"max_observations"`
	MaxConcurrent    int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	DownsamplePoints int     `yaml:"downsample_points" mapstructure:"downsample_points"`
	MaxFitIterations int     `yaml:"max_fit_iterations" mapstructure:"max_fit_iterations"`
	TSweepSteps      int     `yaml:"t_sweep_steps" mapstructure:"t_sweep_steps"`
}

// GeneratorConfig contains synthetic dataset generator configuration
type GeneratorConfig struct {
	BaselineDays  float64 `yaml:"baseline_days" mapstructure:"baseline_days"`
	JitterMS      float64 `yaml:"jitter_ms" mapstructure:"jitter_ms"`
	InstrumentMS  float64 `yaml:"instrument_ms" mapstructure:"instrument_ms"`
	DriftMSPerDay float64 `yaml:"drift_ms_per_day" mapstructure:"drift_ms_per_day"`
	ErrorFloorMS  float64 `yaml:"error_floor_ms" mapstructure:"error_floor_ms"`
	ErrorCeilMS   float64 `yaml:"error_ceil_ms" mapstructure:"error_ceil_ms"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	exoscanDir := filepath.Join(homeDir, ".exoscan")

	return &Config{
		Client: ClientConfig{
			DataDir:  filepath.Join(exoscanDir, "data"),
			LogLevel: "info",
		},
		Analysis: AnalysisConfig{
			Oversample:       10,
			FAPThreshold:     0.01,
			MinPeakPower:     0.08,
			MaxObservations:  5000,
			MaxConcurrent:    4,
			DownsamplePoints: 500,
			MaxFitIterations: 500,
			TSweepSteps:      24,
		},
		Generator: GeneratorConfig{
			BaselineDays:  730,
			JitterMS:      2.0,
			InstrumentMS:  1.5,
			DriftMSPerDay: 0.005,
			ErrorFloorMS:  1.5,
			ErrorCeilMS:   4.0,
		},
	}
}

// LoadConfig loads configuration from the given file, or from the
// standard search paths when cfgFile is empty. A missing config file is
// not an error; defaults are used.
func LoadConfig(cfgFile string) (*Config, error) {
	viper.SetConfigType("yaml")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		homeDir, _ := os.UserHomeDir()
		viper.AddConfigPath(filepath.Join(homeDir, ".exoscan"))
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("EXOSCAN")
	viper.AutomaticEnv()

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, use defaults without writing
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Unmarshal config
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate config
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// SaveConfig writes the configuration under configDir, defaulting to
// ~/.exoscan when configDir is empty.
func SaveConfig(config *Config, configDir string) error {
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".exoscan")
	}
	configFile := filepath.Join(configDir, "config.yaml")

	// Create config directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if config.Client.DataDir != "" {
		if err := os.MkdirAll(config.Client.DataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write config file
	if err := os.WriteFile(configFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Configuration saved to: %s\n", configFile)
	return nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Analysis.Oversample < 5 {
		return fmt.Errorf("analysis.oversample must be at least 5, got %g", config.Analysis.Oversample)
	}
	if config.Analysis.FAPThreshold <= 0 || config.Analysis.FAPThreshold >= 1 {
		return fmt.Errorf("analysis.fap_threshold must be in (0,1), got %g", config.Analysis.FAPThreshold)
	}
	if config.Analysis.MaxObservations < 10 {
		return fmt.Errorf("analysis.max_observations must be at least 10, got %d", config.Analysis.MaxObservations)
	}
	if config.Analysis.MaxConcurrent <= 0 {
		return fmt.Errorf("analysis.max_concurrent must be positive, got %d", config.Analysis.MaxConcurrent)
	}
	if config.Generator.BaselineDays <= 0 {
		return fmt.Errorf("generator.baseline_days must be positive, got %g", config.Generator.BaselineDays)
	}
	if config.Generator.ErrorFloorMS <= 0 {
		return fmt.Errorf("generator.error_floor_ms must be positive, got %g", config.Generator.ErrorFloorMS)
	}
	return nil
}
