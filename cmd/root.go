package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cfgpkg "github.com/kevinwood15/noshow/internal/config"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	inputPath string

	// Loaded configuration; cfgErr holds the reason when it could not be loaded.
	cfg    *cfgpkg.Global
	cfgErr error

	logger zerolog.Logger
	runID  string
)

var rootCmd = &cobra.Command{
	Use:   "noshow",
	Short: "Descriptive analysis of medical appointment no-shows",
	Long: `noshow loads the Kaggle medical appointment no-show dataset, cleans it, profiles it and
reports how no-show rates differ by gender, scholarship (welfare) status and age.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig, setupLogger)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.noshow/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&inputPath, "input", "", "appointments CSV (overrides input_path)")
}

func loadConfig() {
	cfg, cfgErr = cfgpkg.Load(cfgFile)
	if cfgErr != nil {
		// Non-fatal: config commands can still run
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", cfgErr)
		return
	}
	if inputPath != "" {
		cfg.InputPath = inputPath
	}
}

func setupLogger() {
	runID = uuid.NewString()
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = rootCmd.ErrOrStderr()
	})).Level(level).With().Timestamp().Str("run_id", runID).Logger()
}

// requireConfig returns the loaded configuration or the error that prevented loading it.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		if cfgErr != nil {
			return nil, fmt.Errorf("config: %w", cfgErr)
		}
		return nil, fmt.Errorf("no config loaded")
	}
	return cfg, nil
}
