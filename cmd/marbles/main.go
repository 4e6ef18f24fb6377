package main

import (
	"fmt"
	"os"

	"github.com/benoitkugler/marbles/config"
	"github.com/benoitkugler/marbles/shape"
	"github.com/benoitkugler/marbles/shapedoc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	selector   string
	errorMode  string

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "marbles",
	Short: "Derive the size, position and opacity variables of marble shapes",
	Long: `marbles reads the elements with class "shape" and writes on each of them
the CSS custom properties --width, --height, --pos-x, --pos-y and --opacity,
computed from their data-size, data-position-x, data-position-y and opacity
attributes.

It works on HTML files (apply, plan, preview) or on live pages in Chrome (live).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return loadConfig(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (.yaml, .toml or .json)")
	rootCmd.PersistentFlags().StringVar(&selector, "selector", "", "CSS selector of the shape elements (default \".shape\")")
	rootCmd.PersistentFlags().StringVar(&errorMode, "error-mode", "", "What to do with shapes without size: warn, ignore or strict (default \"warn\")")

	rootCmd.AddCommand(applyCmd, planCmd, previewCmd, liveCmd)
}

// loadConfig reads the configuration file and applies the flags on top of it.
func loadConfig(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("selector") {
		cfg.Selector = selector
	}
	if flags.Changed("error-mode") {
		if cfg.ErrorMode, err = shape.ParseErrorMode(errorMode); err != nil {
			return err
		}
	}
	return cfg.Validate()
}

// docOptions builds the options of a document pass from the configuration.
func docOptions() shapedoc.Options {
	return shapedoc.Options{
		Selector: cfg.Selector,
		Options:  shapeOptions(),
	}
}

func shapeOptions() shape.Options {
	return shape.Options{
		Names:     cfg.Attributes.Names(),
		ErrorMode: cfg.ErrorMode,
		Logger:    logger,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
