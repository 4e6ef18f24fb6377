package main

import (
	"errors"
	"fmt"
	"image/png"
	"os"

	"github.com/benoitkugler/marbles/shapedoc"
	"github.com/benoitkugler/marbles/shaperaster"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var previewOutput string

var previewCmd = &cobra.Command{
	Use:   "preview <input.html>",
	Short: "Draw the shapes of an HTML file into a PNG image",
	Long: `Draws each shape as a marble filling its position and size box, with its
opacity. Shapes whose values are not plain numbers are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "Output PNG file")
}

func previewOptions() (shaperaster.Options, error) {
	opts := shaperaster.Options{
		Width:   cfg.Preview.Width,
		Height:  cfg.Preview.Height,
		Padding: cfg.Preview.Padding,
		MaxSize: cfg.Preview.MaxSize,
		Logger:  logger,
	}
	var err error
	if cfg.Preview.Fill != "" {
		if opts.Fill, err = shaperaster.ParseColor(cfg.Preview.Fill); err != nil {
			return opts, err
		}
	}
	if cfg.Preview.Background != "" {
		if opts.Background, err = shaperaster.ParseColor(cfg.Preview.Background); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	if previewOutput == "" {
		return errors.New("--output is required")
	}
	opts, err := previewOptions()
	if err != nil {
		return err
	}
	doc, err := shapedoc.ReadFile(args[0])
	if err != nil {
		return err
	}
	plan, err := shapedoc.Resolve(doc, docOptions())
	if err != nil {
		return err
	}
	img, err := shaperaster.Raster(plan.Entries(), opts)
	if err != nil {
		return err
	}

	f, err := os.Create(previewOutput)
	if err != nil {
		return err
	}
	if err = png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err = f.Close(); err != nil {
		return err
	}
	logger.Info("preview written", zap.String("output", previewOutput),
		zap.Int("width", img.Bounds().Dx()), zap.Int("height", img.Bounds().Dy()))
	return nil
}
