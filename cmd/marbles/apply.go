package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/benoitkugler/marbles/shapedoc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	applyOutput string
	applyWatch  bool
)

var applyCmd = &cobra.Command{
	Use:   "apply <input.html>",
	Short: "Write the shape variables into an HTML file",
	Long: `Runs the initializer on the input document and writes the result to the
output file, or to stdout. With --watch, the input is processed again each
time it is written, until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVarP(&applyOutput, "output", "o", "", "Output file (stdout if empty)")
	applyCmd.Flags().BoolVarP(&applyWatch, "watch", "w", false, "Process the input again on every change")
}

func runApply(cmd *cobra.Command, args []string) error {
	input := args[0]
	if !applyWatch {
		return applyFile(cmd, input, applyOutput)
	}
	if applyOutput == "" {
		return errors.New("--watch requires --output")
	}
	if sameFile(input, applyOutput) {
		return errors.New("--watch needs an output different from the input")
	}
	if err := applyFile(cmd, input, applyOutput); err != nil {
		logger.Error("apply failed", zap.String("input", input), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info("watching", zap.String("input", input))
	return watchFile(ctx, input, func() error {
		return applyFile(cmd, input, applyOutput)
	})
}

// applyFile runs one full pass from input to output.
func applyFile(cmd *cobra.Command, input, output string) error {
	doc, err := shapedoc.ReadFile(input)
	if err != nil {
		return err
	}
	plan, err := shapedoc.Initialize(doc, docOptions())
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err = doc.Render(&buf); err != nil {
		return err
	}
	logger.Info("shapes styled", zap.String("input", input), zap.Int("shapes", len(plan)))
	if output == "" {
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err = os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// commandContext returns the context of cmd, which is nil when
// the command is not started by Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
