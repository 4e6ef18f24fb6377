package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/benoitkugler/marbles/shapelive"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var liveCmd = &cobra.Command{
	Use:   "live <url>",
	Short: "Style the shapes of a page opened in Chrome",
	Long: `Opens the page in Chrome (connecting to browser.debugger_url when set,
launching browser.bin otherwise), writes the shape variables on its elements
and prints them.`,
	Args: cobra.ExactArgs(1),
	RunE: runLive,
}

func runLive(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := shapelive.Open(ctx, shapelive.Config{
		DebuggerURL: cfg.Browser.DebuggerURL,
		Bin:         cfg.Browser.Bin,
		Headless:    cfg.Browser.Headless,
		Timeout:     cfg.Browser.NavigationTimeout(),
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("closing browser", zap.Error(err))
		}
	}()

	entries, err := session.Initialize(ctx, args[0], shapelive.Options{
		Selector: cfg.Selector,
		Options:  shapeOptions(),
	})
	if err != nil {
		return err
	}
	logger.Info("shapes styled", zap.String("url", args[0]), zap.Int("shapes", len(entries)))
	_, err = fmt.Fprintln(cmd.OutOrStdout(), planTable(entries))
	return err
}
