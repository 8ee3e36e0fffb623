// Ssdpscan discovers Sony cameras that expose the Scalar Web API.
//
// It sends SSDP M-SEARCH requests on every active network adapter, fetches
// the UPnP description document of each device that answers, and lists the
// cameras together with their service endpoints. Generic UPnP searches are
// supported as well.
//
// Usage:
//
//	ssdpscan [command] [flags]
//
// Running without arguments launches the interactive browser when stdout is
// a terminal, and prints the cameras found otherwise.
// See 'ssdpscan --help' for available commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/muurk/ssdpscan/internal/discovery"
	"github.com/muurk/ssdpscan/internal/logging"
	"github.com/muurk/ssdpscan/internal/ui"
	"github.com/muurk/ssdpscan/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", discovery.ShortMessage(err))
		var serr *discovery.SearchError
		if errors.As(err, &serr) {
			fmt.Fprintf(os.Stderr, "\n%s\n", discovery.TroubleshootingHint(err))
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ssdpscan",
	Short: "Find Sony Scalar Web API cameras on the local network",
	Long: `A standalone utility for discovering Sony cameras over SSDP.

Searches every active network adapter, fetches each device's UPnP
description and lists the cameras that expose the Scalar Web API,
together with their service endpoints.

If no command is specified, the interactive browser launches when stdout
is a terminal; otherwise the cameras found are printed.`,
	Version:       version.Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ui.IsTerminal() {
			return runBrowse(cmd, args)
		}
		return runCameras(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ssdpscan %s\n", version.Full())
	},
}
