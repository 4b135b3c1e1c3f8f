// Aquaclean is a control utility for Geberit AquaClean shower toilets.
//
// It talks the appliance's framed serial protocol over a WebSocket bridge,
// and provides bridge discovery, status monitoring, direct commands, and
// comfort-setting management.
//
// Usage:
//
//	aquaclean [command] [flags]
//
// Running without arguments launches the interactive monitor.
// See 'aquaclean --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/aquaclean/internal/logging"
	"github.com/muurk/aquaclean/internal/version"
)

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging setup failed: %v\n", err)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "aquaclean",
	Short: "AquaClean Appliance Control Utility",
	Long: `A standalone utility for controlling Geberit AquaClean shower toilets.

Provides bridge discovery, live status monitoring, direct appliance
commands, and comfort-setting management over a WebSocket bridge.

If no command is specified, the interactive monitor will launch automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the monitor when no subcommand provided
		return runWatch(cmd, args)
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
		fmt.Printf("aquaclean %s (commit: %s)\n", version.Version, version.Commit)
	},
}
