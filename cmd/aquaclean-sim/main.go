// Aquaclean-sim is a simulated AquaClean bridge for development and testing.
//
// It serves the bridge's WebSocket endpoint backed by an in-memory appliance
// model, so the aquaclean utility and other clients can be exercised without
// hardware. With --announce the simulator registers itself over mDNS and is
// found by normal bridge discovery.
//
// Usage:
//
//	aquaclean-sim serve [flags]
//
// See 'aquaclean-sim serve --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/aquaclean/internal/discovery"
	"github.com/muurk/aquaclean/internal/protocol"
	"github.com/muurk/aquaclean/internal/sim"
	"github.com/muurk/aquaclean/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "aquaclean-sim",
	Short: "AquaClean Bridge Simulator",
	Long: `A simulated AquaClean bridge with an in-memory appliance model.

The simulator answers identification, status, command, and data-point
requests the way a real appliance does, including staying silent on data
points the modelled firmware does not implement.

Note: For talking to a real appliance, use the 'aquaclean' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	host        string
	port        int
	serial      string
	mac         string
	announce    bool
	logLevel    string
	description string
	noProfile   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bridge simulator",
	Long: `Start the simulated bridge and accept client connections.

The appliance model starts with factory-default comfort settings and all
showers off. Toggles and setpoint writes mutate the model, so clients see
the same read-back behavior as against hardware.`,
	Example: `  # Start on the default bridge port
  aquaclean-sim serve

  # Announce over mDNS so 'aquaclean scan' finds it
  aquaclean-sim serve --announce --serial SN-00000042

  # Model a firmware without user profiles
  aquaclean-sim serve --no-profile`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "", "Listen hostname (empty = all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", discovery.DefaultPort, "Listen port")
	serveCmd.Flags().StringVar(&serial, "serial", "SN-00000042", "Appliance serial to announce")
	serveCmd.Flags().StringVar(&mac, "mac", "00:11:22:33:44:55", "Appliance MAC to announce")
	serveCmd.Flags().BoolVar(&announce, "announce", false, "Register the bridge service over mDNS")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&description, "description", "Mera Classic", "Appliance description string")
	serveCmd.Flags().BoolVar(&noProfile, "no-profile", false, "Model firmware without the user-profile data point")
}

func runServe(cmd *cobra.Command, args []string) error {
	appliance := sim.NewAppliance(sim.Identity{
		SAPNumber:    1234,
		SerialNumber: 42,
		Firmware:     [4]byte{4, 2, 1, 0},
		Description:  description,
	})
	if noProfile {
		appliance.RemovePoint(protocol.DpActiveUserProfile)
	}

	config := &sim.Config{
		Host:     host,
		Port:     port,
		Serial:   serial,
		MAC:      mac,
		Announce: announce,
		LogLevel: logLevel,
	}

	server, err := sim.New(config, appliance)
	if err != nil {
		return fmt.Errorf("failed to create simulator: %w", err)
	}

	return server.Start()
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("aquaclean-sim %s (commit: %s)\n", version.Version, version.Commit)
	},
}
