package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/muurk/aquaclean/internal/client"
	"github.com/muurk/aquaclean/internal/config"
	"github.com/muurk/aquaclean/internal/discovery"
	"github.com/muurk/aquaclean/internal/protocol"
	"github.com/muurk/aquaclean/internal/setpoints"
	"github.com/muurk/aquaclean/internal/transport"
	"github.com/muurk/aquaclean/internal/tui"
)

// Command flags
var (
	bridgeAddr      string
	applianceSerial string
	scanTimeout     int
	outputFormat    string
	noVerify        bool
	retries         int
	safeApply       bool

	setTemperature int
	setIntensity   int
	setPosition    int
	setProfile     int

	watchInterval int
)

func init() {
	// Common flags for appliance commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&bridgeAddr, "bridge", "", "Bridge address host:port (skips discovery)")
	rootCmd.PersistentFlags().StringVar(&applianceSerial, "serial", "", "Appliance serial to select among discovered bridges")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json)")

	// Add subcommands directly to root
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(commandCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(probeCmd)
}

// scanCmd discovers bridges on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for AquaClean bridges on the network",
	Long: `Scan for AquaClean bridges using mDNS/DNS-SD discovery.

This command listens for mDNS broadcasts from bridges and displays all
discovered bridges with their addresses, appliance serials, and metadata.`,
	Example: `  # Scan for 10 seconds (default)
  aquaclean scan

  # Quick 3-second scan
  aquaclean scan --timeout 3

  # Longer scan for networks with many bridges
  aquaclean scan --timeout 30`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for AquaClean bridges (timeout: %ds)...\n\n", scanTimeout)

	bridges, err := discovery.ScanForBridges(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(bridges) == 0 {
		fmt.Println("No bridges found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the bridge is powered on and connected to your network")
		fmt.Println("  - Check that the appliance is paired with the bridge")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use --bridge flag to specify host:port manually if discovery fails")
		return nil
	}

	fmt.Printf("Found %d bridge(s):\n\n", len(bridges))

	for i, bridge := range bridges {
		fmt.Printf("%d. %s\n", i+1, bridge.Hostname)
		fmt.Printf("   Serial:  %s\n", bridge.Serial)
		fmt.Printf("   Address: %s\n", bridge.Addr())
		if bridge.ApplianceMAC != "" {
			fmt.Printf("   MAC:     %s\n", bridge.ApplianceMAC)
		}
		if len(bridge.Metadata) > 0 {
			fmt.Printf("   Metadata: %v\n", bridge.Metadata)
		}
		fmt.Println()
	}

	fmt.Println("Use 'aquaclean status --bridge <host:port>' to view appliance status")
	fmt.Println("Use 'aquaclean watch' for the interactive monitor")

	return nil
}

// infoCmd displays appliance identification
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show appliance identification",
	Long: `Query the appliance for its identification block.

This command connects through the bridge and reads the SAP article number,
serial number, firmware version, and description of the appliance.`,
	Example: `  # With auto-discovery
  aquaclean info

  # Against a specific bridge
  aquaclean info --bridge 192.168.1.50:8080`,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	c, cleanup, err := connectAppliance()
	if err != nil {
		return err
	}
	defer cleanup()

	ident, err := c.Identify(context.Background())
	if err != nil {
		return fmt.Errorf("identification failed: %w", err)
	}

	rememberAppliance(ident.SerialNumber)

	switch outputFormat {
	case "json":
		data, err := json.MarshalIndent(ident, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	default:
		fmt.Println("=== Appliance Identification ===")
		fmt.Printf("SAP Number:  %s\n", ident.SAPNumber)
		fmt.Printf("Serial:      %s\n", ident.SerialNumber)
		fmt.Printf("Firmware:    %s\n", ident.FirmwareVersion)
		if ident.Description != "" {
			fmt.Printf("Description: %s\n", ident.Description)
		}
	}

	return nil
}

// statusCmd displays the current appliance status
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show appliance status",
	Long: `Display the current status of the appliance.

This command requests a status snapshot from the appliance and shows the
running showers, dryer, user presence, and maintenance flags, plus the
comfort setpoints read back from their status data points.`,
	Example: `  # Show status with auto-discovery
  aquaclean status

  # Status of a specific bridge
  aquaclean status --bridge 192.168.1.50:8080

  # Compact output format
  aquaclean status --format compact

  # JSON output for scripting
  aquaclean status --format json`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	c, cleanup, err := connectAppliance()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	params, err := c.ReadStatus(ctx)
	if err != nil {
		return fmt.Errorf("status read failed: %w", err)
	}

	current, read, err := setpoints.NewApplier(c).ReadCurrent(ctx)
	if err != nil {
		return fmt.Errorf("setpoint read failed: %w", err)
	}

	switch outputFormat {
	case "json":
		out := struct {
			Status    protocol.SystemParameters `json:"status"`
			Setpoints setpoints.Setpoints       `json:"setpoints"`
		}{params, current}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	case "compact":
		fmt.Printf("Showers: rear=%s front=%s dryer=%s\n",
			onOff(params.AnalShowerRunning), onOff(params.LadyShowerRunning), onOff(params.DryerRunning))
		fmt.Printf("Seat occupied: %s\n", onOff(params.UserIsSitting))
		fmt.Printf("Descaling needed: %s, maintenance needed: %s\n",
			onOff(params.DescalingNeeded), onOff(params.MaintenanceNeeded))
		fmt.Print(current.FormatCompact())
	default:
		fmt.Println("=== Appliance Status ===")
		fmt.Printf("Rear Shower:        %s\n", onOff(params.AnalShowerRunning))
		fmt.Printf("Front Shower:       %s\n", onOff(params.LadyShowerRunning))
		fmt.Printf("Dryer:              %s\n", onOff(params.DryerRunning))
		fmt.Printf("Seat Occupied:      %s\n", onOff(params.UserIsSitting))
		fmt.Printf("Descaling Needed:   %s\n", onOff(params.DescalingNeeded))
		fmt.Printf("Maintenance Needed: %s\n", onOff(params.MaintenanceNeeded))
		fmt.Println(current.FormatDetailed())
		if notRead := missingFields(read); len(notRead) > 0 {
			fmt.Printf("(not reported by this firmware: %s)\n", strings.Join(notRead, ", "))
		}
	}

	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func missingFields(read map[string]bool) []string {
	all := []string{"water temperature", "spray intensity", "spray position", "user profile"}
	var missing []string
	for _, f := range all {
		if !read[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

// watchCmd launches the interactive status monitor
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Launch interactive status monitor",
	Long: `Launch an interactive TUI that polls the appliance status.

The monitor shows live shower, dryer, and maintenance state, marks
optimistic toggles as pending until the next status read confirms them,
and binds keys for the common toggles.

This is the recommended way to observe the appliance for most users.`,
	Example: `  # Launch monitor with auto-discovery
  aquaclean watch
  # Or simply (watch is default):
  aquaclean

  # Monitor a specific bridge, polling every 2 seconds
  aquaclean watch --bridge 192.168.1.50:8080 --interval 2`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchInterval, "interval", 5, "Status poll interval in seconds")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if !tui.IsInteractive() {
		return fmt.Errorf("the monitor requires a terminal; use 'aquaclean status' for plain output")
	}

	c, cleanup, err := connectAppliance()
	if err != nil {
		return err
	}
	defer cleanup()

	nickname := ""
	if registry, err := config.LoadRegistry(); err == nil && applianceSerial != "" {
		if appliance := registry.GetAppliance(applianceSerial); appliance != nil {
			nickname = appliance.Nickname
		}
	}

	model := tui.NewWatchModel(c, nickname, time.Duration(watchInterval)*time.Second)
	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("monitor error: %w", err)
	}

	return nil
}

// toggleCmd flips one of the appliance's functions
var toggleCmd = &cobra.Command{
	Use:   "toggle <function>",
	Short: "Toggle an appliance function",
	Long: `Toggle one of the appliance's functions.

Functions: lid, rear-shower, front-shower, dryer, light, flush.
Flush is momentary rather than a toggle but is listed here for convenience.`,
	Example: `  # Open or close the lid
  aquaclean toggle lid

  # Start or stop the rear shower
  aquaclean toggle rear-shower`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"lid", "rear-shower", "front-shower", "dryer", "light", "flush"},
	RunE:      runToggle,
}

func runToggle(cmd *cobra.Command, args []string) error {
	c, cleanup, err := connectAppliance()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	switch args[0] {
	case "lid":
		err = c.ToggleLid(ctx)
	case "rear-shower":
		err = c.ToggleAnalShower(ctx)
	case "front-shower":
		err = c.ToggleLadyShower(ctx)
	case "dryer":
		err = c.ToggleDryer(ctx)
	case "light":
		err = c.ToggleOrientationLight(ctx)
	case "flush":
		err = c.TriggerFlush(ctx)
	default:
		return fmt.Errorf("unknown function %q (lid, rear-shower, front-shower, dryer, light, flush)", args[0])
	}
	if err != nil {
		return fmt.Errorf("toggle failed: %w", err)
	}

	fmt.Printf("✓ %s acknowledged\n", args[0])
	return nil
}

// commandCmd sends a named high-level command
var commandCmd = &cobra.Command{
	Use:   "command <name>",
	Short: "Send a high-level command to the appliance",
	Long: `Send one of the appliance's fire-and-forget commands by name.

Run without arguments to list the available command names.`,
	Example: `  # Toggle the lid
  aquaclean command toggle-lid

  # Start the rear shower
  aquaclean command toggle-anal-shower

  # Flush manually
  aquaclean command trigger-flush`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCommand,
}

func runCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		names := protocol.CommandNames()
		sort.Strings(names)
		fmt.Println("Available commands:")
		for _, name := range names {
			fmt.Printf("  %s\n", name)
		}
		return nil
	}

	command, ok := protocol.CommandByName(args[0])
	if !ok {
		return fmt.Errorf("unknown command %q (run 'aquaclean command' for the list)", args[0])
	}

	c, cleanup, err := connectAppliance()
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Printf("Sending %s...\n", command)
	if err := c.SendCommand(context.Background(), command); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	fmt.Println("✓ Command acknowledged")
	return nil
}

// readCmd reads a single data point
var readCmd = &cobra.Command{
	Use:   "read <data-point>",
	Short: "Read a data point from the appliance",
	Long: `Read one data point, addressed by catalogue name or numeric id.

The value is decoded according to the catalogue's encoding for the point;
unknown points are shown as raw hex.`,
	Example: `  # Read by name
  aquaclean read shower_water_temperature_status

  # Read by numeric id
  aquaclean read 575`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func runRead(cmd *cobra.Command, args []string) error {
	dp, err := resolveDataPoint(args[0])
	if err != nil {
		return err
	}

	c, cleanup, err := connectAppliance()
	if err != nil {
		return err
	}
	defer cleanup()

	raw, err := c.ReadDataPoint(context.Background(), dp)
	if err != nil {
		return fmt.Errorf("read failed: %w", err)
	}

	value, err := protocol.ParseDataPointValue(dp, raw)
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	info, _ := dp.Lookup()
	label := info.Name
	if label == "" {
		label = fmt.Sprintf("data point %d", dp)
	}

	if outputFormat == "json" {
		out := map[string]interface{}{"point": label, "id": uint16(dp), "value": value, "raw": hex.EncodeToString(raw)}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("%s = %v (raw: % X)\n", label, value, raw)
	return nil
}

// writeCmd writes a single data point
var writeCmd = &cobra.Command{
	Use:   "write <data-point> <value>",
	Short: "Write a data point on the appliance",
	Long: `Write one data point, addressed by catalogue name or numeric id.

The value is a small decimal integer (sent as a single byte) or a hex
string prefixed with 0x for multi-byte values.`,
	Example: `  # Set the water temperature setpoint to 38
  aquaclean write set_shower_water_temperature 38

  # Raw multi-byte write
  aquaclean write 574 0x26000000`,
	Args: cobra.ExactArgs(2),
	RunE: runWrite,
}

func runWrite(cmd *cobra.Command, args []string) error {
	dp, err := resolveDataPoint(args[0])
	if err != nil {
		return err
	}

	value, err := parseValueArg(args[1])
	if err != nil {
		return err
	}

	c, cleanup, err := connectAppliance()
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := c.WriteDataPoint(context.Background(), dp, value); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}

	fmt.Println("✓ Write acknowledged")
	return nil
}

func resolveDataPoint(arg string) (protocol.DataPoint, error) {
	if dp, ok := protocol.DataPointByName(arg); ok {
		return dp, nil
	}
	id, err := strconv.ParseUint(arg, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("unknown data point %q (use a catalogue name or numeric id)", arg)
	}
	return protocol.DataPoint(id), nil
}

func parseValueArg(arg string) ([]byte, error) {
	if strings.HasPrefix(arg, "0x") || strings.HasPrefix(arg, "0X") {
		value, err := hex.DecodeString(arg[2:])
		if err != nil {
			return nil, fmt.Errorf("invalid hex value: %w", err)
		}
		return value, nil
	}
	n, err := strconv.ParseUint(arg, 10, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid value (use 0-255 or an 0x hex string): %w", err)
	}
	return []byte{byte(n)}, nil
}

// setCmd updates comfort setpoints with verification
var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Set comfort setpoints",
	Long: `Set one or more comfort setpoints and verify they were applied.

After writing, the corresponding status data points are read back and
compared against the requested values, with retries to ride out the
appliance's settling time. Points the firmware does not report are
skipped during verification.`,
	Example: `  # Set water temperature to 38°C
  aquaclean set --temperature 38

  # Set intensity and position together, rolling back on failure
  aquaclean set --intensity 4 --position 2 --safe

  # Fire and forget
  aquaclean set --profile 2 --no-verify`,
	RunE: runSet,
}

func init() {
	setCmd.Flags().IntVar(&setTemperature, "temperature", -1, "Water temperature in °C (34-40)")
	setCmd.Flags().IntVar(&setIntensity, "intensity", -1, "Spray intensity (1-5)")
	setCmd.Flags().IntVar(&setPosition, "position", -1, "Spray arm position (1-5)")
	setCmd.Flags().IntVar(&setProfile, "profile", -1, "Active user profile (1-4)")
	setCmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip setpoint verification after writing")
	setCmd.Flags().IntVar(&retries, "retries", 3, "Number of verification retries")
	setCmd.Flags().BoolVar(&safeApply, "safe", false, "Snapshot current setpoints and roll back if verification fails")
}

func runSet(cmd *cobra.Command, args []string) error {
	update := &setpoints.Update{}
	if setTemperature >= 0 {
		update.WaterTemperature = setpoints.Int(setTemperature)
	}
	if setIntensity >= 0 {
		update.SprayIntensity = setpoints.Int(setIntensity)
	}
	if setPosition >= 0 {
		update.SprayPosition = setpoints.Int(setPosition)
	}
	if setProfile >= 0 {
		update.UserProfile = setpoints.Int(setProfile)
	}

	if update.Empty() {
		return fmt.Errorf("nothing to set; pass at least one of --temperature, --intensity, --position, --profile")
	}

	if errs := setpoints.ValidateUpdate(update); len(errs) > 0 {
		for _, e := range errs {
			fmt.Printf("  - %v\n", e)
		}
		return fmt.Errorf("invalid setpoints")
	}

	c, cleanup, err := connectAppliance()
	if err != nil {
		return err
	}
	defer cleanup()

	applier := setpoints.NewApplier(c)
	ctx := context.Background()

	fmt.Print(update.FormatChanges())
	fmt.Println()

	if noVerify {
		if err := applier.Apply(ctx, update); err != nil {
			return fmt.Errorf("update failed: %w", err)
		}
		fmt.Println("✓ Setpoints written successfully (not verified)")
		return nil
	}

	opts := setpoints.DefaultVerificationOptions()
	opts.MaxRetries = retries

	if safeApply {
		result := setpoints.NewRollbackManager(applier).SafeApply(ctx, update, opts, "cli set")
		fmt.Println(result.String())
		if !result.Success {
			return fmt.Errorf("setpoint update failed")
		}
		return nil
	}

	result := applier.ApplyAndVerify(ctx, update, opts)
	if !result.Success {
		fmt.Printf("✗ Update failed: %v\n", result.Error)
		if len(result.Mismatches) > 0 {
			fmt.Println("\nMismatches detected:")
			for _, mismatch := range result.Mismatches {
				fmt.Printf("  - %s\n", mismatch)
			}
		}
		return fmt.Errorf("setpoint verification failed after %d attempts", result.Attempts)
	}

	fmt.Printf("✓ Setpoints updated and verified successfully (%d attempt(s))\n", result.Attempts)
	if len(result.Skipped) > 0 {
		fmt.Printf("  (not verifiable on this firmware: %s)\n", strings.Join(result.Skipped, ", "))
	}

	return nil
}

// probeCmd detects which optional features the firmware supports
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe the appliance's optional features",
	Long: `Probe which optional features this appliance model supports.

Each feature is tested by reading a characteristic data point; a timeout
means the firmware does not implement the feature. The result is stored
in the local registry for later sessions.`,
	Example: `  # Probe with auto-discovery
  aquaclean probe`,
	RunE: runProbe,
}

func runProbe(cmd *cobra.Command, args []string) error {
	c, cleanup, err := connectAppliance()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()

	ident, err := c.Identify(ctx)
	if err != nil {
		return fmt.Errorf("identification failed: %w", err)
	}

	fmt.Printf("Probing features of %s (%s)...\n\n", ident.Description, ident.SerialNumber)

	features, err := c.ProbeFeatures(ctx)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}

	names := make([]string, 0, len(features))
	for name := range features {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		marker := "✗"
		if features[name] {
			marker = "✓"
		}
		fmt.Printf("  %s %s\n", marker, name)
	}

	if registry, err := config.LoadRegistry(); err == nil {
		registry.SetApplianceFeatures(ident.SerialNumber, features)
		if err := config.SaveGlobal(); err != nil {
			fmt.Printf("\nWarning: could not save feature map: %v\n", err)
		} else {
			fmt.Println("\nFeature map saved to the local registry.")
		}
	}

	return nil
}

// connectAppliance resolves the bridge address, dials it, and wraps the
// link in a protocol client. The returned cleanup closes the link.
func connectAppliance() (*client.Client, func(), error) {
	addr, err := getBridgeAddr()
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	link, err := transport.DialBridge(ctx, addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to bridge at %s: %w", addr, err)
	}

	var opts []client.Option
	if registry, err := config.LoadRegistry(); err == nil && registry.Preferences.ResponseTimeout > 0 {
		opts = append(opts, client.WithTimeout(time.Duration(registry.Preferences.ResponseTimeout)*time.Second))
	}

	c := client.New(link, opts...)
	return c, func() { c.Close() }, nil
}

// getBridgeAddr resolves the bridge address from the --bridge flag, the
// local registry, or mDNS discovery, in that order.
func getBridgeAddr() (string, error) {
	if bridgeAddr != "" {
		return bridgeAddr, nil
	}

	if applianceSerial != "" {
		// A known appliance may have a remembered bridge address.
		if registry, err := config.LoadRegistry(); err == nil {
			if appliance := registry.GetAppliance(applianceSerial); appliance != nil && appliance.BridgeAddr != "" {
				return appliance.BridgeAddr, nil
			}
		}

		fmt.Printf("Looking for the bridge of appliance %s...\n", applianceSerial)
		bridge, err := discovery.FindBridge(applianceSerial)
		if err != nil {
			return "", fmt.Errorf("discovery failed: %w", err)
		}
		rememberBridge(bridge)
		return bridge.Addr(), nil
	}

	// Try discovery
	fmt.Println("No bridge specified, attempting auto-discovery...")
	bridges, err := discovery.ScanForBridges(5 * time.Second)
	if err != nil {
		return "", fmt.Errorf("discovery failed: %w", err)
	}

	if len(bridges) == 0 {
		return "", fmt.Errorf("no bridges found. Use --bridge flag to specify host:port manually")
	}

	if len(bridges) > 1 {
		fmt.Printf("Found %d bridges:\n", len(bridges))
		for i, bridge := range bridges {
			fmt.Printf("%d. %s (%s)\n", i+1, bridge.Serial, bridge.Addr())
		}
		return "", fmt.Errorf("multiple bridges found. Use --bridge or --serial to specify which one")
	}

	// Exactly one bridge found
	bridge := bridges[0]
	fmt.Printf("Found bridge: %s (%s)\n\n", bridge.Serial, bridge.Addr())
	rememberBridge(bridge)
	return bridge.Addr(), nil
}

// rememberBridge records a discovered bridge in the local registry.
func rememberBridge(bridge *discovery.Bridge) {
	if bridge.Serial == "" {
		return
	}
	registry, err := config.LoadRegistry()
	if err != nil {
		return
	}
	registry.UpdateApplianceLastSeen(bridge.Serial, bridge.Addr())
	_ = config.SaveGlobal()
}

// rememberAppliance refreshes the last-seen record after a successful
// identification.
func rememberAppliance(serial string) {
	if serial == "" {
		return
	}
	registry, err := config.LoadRegistry()
	if err != nil {
		return
	}
	registry.EnsureAppliance(serial)
	if err := config.SaveGlobal(); err == nil && applianceSerial == "" {
		applianceSerial = serial
	}
}
