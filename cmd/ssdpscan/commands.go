package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/muurk/ssdpscan/internal/config"
	"github.com/muurk/ssdpscan/internal/description"
	"github.com/muurk/ssdpscan/internal/discovery"
	"github.com/muurk/ssdpscan/internal/logging"
	"github.com/muurk/ssdpscan/internal/ssdp"
	"github.com/muurk/ssdpscan/internal/tui"
	"github.com/muurk/ssdpscan/internal/ui"
)

// Command flags
var (
	configPath     string
	logLevel       string
	timeoutSeconds int
	interfaceNames []string
	mx             uint
	outputFormat   string
	strictParse    bool
	workers        int
	describeRaw    bool
	forceInit      bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default: platform config dir)")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides SSDPSCAN_LOG_LEVEL")
	flags.IntVar(&timeoutSeconds, "timeout", 0, "Listen time per adapter in seconds (minimum 2)")
	flags.StringSliceVarP(&interfaceNames, "interface", "i", nil, "Search only on these adapters (repeatable)")
	flags.UintVar(&mx, "mx", 0, "Maximum reply delay advertised in the M-SEARCH (1-5)")
	flags.StringVar(&outputFormat, "format", formatDetailed, "Output format (detailed, compact, json)")
	flags.BoolVar(&strictParse, "strict", false, "Treat descriptions without Scalar Web API services as errors")
	flags.IntVar(&workers, "workers", 0, "Concurrent description fetches")

	rootCmd.AddCommand(camerasCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(interfacesCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig reads the config file, applies flag overrides and initializes
// logging
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("timeout") {
		cfg.Search.TimeoutSeconds = timeoutSeconds
	}
	if flags.Changed("interface") {
		cfg.Search.Interfaces = interfaceNames
	}
	if flags.Changed("mx") {
		cfg.Search.MX = mx
	}
	if flags.Changed("strict") {
		cfg.Search.StrictParse = strictParse
	}
	if flags.Changed("workers") {
		cfg.Search.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if err := validateFormat(outputFormat); err != nil {
		return nil, err
	}
	if err := setupLogging(cfg.LogLevel); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setupLogging applies the flag or config log level, falling back to
// SSDPSCAN_LOG_LEVEL when neither sets one
func setupLogging(level string) error {
	if level == "" {
		return logging.InitializeFromEnv()
	}
	return logging.Initialize(level)
}

// camerasCmd searches for Scalar Web API cameras
var camerasCmd = &cobra.Command{
	Use:   "cameras",
	Short: "Search for Scalar Web API cameras",
	Long: `Search for Sony cameras that expose the Scalar Web API.

Sends an M-SEARCH for urn:schemas-sony-com:service:ScalarWebAPI:1 on every
active adapter, fetches each responder's description document and prints
the cameras found with their service endpoints. A camera that answers on
several adapters is listed once.`,
	Example: `  # Search for 5 seconds (default)
  ssdpscan cameras

  # Search only on the Wi-Fi adapter
  ssdpscan cameras --interface wlan0

  # JSON output for scripting
  ssdpscan cameras --format json`,
	Args: cobra.NoArgs,
	RunE: runCameras,
}

func runCameras(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	req := cfg.SearchRequest(ssdp.ScalarWebAPIService)
	coord := discovery.New(cfg.ToDiscoveryConfig())

	if outputFormat == formatDetailed {
		p := ui.NewPrinter(cmd.OutOrStdout())
		p.PrintHeader("Camera Search", "ssdpscan cameras", []ui.Field{
			{Key: "Target", Value: req.ST},
			{Key: "Timeout", Value: coord.EffectiveTimeout(req.Timeout).String()},
		})
	}

	result, err := coord.Collect(cmd.Context(), req)
	if err != nil {
		return err
	}
	records := cameraRecords(result)

	out := cmd.OutOrStdout()
	switch outputFormat {
	case formatJSON:
		if records == nil {
			records = []*cameraRecord{}
		}
		return writeJSON(out, records)

	case formatCompact:
		for _, rec := range records {
			fmt.Fprintln(out, formatCameraCompact(rec))
		}
		return nil
	}

	p := ui.NewPrinter(out)
	if len(records) == 0 {
		p.PrintWarning("No cameras found", []ui.Field{
			{Key: "Adapters", Value: adapterNames(result.Adapters)},
			{Key: "Descriptions", Value: strconv.Itoa(len(result.Locations()))},
		}, []string{
			"Ensure the camera is in remote control mode",
			"Verify you're connected to the camera's Wi-Fi network",
			"Try increasing --timeout for slower networks",
			"Use 'ssdpscan search' to list every UPnP device that answers",
		})
		return nil
	}

	for i, rec := range records {
		p.PrintDevice(cameraCard(i, rec))
	}
	p.PrintSuccess(fmt.Sprintf("%d camera(s) found", len(records)), []ui.Field{
		{Key: "Adapters", Value: adapterNames(result.Adapters)},
		{Key: "Elapsed", Value: result.Elapsed.Round(time.Millisecond).String()},
		{Key: "Cached", Value: strconv.Itoa(coord.CacheLen())},
	})
	return nil
}

// searchCmd runs a generic UPnP search
var searchCmd = &cobra.Command{
	Use:   "search [st]",
	Short: "Search for UPnP devices",
	Long: `Search for UPnP devices matching a search target (ST).

Without an argument the search target comes from search.target in the
config file (default: ssdp:all). Every description document obtained is
listed; those that describe a Scalar Web API camera are marked.`,
	Example: `  # Every device that answers
  ssdpscan search

  # Media renderers only
  ssdpscan search urn:schemas-upnp-org:device:MediaRenderer:1`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var st string
	if len(args) == 1 {
		st = args[0]
	}
	req := cfg.SearchRequest(st)
	coord := discovery.New(cfg.ToDiscoveryConfig())

	if outputFormat == formatDetailed {
		ui.NewPrinter(cmd.OutOrStdout()).PrintHeader("UPnP Search", "ssdpscan search", []ui.Field{
			{Key: "Target", Value: req.ST},
			{Key: "Timeout", Value: coord.EffectiveTimeout(req.Timeout).String()},
		})
	}

	result, err := coord.Collect(cmd.Context(), req)
	if err != nil {
		return err
	}
	records := descriptionRecords(result)

	out := cmd.OutOrStdout()
	switch outputFormat {
	case formatJSON:
		if records == nil {
			records = []*descriptionRecord{}
		}
		return writeJSON(out, records)

	case formatCompact:
		for _, rec := range records {
			fmt.Fprintln(out, formatDescriptionCompact(rec))
		}
		return nil
	}

	p := ui.NewPrinter(out)
	if len(records) == 0 {
		p.PrintWarning("No devices answered", []ui.Field{
			{Key: "Adapters", Value: adapterNames(result.Adapters)},
		}, []string{
			"Check that your firewall allows UDP replies from the LAN",
			"Try increasing --timeout for slower networks",
		})
		return nil
	}

	for i, rec := range records {
		line := fmt.Sprintf("%d. %s", i+1, rec.Location)
		if rec.ScalarUDN != "" {
			line += "  [Scalar Web API " + rec.ScalarUDN + "]"
		}
		p.Println(line)
		p.Println(fmt.Sprintf("   From: %s  Via: %v  Size: %d bytes", rec.Remote, rec.LocalAddrs, rec.Size))
	}
	p.Newline()
	p.PrintSuccess(fmt.Sprintf("%d description(s) obtained", len(records)), []ui.Field{
		{Key: "Cameras", Value: strconv.Itoa(len(result.UniqueDevices()))},
		{Key: "Elapsed", Value: result.Elapsed.Round(time.Millisecond).String()},
	})
	return nil
}

// describeCmd fetches and parses one description document
var describeCmd = &cobra.Command{
	Use:   "describe <url>",
	Short: "Fetch and parse a device description",
	Long: `Fetch a UPnP description document and print the Scalar Web API device
it describes.

Useful when a camera's LOCATION URL is already known, or to check why a
device is not listed by 'ssdpscan cameras'. With --strict a document that
is not a Scalar Web API description is reported as an error.`,
	Example: `  ssdpscan describe http://192.168.122.1:64321/DmsRmtDesc.xml

  # Print the raw XML
  ssdpscan describe http://192.168.122.1:64321/DmsRmtDesc.xml --raw`,
	Args: cobra.ExactArgs(1),
	RunE: runDescribe,
}

func init() {
	describeCmd.Flags().BoolVar(&describeRaw, "raw", false, "Print the raw description document")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	location := args[0]

	doc, err := cfg.NewFetcher().Fetch(cmd.Context(), location)
	if err != nil {
		return discovery.NewFetchError(location, err)
	}

	out := cmd.OutOrStdout()
	if describeRaw {
		_, err := out.Write(doc)
		return err
	}

	dev, err := description.Parser{Strict: cfg.Search.StrictParse}.Parse(doc)
	if err != nil {
		return discovery.NewParseError(location, err)
	}

	switch outputFormat {
	case formatJSON:
		if dev == nil {
			return writeJSON(out, nil)
		}
		return writeJSON(out, dev)
	case formatCompact:
		if dev != nil {
			fmt.Fprintln(out, formatCameraCompact(&cameraRecord{Device: dev, Location: location}))
		}
		return nil
	}

	p := ui.NewPrinter(out)
	if dev == nil {
		p.PrintWarning("Not a Scalar Web API device", []ui.Field{
			{Key: "Location", Value: location},
			{Key: "Size", Value: fmt.Sprintf("%d bytes", len(doc))},
		}, []string{"Use --raw to inspect the document", "Use --strict to see why it was rejected"})
		return nil
	}
	p.PrintDevice(&ui.DeviceCard{Device: dev, Location: location})
	return nil
}

// interfacesCmd lists active adapters
var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "List network adapters usable for SSDP",
	Long: `List the adapters a search runs on: interfaces that are up, support
multicast, are not loopback and carry an IPv4 address. Adapters excluded by
--interface or search.interfaces are shown as not selected.`,
	Args: cobra.NoArgs,
	RunE: runInterfaces,
}

func runInterfaces(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	adapters, err := ssdp.SystemInterfaces{}.ActiveAdapters()
	if err != nil {
		return discovery.NewNoAdaptersError(err)
	}
	records := adapterRecords(adapters, cfg.Search.Interfaces)

	out := cmd.OutOrStdout()
	switch outputFormat {
	case formatJSON:
		return writeJSON(out, records)
	case formatCompact:
		for _, r := range records {
			fmt.Fprintf(out, "%s\t%s\t%t\n", r.Name, r.Addr, r.Selected)
		}
		return nil
	}

	p := ui.NewPrinter(out)
	if len(records) == 0 {
		p.PrintError("No usable adapters", discovery.NewNoAdaptersError(nil), []string{
			"Check that Wi-Fi or Ethernet is connected",
		})
		return nil
	}
	for _, r := range records {
		mark := " "
		if r.Selected {
			mark = ui.SuccessMarker
		}
		p.Println(fmt.Sprintf(" %s %-12s %-15s index %d, mtu %d", mark, r.Name, r.Addr, r.Index, r.MTU))
	}
	return nil
}

// browseCmd launches the interactive browser
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse cameras interactively",
	Long: `Launch a full-screen browser that lists cameras as they are discovered.

Select a camera to see its service endpoints, rescan at any time, switch
between cameras and all UPnP devices, or enter a custom search target.

This is the default command when stdout is a terminal.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !ui.IsTerminal() {
		return errors.New("browse requires a terminal; use 'ssdpscan cameras' instead")
	}

	req := cfg.SearchRequest(ssdp.ScalarWebAPIService)
	coord := discovery.New(cfg.ToDiscoveryConfig())
	if _, err := coord.Adapters(req); err != nil {
		return err
	}

	program := tea.NewProgram(tui.NewBrowseModel(coord, req),
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("browser failed: %w", err)
	}
	return nil
}

// configCmd groups config file commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}

		if _, err := os.Stat(path); err == nil && !forceInit {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		if err := config.NewConfig().SaveFile(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}
