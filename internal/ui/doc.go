// Package ui renders the non-interactive output of the ssdpscan CLI.
//
// Commands such as "cameras", "search" and "describe" print their results
// once and exit. This package styles that output with Lipgloss so it matches
// the interactive browser in package tui, without requiring a terminal that
// supports a full-screen program.
//
// # Components
//
//   - Header: command banner showing the operation and its parameters
//   - Result: success, warning and failure boxes with details and
//     troubleshooting tips
//   - DeviceCard: one discovered camera with its service endpoints
//
// A Printer ties these together and writes to any io.Writer:
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintHeader("Camera Search", "ssdpscan cameras", []ui.Field{
//	    {Key: "Timeout", Value: "5s"},
//	})
//	for _, dev := range devices {
//	    p.PrintDevice(dev, locals[dev.UDN])
//	}
//
// # Logging Integration
//
// Logging is controlled via the SSDPSCAN_LOG_LEVEL environment variable or
// the --log-level flag. When neither is set zap logging is silent, so the
// curated output here is displayed cleanly.
package ui
