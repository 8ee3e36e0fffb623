// Package config provides user configuration management for ssdpscan.
//
// This package manages a YAML configuration file holding search defaults
// (search target, listen timeout, MX, adapter selection, worker count, parse
// policy), HTTP settings for description fetches and the log level. Command
// line flags override values from the file. The configuration follows
// OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/ssdpscan/config.yaml or $HOME/.config/ssdpscan/config.yaml
//   - macOS: $HOME/.config/ssdpscan/config.yaml
//   - Windows: %LOCALAPPDATA%\ssdpscan\config.yaml
//
// A missing file is not an error; Load returns the defaults.
//
// # Example File
//
//	version: 1
//	log_level: info
//	search:
//	  target: urn:schemas-sony-com:service:ScalarWebAPI:1
//	  timeout_seconds: 5
//	  mx: 1
//	  interfaces: [wlan0]
//	  workers: 4
//	  strict_parse: false
//	http:
//	  timeout_seconds: 10
//
// Discovered devices are never written to this file.
//
// # Thread Safety
//
// File operations are protected by a mutex to ensure atomic writes.
package config
