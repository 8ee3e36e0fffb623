// Package tui implements the interactive browser of the ssdpscan CLI.
//
// The browser is a full-screen Bubble Tea program that runs an SSDP search
// and streams every camera into a list as soon as its description document
// has been resolved, rather than waiting for the listen window to close.
//
// # Architecture
//
// BrowseModel drives a Searcher (normally *discovery.Coordinator). Observer
// callbacks run on the coordinator's worker goroutines, so they only forward
// events into a buffered channel; a waitForEvent command reads one event at a
// time and hands it to Update. Every search carries a generation number and
// messages from a superseded search are dropped.
//
// Devices are merged by UDN: a camera that answers on two adapters is listed
// once, with both local addresses.
//
// # Framework Components
//
//   - bubbles/list: device cards with filtering
//   - bubbles/spinner and bubbles/progress: listen-window progress
//   - bubbles/viewport: scrolling endpoint details
//   - bubbles/textinput: custom search target entry
//   - bubbles/help: context-aware key help
//   - lipgloss: styling and layout
//
// # Key Bindings
//
//   - List: ↑/↓ navigate, enter endpoints, r rescan, c clear cache and
//     rescan, a toggle cameras/all devices, s custom search target, q quit
//   - Details: ↑/↓ scroll, esc back, q quit
//   - Target entry: enter search, esc cancel
//
// # Usage Example
//
//	coord := discovery.New(discovery.Config{})
//	model := tui.NewBrowseModel(coord, discovery.Request{Timeout: 5 * time.Second})
//	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
//	    return err
//	}
package tui
