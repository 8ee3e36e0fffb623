package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/ssdpscan/internal/description"
)

// DeviceCard renders one discovered camera
type DeviceCard struct {
	Device *description.Device

	// Index is the 1-based position shown before the name; 0 hides it
	Index int

	// Location is the description URL the device was resolved from
	Location string

	// LocalAddrs are the local addresses the device answered on
	LocalAddrs []string

	Width int
}

// NewDeviceCard creates a card sized to the terminal
func NewDeviceCard(dev *description.Device) *DeviceCard {
	return &DeviceCard{Device: dev, Width: GetTerminalWidth()}
}

// Render returns the styled card as a string
func (c *DeviceCard) Render() string {
	width := c.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	name := c.Device.FriendlyName
	if name == "" {
		name = c.Device.ModelName
	}
	if c.Index > 0 {
		name = fmt.Sprintf("%d. %s", c.Index, name)
	}

	lines := []string{DeviceNameStyle.Render(name), ""}
	lines = append(lines, detailLine("Model", c.Device.ModelName))
	lines = append(lines, detailLine("UDN", c.Device.UDN))
	if c.Location != "" {
		lines = append(lines, detailLine("Location", c.Location))
	}
	if len(c.LocalAddrs) > 0 {
		lines = append(lines, detailLine("Seen via", strings.Join(c.LocalAddrs, ", ")))
	}

	lines = append(lines, "", RenderEndpoints(c.Device))

	return CardStyle(width).Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (c *DeviceCard) String() string {
	return c.Render()
}

// RenderEndpoints renders a device's service endpoints, one per line,
// ordered by service type
func RenderEndpoints(dev *description.Device) string {
	types := dev.ServiceTypes()
	if len(types) == 0 {
		return TroubleshootingItemStyle.Render("(no endpoints)")
	}

	lines := make([]string, 0, len(types))
	for _, st := range types {
		url, _ := dev.Endpoint(st)
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			ServiceTypeStyle.Render(st),
			EndpointStyle.Render(url),
		))
	}
	return strings.Join(lines, "\n")
}

func detailLine(key, value string) string {
	return ResultKeyStyle.Render(key+":") + " " + ResultValueStyle.Render(value)
}
