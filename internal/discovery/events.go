package discovery

import (
	"net"
	"sync"
	"time"

	"github.com/muurk/ssdpscan/internal/description"
	"github.com/muurk/ssdpscan/internal/ssdp"
)

// DescriptionEvent reports a description document obtained for a reply,
// whether or not it describes a Scalar Web API device
type DescriptionEvent struct {
	// Location is the URL from the reply's LOCATION header
	Location string

	// LocalAddr is the local address the reply arrived on
	LocalAddr net.IP

	// RemoteAddr is the device that sent the reply
	RemoteAddr net.Addr

	// Adapter is the adapter whose session received the reply
	Adapter ssdp.Adapter

	// Document is the raw XML; it is shared with the cache and must not be modified
	Document []byte
}

// DeviceEvent reports a Scalar Web API device
type DeviceEvent struct {
	Location   string
	LocalAddr  net.IP
	RemoteAddr net.Addr
	Adapter    ssdp.Adapter
	Device     *description.Device
}

// Observer receives the events of one search. Any field may be nil.
type Observer struct {
	OnDescription func(DescriptionEvent)
	OnDevice      func(DeviceEvent)

	// OnFinished is called exactly once, after every session has closed
	OnFinished func()
}

func (o Observer) description(ev DescriptionEvent) {
	if o.OnDescription != nil {
		o.OnDescription(ev)
	}
}

func (o Observer) device(ev DeviceEvent) {
	if o.OnDevice != nil {
		o.OnDevice(ev)
	}
}

func (o Observer) finished() {
	if o.OnFinished != nil {
		o.OnFinished()
	}
}

// Result is everything one search produced
type Result struct {
	// Adapters are the adapters the search ran on
	Adapters []ssdp.Adapter

	Descriptions []DescriptionEvent
	Devices      []DeviceEvent

	// Elapsed is the wall time of the search
	Elapsed time.Duration
}

// UniqueDevices returns one device per UDN, in discovery order
func (r *Result) UniqueDevices() []*description.Device {
	seen := make(map[string]bool)
	var devices []*description.Device
	for _, ev := range r.Devices {
		if seen[ev.Device.UDN] {
			continue
		}
		seen[ev.Device.UDN] = true
		devices = append(devices, ev.Device)
	}
	return devices
}

// Locations returns each distinct description URL, in discovery order
func (r *Result) Locations() []string {
	seen := make(map[string]bool)
	var locations []string
	for _, ev := range r.Descriptions {
		if seen[ev.Location] {
			continue
		}
		seen[ev.Location] = true
		locations = append(locations, ev.Location)
	}
	return locations
}

// collector accumulates events into a Result
type collector struct {
	mu     sync.Mutex
	result Result
}

func (c *collector) observer() Observer {
	return Observer{
		OnDescription: func(ev DescriptionEvent) {
			c.mu.Lock()
			c.result.Descriptions = append(c.result.Descriptions, ev)
			c.mu.Unlock()
		},
		OnDevice: func(ev DeviceEvent) {
			c.mu.Lock()
			c.result.Devices = append(c.result.Devices, ev)
			c.mu.Unlock()
		},
	}
}
