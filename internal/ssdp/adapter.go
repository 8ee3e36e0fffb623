package ssdp

import (
	"fmt"
	"net"
	"strings"
)

// Adapter is a network interface a search can be sent on, together with the
// IPv4 address the session socket binds to.
type Adapter struct {
	Interface net.Interface
	Addr      net.IP
}

// Name returns the interface name
func (a Adapter) Name() string {
	return a.Interface.Name
}

// String returns a human-readable representation (e.g., "wlan0 (192.168.1.10)")
func (a Adapter) String() string {
	if a.Addr == nil {
		return a.Interface.Name
	}
	return fmt.Sprintf("%s (%s)", a.Interface.Name, a.Addr)
}

// InterfaceProvider lists the adapters a search should use when the caller
// does not supply an explicit set.
type InterfaceProvider interface {
	ActiveAdapters() ([]Adapter, error)
}

// SystemInterfaces enumerates adapters from the host's network stack.
// An adapter is active when it is up, multicast capable, not a loopback
// interface and carries at least one IPv4 address.
type SystemInterfaces struct{}

// ActiveAdapters implements InterfaceProvider
func (SystemInterfaces) ActiveAdapters() ([]Adapter, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list network interfaces: %w", err)
	}
	return selectAdapters(ifaces, func(ifi net.Interface) ([]net.Addr, error) {
		return ifi.Addrs()
	}), nil
}

// selectAdapters filters ifaces down to active adapters, one per interface
// index, using the first IPv4 address of each.
func selectAdapters(ifaces []net.Interface, addrsOf func(net.Interface) ([]net.Addr, error)) []Adapter {
	var adapters []Adapter
	seen := make(map[int]bool)

	for _, ifi := range ifaces {
		if ifi.Flags&net.FlagUp == 0 || ifi.Flags&net.FlagMulticast == 0 || ifi.Flags&net.FlagLoopback != 0 {
			continue
		}
		if seen[ifi.Index] {
			continue
		}

		addrs, err := addrsOf(ifi)
		if err != nil {
			continue
		}

		if ip := firstIPv4(addrs); ip != nil {
			adapters = append(adapters, Adapter{Interface: ifi, Addr: ip})
			seen[ifi.Index] = true
		}
	}

	return adapters
}

func firstIPv4(addrs []net.Addr) net.IP {
	for _, addr := range addrs {
		var ip net.IP
		switch a := addr.(type) {
		case *net.IPNet:
			ip = a.IP
		case *net.IPAddr:
			ip = a.IP
		}
		if ip4 := ip.To4(); ip4 != nil {
			return ip4
		}
	}
	return nil
}

// FilterAdapters returns the adapters whose interface name is listed in
// names. Unknown names are reported as an error so a misspelled override
// does not silently search nothing.
func FilterAdapters(adapters []Adapter, names []string) ([]Adapter, error) {
	byName := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		byName[a.Name()] = a
	}

	var selected []Adapter
	var missing []string
	for _, name := range names {
		a, ok := byName[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		selected = append(selected, a)
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("no active adapter named %s", strings.Join(missing, ", "))
	}
	return selected, nil
}
