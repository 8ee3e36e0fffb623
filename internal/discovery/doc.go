// Package discovery finds Sony Scalar Web API devices, and UPnP devices in
// general, by fanning SSDP searches out across every active network adapter.
//
// # Discovery Process
//
// A search works as follows:
//  1. Builds one M-SEARCH request for the search target
//  2. Starts one ssdp.Session per adapter; sessions run independently
//  3. Hands every reply to a bounded pool of resolver workers
//  4. Resolves the reply's LOCATION through the description cache, fetching
//     over HTTP on a miss (concurrent fetches of one URL are collapsed)
//  5. Emits a DescriptionEvent for every document obtained and a DeviceEvent
//     for every document that describes a Scalar Web API device
//  6. Calls OnFinished exactly once, after every session has closed and the
//     workers have drained
//
// # Usage Example
//
//	coord := discovery.New(discovery.Config{})
//	done := coord.SearchCameras(ctx, 5*time.Second, discovery.Observer{
//	    OnDevice: func(ev discovery.DeviceEvent) {
//	        fmt.Printf("Found: %s via %s\n", ev.Device, ev.LocalAddr)
//	    },
//	})
//	<-done
//
// # Errors
//
// Nothing that happens during a search is fatal to it. Bind, join and send
// failures close only the affected session; replies without a LOCATION,
// failed fetches and documents that do not match are dropped. All of these
// are classified as *SearchError and logged.
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Devices must be on the same local network segment
// - Firewall must allow SSDP replies (UDP, unicast to an ephemeral port)
//
// # Thread Safety
//
// A Coordinator is safe for concurrent use and may run several searches at
// once; they share its description cache. Observer callbacks are invoked from
// worker goroutines and may run concurrently with each other.
package discovery
