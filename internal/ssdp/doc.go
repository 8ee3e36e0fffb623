// Package ssdp implements the active side of the Simple Service Discovery
// Protocol: building M-SEARCH requests, multicasting them on a single network
// adapter and collecting the unicast replies.
//
// # Search Flow
//
// A Session owns one socket bound to one adapter and moves through
//
//	Idle → Bound → Sent → Listening → Closed
//
// Bind, join and send failures move the session straight to Closed and are
// reported as *TransportError. While Listening, every datagram is copied and
// passed to the caller's handler together with the local address it arrived
// on. The listen timer starts when the session enters Listening; when it
// fires the socket is closed and no further replies are delivered.
//
// # Replies
//
// ParseLocation extracts the LOCATION header from a reply. Only replies whose
// status line is exactly "HTTP/1.1 200 OK" are considered and at most
// MaxResponseLines header lines are examined.
//
// # Platform Seams
//
// Socket access goes through the Transport and Conn interfaces, and adapter
// enumeration through InterfaceProvider. UDPTransport and SystemInterfaces are
// the default implementations built on golang.org/x/net/ipv4 and the net
// package.
//
// NOTIFY announcements are not handled by this package.
package ssdp
