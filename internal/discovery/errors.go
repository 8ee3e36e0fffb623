package discovery

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"

	"github.com/muurk/ssdpscan/internal/description"
	"github.com/muurk/ssdpscan/internal/ssdp"
)

// ErrorType represents the category of a search failure
type ErrorType int

const (
	// ErrTypeBind indicates a session socket could not be bound to its adapter
	ErrTypeBind ErrorType = iota
	// ErrTypeJoin indicates the multicast group could not be joined
	ErrTypeJoin
	// ErrTypeSend indicates the M-SEARCH datagram could not be sent
	ErrTypeSend
	// ErrTypeRead indicates a session's socket failed while listening
	ErrTypeRead
	// ErrTypeFetch indicates a network-level failure fetching a description
	ErrTypeFetch
	// ErrTypeTimeout indicates a description fetch timed out
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the device refused the HTTP connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates the LOCATION host could not be resolved
	ErrTypeDNS
	// ErrTypeHTTP indicates a non-2xx response to a description fetch
	ErrTypeHTTP
	// ErrTypeParse indicates a malformed description document
	ErrTypeParse
	// ErrTypeNoMatch indicates a well-formed document without Scalar Web API services
	ErrTypeNoMatch
	// ErrTypeNoAdapters indicates there was nothing to search on
	ErrTypeNoAdapters
	// ErrTypeUnknown indicates an unknown or unexpected error
	ErrTypeUnknown
)

// NetworkErrorSubtype provides more specific network error classification
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
	NetworkErrorAddressInUse
	NetworkErrorPermission
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeBind:
		return "Bind Error"
	case ErrTypeJoin:
		return "Multicast Join Error"
	case ErrTypeSend:
		return "Send Error"
	case ErrTypeRead:
		return "Receive Error"
	case ErrTypeFetch:
		return "Fetch Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeNoMatch:
		return "No Match"
	case ErrTypeNoAdapters:
		return "No Adapters"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// SearchError describes a failure during a search. Search never returns
// these; they are logged, and returned by helpers such as Collect.
type SearchError struct {
	Type           ErrorType           // Category of error
	Message        string              // Human-readable error message
	StatusCode     int                 // HTTP status code (if applicable)
	Err            error               // Underlying error (if any)
	NetworkSubtype NetworkErrorSubtype // More specific network error type
	Adapter        string              // Adapter name (for session failures)
	Location       string              // Description URL (for fetch and parse failures)
}

// Error implements the error interface
func (e *SearchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *SearchError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes a fetch error and returns a more specific error type
func ClassifyNetworkError(err error, location string) *SearchError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) {
		return &SearchError{
			Type:           ErrTypeTimeout,
			Message:        "Description request timed out",
			Err:            err,
			NetworkSubtype: NetworkErrorTimeout,
			Location:       location,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &SearchError{
			Type:           ErrTypeDNS,
			Message:        fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:            err,
			NetworkSubtype: NetworkErrorDNS,
			Location:       location,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return &SearchError{
				Type:           ErrTypeConnectionRefused,
				Message:        "Device refused connection",
				Err:            err,
				NetworkSubtype: NetworkErrorConnectionRefused,
				Location:       location,
			}
		}
		if errors.Is(opErr.Err, syscall.EHOSTUNREACH) {
			return &SearchError{
				Type:           ErrTypeFetch,
				Message:        "Host unreachable",
				Err:            err,
				NetworkSubtype: NetworkErrorHostUnreachable,
				Location:       location,
			}
		}
		if errors.Is(opErr.Err, syscall.ENETUNREACH) {
			return &SearchError{
				Type:           ErrTypeFetch,
				Message:        "Network unreachable",
				Err:            err,
				NetworkSubtype: NetworkErrorNetworkUnreachable,
				Location:       location,
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ClassifyNetworkError(urlErr.Err, location)
	}

	return &SearchError{
		Type:           ErrTypeFetch,
		Message:        "Network error occurred",
		Err:            err,
		NetworkSubtype: NetworkErrorGeneral,
		Location:       location,
	}
}

// NewFetchError classifies an error returned by a description.Fetcher
func NewFetchError(location string, err error) *SearchError {
	var statusErr *description.StatusError
	if errors.As(err, &statusErr) {
		return &SearchError{
			Type:       ErrTypeHTTP,
			Message:    fmt.Sprintf("unexpected status code: %d", statusErr.StatusCode),
			StatusCode: statusErr.StatusCode,
			Err:        err,
			Location:   location,
		}
	}
	return ClassifyNetworkError(err, location)
}

// NewParseError classifies an error returned by a strict description.Parser
func NewParseError(location string, err error) *SearchError {
	var perr *description.ParseError
	if errors.As(err, &perr) && perr.Err == nil {
		return &SearchError{
			Type:     ErrTypeNoMatch,
			Message:  perr.Reason,
			Err:      err,
			Location: location,
		}
	}
	return &SearchError{
		Type:     ErrTypeParse,
		Message:  "failed to parse description",
		Err:      err,
		Location: location,
	}
}

// NewSessionError classifies an error returned by ssdp.Session.Run
func NewSessionError(adapter string, err error) *SearchError {
	var terr *ssdp.TransportError
	if !errors.As(err, &terr) {
		return &SearchError{
			Type:    ErrTypeUnknown,
			Message: "search session failed",
			Err:     err,
			Adapter: adapter,
		}
	}

	serr := &SearchError{
		Err:     err,
		Adapter: terr.Adapter,
	}

	switch terr.Op {
	case "bind":
		serr.Type = ErrTypeBind
		serr.Message = "could not bind socket"
	case "join":
		serr.Type = ErrTypeJoin
		serr.Message = "could not join multicast group"
	case "send":
		serr.Type = ErrTypeSend
		serr.Message = "could not send search request"
	case "read":
		serr.Type = ErrTypeRead
		serr.Message = "socket failed while listening"
	default:
		serr.Type = ErrTypeUnknown
		serr.Message = terr.Op + " failed"
	}

	switch {
	case errors.Is(terr.Err, syscall.EADDRINUSE):
		serr.NetworkSubtype = NetworkErrorAddressInUse
	case errors.Is(terr.Err, syscall.EACCES), errors.Is(terr.Err, syscall.EPERM):
		serr.NetworkSubtype = NetworkErrorPermission
	case errors.Is(terr.Err, syscall.ENETUNREACH):
		serr.NetworkSubtype = NetworkErrorNetworkUnreachable
	case errors.Is(terr.Err, syscall.EHOSTUNREACH):
		serr.NetworkSubtype = NetworkErrorHostUnreachable
	}

	return serr
}

// NewNoAdaptersError reports an empty adapter set
func NewNoAdaptersError(err error) *SearchError {
	msg := "no active network adapter with an IPv4 address"
	if err != nil {
		msg = "could not resolve network adapters"
	}
	return &SearchError{
		Type:    ErrTypeNoAdapters,
		Message: msg,
		Err:     err,
	}
}

// IsSessionError checks if an error is a per-adapter socket failure
func IsSessionError(err error) bool {
	var serr *SearchError
	if errors.As(err, &serr) {
		return serr.Type == ErrTypeBind ||
			serr.Type == ErrTypeJoin ||
			serr.Type == ErrTypeSend ||
			serr.Type == ErrTypeRead
	}
	return false
}

// IsFetchError checks if an error is a description fetch failure (including timeout, refused, DNS, HTTP)
func IsFetchError(err error) bool {
	var serr *SearchError
	if errors.As(err, &serr) {
		return serr.Type == ErrTypeFetch ||
			serr.Type == ErrTypeTimeout ||
			serr.Type == ErrTypeConnectionRefused ||
			serr.Type == ErrTypeDNS ||
			serr.Type == ErrTypeHTTP
	}
	return false
}

// IsParseError checks if an error is a malformed or non-matching description
func IsParseError(err error) bool {
	var serr *SearchError
	if errors.As(err, &serr) {
		return serr.Type == ErrTypeParse || serr.Type == ErrTypeNoMatch
	}
	return false
}

// IsNoAdaptersError checks if a search had nothing to run on
func IsNoAdaptersError(err error) bool {
	var serr *SearchError
	if errors.As(err, &serr) {
		return serr.Type == ErrTypeNoAdapters
	}
	return false
}

// TroubleshootingHint returns user-friendly troubleshooting advice for an error
func TroubleshootingHint(err error) string {
	var serr *SearchError
	if !errors.As(err, &serr) {
		return "An unexpected error occurred. Please try again."
	}

	switch serr.Type {
	case ErrTypeNoAdapters:
		return strings.Join([]string{
			"No network adapter is available for SSDP.",
			"Troubleshooting:",
			"  • Check that Wi-Fi or Ethernet is connected",
			"  • Run 'ssdpscan interfaces' to list usable adapters",
			"  • Check the interface names in your config file",
		}, "\n")

	case ErrTypeBind, ErrTypeJoin, ErrTypeSend, ErrTypeRead:
		hint := []string{fmt.Sprintf("The search could not use adapter %s.", serr.Adapter)}
		switch serr.NetworkSubtype {
		case NetworkErrorPermission:
			hint = append(hint, "Troubleshooting:",
				"  • A firewall or sandbox may be blocking UDP multicast",
				"  • Allow outbound UDP to 239.255.255.250:1900")
		case NetworkErrorNetworkUnreachable, NetworkErrorHostUnreachable:
			hint = append(hint, "Troubleshooting:",
				"  • The adapter may have no multicast route",
				"  • Reconnect to the camera's Wi-Fi network")
		default:
			hint = append(hint, "Troubleshooting:",
				"  • Check that the adapter supports multicast",
				"  • Try limiting the search with --interface")
		}
		return strings.Join(hint, "\n")

	case ErrTypeTimeout:
		return strings.Join([]string{
			"The device did not serve its description in time.",
			"Troubleshooting:",
			"  • Move closer to the camera to improve signal strength",
			"  • Increase http.timeout_seconds in the config file",
		}, "\n")

	case ErrTypeConnectionRefused, ErrTypeFetch, ErrTypeDNS:
		return strings.Join([]string{
			"The description URL could not be reached.",
			"Troubleshooting:",
			"  • Verify you're on the same network as the device",
			"  • Check that the camera's remote control app is running",
		}, "\n")

	case ErrTypeHTTP:
		return fmt.Sprintf("The device returned HTTP error %d for its description.", serr.StatusCode)

	case ErrTypeParse:
		return "The description is not valid XML. The device firmware may be incompatible."

	case ErrTypeNoMatch:
		return "The device is a UPnP device but does not expose the Scalar Web API."

	default:
		return "An error occurred. Please check the error message for details."
	}
}

// ShortMessage returns a concise, user-friendly error message
func ShortMessage(err error) string {
	var serr *SearchError
	if !errors.As(err, &serr) {
		return err.Error()
	}

	switch serr.Type {
	case ErrTypeBind, ErrTypeJoin, ErrTypeSend, ErrTypeRead:
		return fmt.Sprintf("%s on %s", serr.Message, serr.Adapter)
	case ErrTypeTimeout:
		return "Device not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Device refused connection"
	case ErrTypeDNS:
		return "Cannot resolve device hostname"
	case ErrTypeFetch:
		switch serr.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			return "Device unreachable - check network connection"
		case NetworkErrorNetworkUnreachable:
			return "Network unreachable - check Wi-Fi connection"
		default:
			return "Network error - check connection"
		}
	case ErrTypeHTTP:
		return fmt.Sprintf("Device error (HTTP %d)", serr.StatusCode)
	case ErrTypeParse:
		return "Failed to parse device description"
	case ErrTypeNoMatch:
		return "Not a Scalar Web API device"
	default:
		return serr.Message
	}
}
