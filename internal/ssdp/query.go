package ssdp

import (
	"bytes"
	"errors"
	"net"
	"strconv"
)

const (
	// MulticastAddress is the SSDP IPv4 multicast group
	MulticastAddress = "239.255.255.250"

	// Port is the SSDP port
	Port = 1900

	// SearchAll is the wildcard search target
	SearchAll = "ssdp:all"

	// ScalarWebAPIService is the search target advertised by Scalar Web API cameras
	ScalarWebAPIService = "urn:schemas-sony-com:service:ScalarWebAPI:1"

	// DefaultMX is the advertised maximum wait in seconds
	DefaultMX uint = 1
)

// MulticastGroup is the destination of every M-SEARCH request.
var MulticastGroup = &net.UDPAddr{IP: net.IPv4(239, 255, 255, 250), Port: Port}

// ErrEmptySearchTarget is returned when an M-SEARCH is built without an ST.
var ErrEmptySearchTarget = errors.New("ssdp: search target must not be empty")

// BuildSearchRequest formats an M-SEARCH request for the search target st.
// An mx of zero is replaced with DefaultMX. The ST value is not validated
// beyond being non-empty.
func BuildSearchRequest(st string, mx uint) ([]byte, error) {
	if st == "" {
		return nil, ErrEmptySearchTarget
	}
	if mx == 0 {
		mx = DefaultMX
	}

	var b bytes.Buffer
	b.WriteString("M-SEARCH * HTTP/1.1\r\n")
	b.WriteString("HOST: " + MulticastAddress + ":" + strconv.Itoa(Port) + "\r\n")
	b.WriteString("MAN: \"ssdp:discover\"\r\n")
	b.WriteString("MX: " + strconv.FormatUint(uint64(mx), 10) + "\r\n")
	b.WriteString("ST: " + st + "\r\n")
	b.WriteString("\r\n")

	return b.Bytes(), nil
}
