package ssdp

import (
	"bufio"
	"bytes"
	"strings"
)

const (
	// StatusOK is the only status line accepted on a search reply
	StatusOK = "HTTP/1.1 200 OK"

	// MaxResponseLines bounds the number of header lines read from one reply
	MaxResponseLines = 20
)

// ParseLocation returns the LOCATION header of an SSDP search reply.
//
// Scanning stops at the first blank line, at the end of the payload, or after
// MaxResponseLines header lines. Lines without a header name are skipped. A
// reply with a different status line, no LOCATION header, or an empty one
// reports false.
func ParseLocation(payload []byte) (string, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(payload))

	if !scanner.Scan() || scanner.Text() != StatusOK {
		return "", false
	}

	for i := 0; i < MaxResponseLines && scanner.Scan(); i++ {
		line := scanner.Text()
		if line == "" {
			break
		}

		name, value, found := strings.Cut(line, ":")
		if !found || name == "" {
			continue
		}

		if strings.EqualFold(strings.TrimSpace(name), "location") {
			value = strings.TrimSpace(value)
			return value, value != ""
		}
	}

	return "", false
}
