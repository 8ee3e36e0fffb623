package ssdp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSearchRequest(t *testing.T) {
	got, err := BuildSearchRequest(ScalarWebAPIService, 1)
	require.NoError(t, err)

	want := "M-SEARCH * HTTP/1.1\r\n" +
		"HOST: 239.255.255.250:1900\r\n" +
		"MAN: \"ssdp:discover\"\r\n" +
		"MX: 1\r\n" +
		"ST: urn:schemas-sony-com:service:ScalarWebAPI:1\r\n" +
		"\r\n"
	assert.Equal(t, want, string(got))
}

func TestBuildSearchRequest_Headers(t *testing.T) {
	tests := []struct {
		name   string
		st     string
		mx     uint
		wantMX string
	}{
		{"wildcard default mx", SearchAll, 0, "MX: 1"},
		{"device urn", "urn:schemas-upnp-org:device:MediaRenderer:1", 3, "MX: 3"},
		{"large mx", "upnp:rootdevice", 120, "MX: 120"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := BuildSearchRequest(tt.st, tt.mx)
			require.NoError(t, err)

			text := string(req)
			require.True(t, strings.HasSuffix(text, "\r\n\r\n"), "request must end with a blank line")

			lines := strings.Split(strings.TrimSuffix(text, "\r\n\r\n"), "\r\n")
			for _, line := range lines {
				assert.NotContains(t, line, "\n", "bare LF inside line %q", line)
			}

			counts := map[string]int{}
			for _, line := range lines[1:] {
				name, _, ok := strings.Cut(line, ":")
				require.True(t, ok, "header line %q has no colon", line)
				counts[name]++
			}
			assert.Equal(t, map[string]int{"HOST": 1, "MAN": 1, "MX": 1, "ST": 1}, counts)

			assert.Contains(t, lines, tt.wantMX)
			assert.Contains(t, lines, "ST: "+tt.st)
		})
	}
}

func TestBuildSearchRequest_EmptyTarget(t *testing.T) {
	req, err := BuildSearchRequest("", 1)
	assert.ErrorIs(t, err, ErrEmptySearchTarget)
	assert.Nil(t, req)
}
