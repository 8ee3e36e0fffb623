package description

import (
	"errors"
	"testing"

	"github.com/muurk/ssdpscan/internal/description/descriptiontest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUDN = "uuid:4a2f6b0e-8c1d-4e5f-9a3b-62f1894ee7be"

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name      string
		doc       []byte
		wantMatch bool
		want      map[string]string
	}{
		{
			name: "camera with two services",
			doc: descriptiontest.Camera("ILCE-7M3", "ILCE-7M3", testUDN,
				descriptiontest.Service{Type: "camera", URL: "http://10.0.0.1:8080/sony"},
				descriptiontest.Service{Type: "system", URL: "http://10.0.0.1:8080/sony/"},
			),
			wantMatch: true,
			want: map[string]string{
				"camera": "http://10.0.0.1:8080/sony/camera",
				"system": "http://10.0.0.1:8080/sony/system",
			},
		},
		{
			name: "later duplicate overwrites",
			doc: descriptiontest.Camera("DSC", "DSC-RX100M4", testUDN,
				descriptiontest.Service{Type: "camera", URL: "http://10.0.0.1:8080/old"},
				descriptiontest.Service{Type: "camera", URL: "http://10.0.0.1:8080/new"},
			),
			wantMatch: true,
			want:      map[string]string{"camera": "http://10.0.0.1:8080/new/camera"},
		},
		{
			name: "blank entries are skipped",
			doc: descriptiontest.Camera("DSC", "DSC-RX100M4", testUDN,
				descriptiontest.Service{Type: "", URL: "http://10.0.0.1:8080/sony"},
				descriptiontest.Service{Type: "guide", URL: "   "},
				descriptiontest.Service{Type: "avContent", URL: "http://10.0.0.1:8080/sony"},
			),
			wantMatch: true,
			want:      map[string]string{"avContent": "http://10.0.0.1:8080/sony/avContent"},
		},
		{
			name: "all entries blank",
			doc: descriptiontest.Camera("DSC", "DSC-RX100M4", testUDN,
				descriptiontest.Service{Type: "", URL: "http://10.0.0.1:8080/sony"},
				descriptiontest.Service{Type: "camera", URL: ""},
			),
		},
		{
			name: "empty service list",
			doc:  descriptiontest.Camera("DSC", "DSC-RX100M4", testUDN),
		},
		{
			name: "no Scalar Web API extension",
			doc:  descriptiontest.MediaRenderer("Living Room TV", testUDN),
		},
		{
			name: "malformed XML",
			doc:  []byte(`<root xmlns="urn:schemas-upnp-org:device-1-0"><device>`),
		},
		{
			name: "empty document",
			doc:  nil,
		},
		{
			name: "missing device element",
			doc:  []byte(`<root xmlns="urn:schemas-upnp-org:device-1-0"><specVersion/></root>`),
		},
		{
			name: "elements outside the UPnP namespace",
			doc: []byte(`<root><device><friendlyName>x</friendlyName><modelName>y</modelName><UDN>z</UDN>
				<av:X_ScalarWebAPI_DeviceInfo xmlns:av="urn:schemas-sony-com:av"><av:X_ScalarWebAPI_ServiceList>
				<av:X_ScalarWebAPI_Service><av:X_ScalarWebAPI_ServiceType>camera</av:X_ScalarWebAPI_ServiceType>
				<av:X_ScalarWebAPI_ActionList_URL>http://h/sony</av:X_ScalarWebAPI_ActionList_URL></av:X_ScalarWebAPI_Service>
				</av:X_ScalarWebAPI_ServiceList></av:X_ScalarWebAPI_DeviceInfo></device></root>`),
		},
		{
			name: "missing UDN",
			doc: []byte(`<root xmlns="urn:schemas-upnp-org:device-1-0"><device><friendlyName>x</friendlyName><modelName>y</modelName>
				<av:X_ScalarWebAPI_DeviceInfo xmlns:av="urn:schemas-sony-com:av"><av:X_ScalarWebAPI_ServiceList>
				<av:X_ScalarWebAPI_Service><av:X_ScalarWebAPI_ServiceType>camera</av:X_ScalarWebAPI_ServiceType>
				<av:X_ScalarWebAPI_ActionList_URL>http://h/sony</av:X_ScalarWebAPI_ActionList_URL></av:X_ScalarWebAPI_Service>
				</av:X_ScalarWebAPI_ServiceList></av:X_ScalarWebAPI_DeviceInfo></device></root>`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lenient, err := Parser{}.Parse(tt.doc)
			require.NoError(t, err)

			strict, strictErr := Parser{Strict: true}.Parse(tt.doc)

			if !tt.wantMatch {
				assert.Nil(t, lenient)
				assert.Nil(t, strict)
				require.Error(t, strictErr)
				assert.True(t, errors.Is(strictErr, ErrNoMatch))

				var perr *ParseError
				assert.True(t, errors.As(strictErr, &perr))
				assert.NotEmpty(t, perr.Reason)
				return
			}

			require.NotNil(t, lenient)
			require.NoError(t, strictErr)
			assert.Equal(t, tt.want, lenient.Endpoints())
			assert.True(t, lenient.Equal(strict))
			assert.NotEmpty(t, lenient.Endpoints())
		})
	}
}

func TestParser_Identity(t *testing.T) {
	doc := descriptiontest.Camera("  My Camera ", "ILCE-6000", testUDN,
		descriptiontest.Service{Type: "camera", URL: "http://192.168.122.1:8080/sony"},
	)

	device, ok := Parse(doc)
	require.True(t, ok)

	assert.Equal(t, "My Camera", device.FriendlyName)
	assert.Equal(t, "ILCE-6000", device.ModelName)
	assert.Equal(t, testUDN, device.UDN)
}

func TestParser_Idempotent(t *testing.T) {
	doc := descriptiontest.Camera("ILCE-7M3", "ILCE-7M3", testUDN,
		descriptiontest.Service{Type: "camera", URL: "http://10.0.0.1:8080/sony"},
		descriptiontest.Service{Type: "guide", URL: "http://10.0.0.1:8080/sony"},
	)

	first, ok := Parse(doc)
	require.True(t, ok)
	second, ok := Parse(doc)
	require.True(t, ok)

	assert.True(t, first.Equal(second))
	assert.Equal(t, first.String(), second.String())
}

func TestParser_MalformedXMLCause(t *testing.T) {
	_, err := Parser{Strict: true}.Parse([]byte("<root"))
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Error(t, perr.Unwrap())
	assert.Contains(t, err.Error(), "malformed XML")
}

func TestJoinEndpoint(t *testing.T) {
	tests := []struct {
		url  string
		name string
		want string
	}{
		{"http://10.0.0.1:8080/sony", "camera", "http://10.0.0.1:8080/sony/camera"},
		{"http://10.0.0.1:8080/sony/", "camera", "http://10.0.0.1:8080/sony/camera"},
		{"http://10.0.0.1:8080/", "system", "http://10.0.0.1:8080/system"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinEndpoint(tt.url, tt.name))
		})
	}
}
