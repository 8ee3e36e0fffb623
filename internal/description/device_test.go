package description

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevice_EndpointsIsCopy(t *testing.T) {
	src := map[string]string{"camera": "http://h/sony/camera"}
	device := NewDevice(testUDN, "ILCE-7M3", "Camera", src)

	src["system"] = "http://h/sony/system"
	assert.Len(t, device.Endpoints(), 1)

	eps := device.Endpoints()
	eps["camera"] = "changed"
	ep, ok := device.Endpoint("camera")
	require.True(t, ok)
	assert.Equal(t, "http://h/sony/camera", ep)
}

func TestDevice_ServiceTypes(t *testing.T) {
	device := NewDevice(testUDN, "m", "f", map[string]string{
		"system":    "a",
		"avContent": "b",
		"camera":    "c",
	})
	assert.Equal(t, []string{"avContent", "camera", "system"}, device.ServiceTypes())
}

func TestDevice_UUID(t *testing.T) {
	tests := []struct {
		name    string
		udn     string
		want    string
		wantErr bool
	}{
		{"with prefix", "uuid:4a2f6b0e-8c1d-4e5f-9a3b-62f1894ee7be", "4a2f6b0e-8c1d-4e5f-9a3b-62f1894ee7be", false},
		{"upper case prefix", "UUID:4A2F6B0E-8C1D-4E5F-9A3B-62F1894EE7BE", "4a2f6b0e-8c1d-4e5f-9a3b-62f1894ee7be", false},
		{"bare", "4a2f6b0e-8c1d-4e5f-9a3b-62f1894ee7be", "4a2f6b0e-8c1d-4e5f-9a3b-62f1894ee7be", false},
		{"not a uuid", "uuid:000000001000-1010-8000-62F1894EE7BE", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := NewDevice(tt.udn, "m", "f", nil)
			id, err := device.UUID()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id.String())
		})
	}
}

func TestDevice_Key(t *testing.T) {
	lower := NewDevice("uuid:4a2f6b0e-8c1d-4e5f-9a3b-62f1894ee7be", "m", "f", nil)
	upper := NewDevice("UUID:4A2F6B0E-8C1D-4E5F-9A3B-62F1894EE7BE", "m", "f", nil)
	odd := NewDevice("uuid:000000001000-1010-8000-62F1894EE7BE", "m", "f", nil)

	assert.Equal(t, lower.Key(), upper.Key())
	assert.Equal(t, "4a2f6b0e-8c1d-4e5f-9a3b-62f1894ee7be", lower.Key())
	assert.Equal(t, "uuid:000000001000-1010-8000-62F1894EE7BE", odd.Key())
}

func TestDevice_MarshalJSONWithoutUUID(t *testing.T) {
	device := NewDevice("uuid:000000001000-1010-8000-62F1894EE7BE", "m", "f", nil)

	data, err := json.Marshal(device)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"uuid"`)
}

func TestDevice_Equal(t *testing.T) {
	a := NewDevice(testUDN, "m", "f", map[string]string{"camera": "x"})
	b := NewDevice(testUDN, "m", "f", map[string]string{"camera": "x"})
	c := NewDevice(testUDN, "m", "f", map[string]string{"camera": "y"})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))

	var nilDevice *Device
	assert.True(t, nilDevice.Equal(nil))
}

func TestDevice_MarshalJSON(t *testing.T) {
	device := NewDevice(testUDN, "ILCE-7M3", "Camera", map[string]string{"camera": "http://h/sony/camera"})

	data, err := json.Marshal(device)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"udn": "uuid:4a2f6b0e-8c1d-4e5f-9a3b-62f1894ee7be",
		"uuid": "4a2f6b0e-8c1d-4e5f-9a3b-62f1894ee7be",
		"model_name": "ILCE-7M3",
		"friendly_name": "Camera",
		"endpoints": {"camera": "http://h/sony/camera"}
	}`, string(data))
}
