package description

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Device is a Scalar Web API device extracted from a description document.
// A Device is never modified after creation.
type Device struct {
	// UDN is the unique device name (e.g., "uuid:000000001000-1010-8000-62F1894EE7BE")
	UDN string

	// ModelName is the model reported by the device (e.g., "ILCE-7M3")
	ModelName string

	// FriendlyName is the user-visible device name
	FriendlyName string

	// endpoints maps service type to action endpoint URL
	endpoints map[string]string
}

// NewDevice creates a Device. The endpoint map is copied.
func NewDevice(udn, modelName, friendlyName string, endpoints map[string]string) *Device {
	return &Device{
		UDN:          udn,
		ModelName:    modelName,
		FriendlyName: friendlyName,
		endpoints:    copyEndpoints(endpoints),
	}
}

// Endpoints returns a copy of the service type to endpoint URL map
func (d *Device) Endpoints() map[string]string {
	return copyEndpoints(d.endpoints)
}

// Endpoint returns the action endpoint for a service type
func (d *Device) Endpoint(serviceType string) (string, bool) {
	ep, ok := d.endpoints[serviceType]
	return ep, ok
}

// ServiceTypes returns the service types in sorted order
func (d *Device) ServiceTypes() []string {
	types := make([]string, 0, len(d.endpoints))
	for t := range d.endpoints {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// UUID parses the UDN as a UUID, ignoring a leading "uuid:" prefix.
// Some cameras publish UDNs that are not RFC 4122 shaped; those return an error.
func (d *Device) UUID() (uuid.UUID, error) {
	raw := strings.TrimSpace(d.UDN)
	if len(raw) >= 5 && strings.EqualFold(raw[:5], "uuid:") {
		raw = raw[5:]
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("UDN %q is not a UUID: %w", d.UDN, err)
	}
	return id, nil
}

// Key identifies the device across replies. UUID-shaped UDNs compare by
// their parsed value so "uuid:ABC..." and "uuid:abc..." name one camera;
// other UDNs compare verbatim.
func (d *Device) Key() string {
	if id, err := d.UUID(); err == nil {
		return id.String()
	}
	return d.UDN
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("%s (%s) %s [%s]", d.FriendlyName, d.ModelName, d.UDN, strings.Join(d.ServiceTypes(), ", "))
}

// Equal reports whether two devices carry the same identity and endpoints
func (d *Device) Equal(other *Device) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.UDN != other.UDN || d.ModelName != other.ModelName || d.FriendlyName != other.FriendlyName {
		return false
	}
	if len(d.endpoints) != len(other.endpoints) {
		return false
	}
	for k, v := range d.endpoints {
		if ov, ok := other.endpoints[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

type deviceJSON struct {
	UDN          string            `json:"udn"`
	UUID         string            `json:"uuid,omitempty"`
	ModelName    string            `json:"model_name"`
	FriendlyName string            `json:"friendly_name"`
	Endpoints    map[string]string `json:"endpoints"`
}

// MarshalJSON implements json.Marshaler
func (d *Device) MarshalJSON() ([]byte, error) {
	out := deviceJSON{
		UDN:          d.UDN,
		ModelName:    d.ModelName,
		FriendlyName: d.FriendlyName,
		Endpoints:    d.endpoints,
	}
	if id, err := d.UUID(); err == nil {
		out.UUID = id.String()
	}
	return json.Marshal(out)
}

func copyEndpoints(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
