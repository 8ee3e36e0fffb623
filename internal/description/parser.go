package description

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/muurk/ssdpscan/internal/logging"
	"go.uber.org/zap"
)

const (
	// UPnPDeviceNamespace is the namespace of the standard device description elements
	UPnPDeviceNamespace = "urn:schemas-upnp-org:device-1-0"

	// ScalarWebAPINamespace is Sony's namespace for the Scalar Web API extension
	ScalarWebAPINamespace = "urn:schemas-sony-com:av"
)

// ErrNoMatch is returned by a strict Parser when a document does not describe
// a Scalar Web API device
var ErrNoMatch = errors.New("no Scalar Web API device in description")

// ParseError explains why a document did not yield a Device
type ParseError struct {
	// Reason is a short description of what was missing or malformed
	Reason string

	// Err is the XML decoding error, if any
	Err error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("description: %s: %v", e.Reason, e.Err)
	}
	return "description: " + e.Reason
}

// Unwrap returns the XML decoding error, if any
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes every ParseError match ErrNoMatch
func (e *ParseError) Is(target error) bool {
	return target == ErrNoMatch
}

type rootElement struct {
	Device *deviceElement `xml:"urn:schemas-upnp-org:device-1-0 device"`
}

type deviceElement struct {
	FriendlyName *string            `xml:"urn:schemas-upnp-org:device-1-0 friendlyName"`
	ModelName    *string            `xml:"urn:schemas-upnp-org:device-1-0 modelName"`
	UDN          *string            `xml:"urn:schemas-upnp-org:device-1-0 UDN"`
	DeviceInfo   *deviceInfoElement `xml:"urn:schemas-sony-com:av X_ScalarWebAPI_DeviceInfo"`
}

type deviceInfoElement struct {
	ServiceList *serviceListElement `xml:"urn:schemas-sony-com:av X_ScalarWebAPI_ServiceList"`
}

type serviceListElement struct {
	Services []serviceElement `xml:",any"`
}

type serviceElement struct {
	ServiceType *string `xml:"urn:schemas-sony-com:av X_ScalarWebAPI_ServiceType"`
	URL         *string `xml:"urn:schemas-sony-com:av X_ScalarWebAPI_ActionList_URL"`
}

// Parser extracts Devices from description documents.
//
// With Strict unset a document that does not match yields (nil, nil). With
// Strict set it yields a *ParseError that matches ErrNoMatch.
type Parser struct {
	Strict bool
}

// Parse extracts a Device from doc. Parse is pure; equal input gives equal output.
func (p Parser) Parse(doc []byte) (*Device, error) {
	device, perr := parse(doc)
	if perr == nil {
		return device, nil
	}

	logging.Debug("Description did not match",
		zap.String("reason", perr.Reason),
		zap.Error(perr.Err),
		zap.Bool("strict", p.Strict),
	)

	if !p.Strict {
		return nil, nil
	}
	return nil, perr
}

// Parse is the lenient form of Parser.Parse
func Parse(doc []byte) (*Device, bool) {
	device, _ := Parser{}.Parse(doc)
	return device, device != nil
}

func parse(doc []byte) (*Device, *ParseError) {
	var root rootElement
	if err := xml.Unmarshal(doc, &root); err != nil {
		return nil, &ParseError{Reason: "malformed XML", Err: err}
	}

	dev := root.Device
	if dev == nil {
		return nil, &ParseError{Reason: "missing device element"}
	}
	if dev.FriendlyName == nil || dev.ModelName == nil || dev.UDN == nil {
		return nil, &ParseError{Reason: "device element lacks friendlyName, modelName or UDN"}
	}
	if dev.DeviceInfo == nil || dev.DeviceInfo.ServiceList == nil {
		return nil, &ParseError{Reason: "missing X_ScalarWebAPI_DeviceInfo service list"}
	}

	endpoints := make(map[string]string)
	for _, svc := range dev.DeviceInfo.ServiceList.Services {
		if svc.ServiceType == nil || svc.URL == nil {
			continue
		}
		name := strings.TrimSpace(*svc.ServiceType)
		base := strings.TrimSpace(*svc.URL)
		if name == "" || base == "" {
			continue
		}
		endpoints[name] = JoinEndpoint(base, name)
	}

	if len(endpoints) == 0 {
		return nil, &ParseError{Reason: "no usable service entries"}
	}

	return &Device{
		UDN:          strings.TrimSpace(*dev.UDN),
		ModelName:    strings.TrimSpace(*dev.ModelName),
		FriendlyName: strings.TrimSpace(*dev.FriendlyName),
		endpoints:    endpoints,
	}, nil
}

// JoinEndpoint appends a service type to an action list URL, inserting a "/"
// unless the URL already ends with one
func JoinEndpoint(actionListURL, serviceType string) string {
	if strings.HasSuffix(actionListURL, "/") {
		return actionListURL + serviceType
	}
	return actionListURL + "/" + serviceType
}
