// Package descriptiontest builds description documents for tests.
package descriptiontest

import (
	"fmt"
	"strings"
)

// Service is one X_ScalarWebAPI_Service entry
type Service struct {
	Type string
	URL  string
}

// Camera returns a description with the given identity and services
func Camera(friendlyName, modelName, udn string, services ...Service) []byte {
	var list strings.Builder
	for _, svc := range services {
		fmt.Fprintf(&list, `
        <av:X_ScalarWebAPI_Service>
          <av:X_ScalarWebAPI_ServiceType>%s</av:X_ScalarWebAPI_ServiceType>
          <av:X_ScalarWebAPI_ActionList_URL>%s</av:X_ScalarWebAPI_ActionList_URL>
        </av:X_ScalarWebAPI_Service>`, svc.Type, svc.URL)
	}

	return []byte(fmt.Sprintf(`<?xml version="1.0"?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
  <specVersion><major>1</major><minor>0</minor></specVersion>
  <device>
    <deviceType>urn:schemas-upnp-org:device:Basic:1</deviceType>
    <friendlyName>%s</friendlyName>
    <manufacturer>Sony Corporation</manufacturer>
    <modelName>%s</modelName>
    <UDN>%s</UDN>
    <av:X_ScalarWebAPI_DeviceInfo xmlns:av="urn:schemas-sony-com:av">
      <av:X_ScalarWebAPI_Version>1.0</av:X_ScalarWebAPI_Version>
      <av:X_ScalarWebAPI_ServiceList>%s
      </av:X_ScalarWebAPI_ServiceList>
    </av:X_ScalarWebAPI_DeviceInfo>
  </device>
</root>
`, friendlyName, modelName, udn, list.String()))
}

// MediaRenderer returns a plain UPnP description without the Scalar Web API extension
func MediaRenderer(friendlyName, udn string) []byte {
	return []byte(fmt.Sprintf(`<?xml version="1.0"?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
  <device>
    <deviceType>urn:schemas-upnp-org:device:MediaRenderer:1</deviceType>
    <friendlyName>%s</friendlyName>
    <modelName>Renderer</modelName>
    <UDN>%s</UDN>
  </device>
</root>
`, friendlyName, udn))
}
