// Package description turns UPnP device description documents into Scalar
// Web API device records.
//
// A description document is the XML body served at the LOCATION URL of an
// SSDP reply. Parser extracts the device's friendly name, model name and UDN
// from the UPnP device element, and the service endpoints from Sony's
// X_ScalarWebAPI_DeviceInfo extension:
//
//	<root xmlns="urn:schemas-upnp-org:device-1-0">
//	  <device>
//	    <friendlyName>ILCE-7M3</friendlyName>
//	    <modelName>ILCE-7M3</modelName>
//	    <UDN>uuid:000000001000-1010-8000-62F1894EE7BE</UDN>
//	    <av:X_ScalarWebAPI_DeviceInfo xmlns:av="urn:schemas-sony-com:av">
//	      <av:X_ScalarWebAPI_ServiceList>
//	        <av:X_ScalarWebAPI_Service>
//	          <av:X_ScalarWebAPI_ServiceType>camera</av:X_ScalarWebAPI_ServiceType>
//	          <av:X_ScalarWebAPI_ActionList_URL>http://10.0.0.1:8080/sony</av:X_ScalarWebAPI_ActionList_URL>
//	        </av:X_ScalarWebAPI_Service>
//	      </av:X_ScalarWebAPI_ServiceList>
//	    </av:X_ScalarWebAPI_DeviceInfo>
//	  </device>
//	</root>
//
// The document above yields a Device whose "camera" endpoint is
// http://10.0.0.1:8080/sony/camera.
//
// Documents are cached by URL in a Cache and fetched through a Fetcher;
// HTTPFetcher is the net/http implementation.
package description
