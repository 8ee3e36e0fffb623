package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/muurk/ssdpscan/internal/description"
	"github.com/muurk/ssdpscan/internal/discovery"
	"github.com/muurk/ssdpscan/internal/ssdp"
	"github.com/muurk/ssdpscan/internal/ui"
)

// Output formats accepted by --format
const (
	formatDetailed = "detailed"
	formatCompact  = "compact"
	formatJSON     = "json"
)

func validateFormat(format string) error {
	switch format {
	case formatDetailed, formatCompact, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want detailed, compact or json)", format)
	}
}

// cameraRecord is one camera merged across every adapter it answered on
type cameraRecord struct {
	Device     *description.Device `json:"device"`
	Location   string              `json:"location"`
	LocalAddrs []string            `json:"local_addrs"`
	Adapters   []string            `json:"adapters"`
}

// descriptionRecord is one description URL obtained by a generic search
type descriptionRecord struct {
	Location   string   `json:"location"`
	Remote     string   `json:"remote"`
	LocalAddrs []string `json:"local_addrs"`
	Size       int      `json:"size"`
	ScalarUDN  string   `json:"scalar_udn,omitempty"`
}

// adapterRecord describes one active adapter
type adapterRecord struct {
	Name     string `json:"name"`
	Index    int    `json:"index"`
	Addr     string `json:"addr"`
	MTU      int    `json:"mtu"`
	Selected bool   `json:"selected"`
}

func appendUnique(list []string, s string) []string {
	if s == "" {
		return list
	}
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

// cameraRecords merges the device events of a search by device key, keeping
// discovery order
func cameraRecords(result *discovery.Result) []*cameraRecord {
	byKey := make(map[string]*cameraRecord)
	var records []*cameraRecord

	for _, ev := range result.Devices {
		key := ev.Device.Key()
		rec, ok := byKey[key]
		if !ok {
			rec = &cameraRecord{Device: ev.Device, Location: ev.Location}
			byKey[key] = rec
			records = append(records, rec)
		}
		if ev.LocalAddr != nil {
			rec.LocalAddrs = appendUnique(rec.LocalAddrs, ev.LocalAddr.String())
		}
		rec.Adapters = appendUnique(rec.Adapters, ev.Adapter.Name())
	}

	return records
}

// descriptionRecords merges the description events of a search by location
func descriptionRecords(result *discovery.Result) []*descriptionRecord {
	scalar := make(map[string]string)
	for _, ev := range result.Devices {
		scalar[ev.Location] = ev.Device.UDN
	}

	byLocation := make(map[string]*descriptionRecord)
	var records []*descriptionRecord

	for _, ev := range result.Descriptions {
		rec, ok := byLocation[ev.Location]
		if !ok {
			rec = &descriptionRecord{
				Location:  ev.Location,
				Size:      len(ev.Document),
				ScalarUDN: scalar[ev.Location],
			}
			if ev.RemoteAddr != nil {
				rec.Remote = ev.RemoteAddr.String()
			}
			byLocation[ev.Location] = rec
			records = append(records, rec)
		}
		if ev.LocalAddr != nil {
			rec.LocalAddrs = appendUnique(rec.LocalAddrs, ev.LocalAddr.String())
		}
	}

	return records
}

func adapterRecords(adapters []ssdp.Adapter, selected []string) []adapterRecord {
	want := make(map[string]bool, len(selected))
	for _, name := range selected {
		want[name] = true
	}

	records := make([]adapterRecord, 0, len(adapters))
	for _, a := range adapters {
		records = append(records, adapterRecord{
			Name:     a.Name(),
			Index:    a.Interface.Index,
			Addr:     a.Addr.String(),
			MTU:      a.Interface.MTU,
			Selected: len(selected) == 0 || want[a.Name()],
		})
	}
	return records
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// formatCameraCompact renders a camera as a single line
func formatCameraCompact(rec *cameraRecord) string {
	name := rec.Device.FriendlyName
	if name == "" {
		name = "-"
	}

	var endpoints []string
	for _, st := range rec.Device.ServiceTypes() {
		url, _ := rec.Device.Endpoint(st)
		endpoints = append(endpoints, st+"="+url)
	}

	return fmt.Sprintf("%s\t%s\t%s\t%s\t%s",
		rec.Device.UDN,
		rec.Device.ModelName,
		name,
		strings.Join(rec.LocalAddrs, ","),
		strings.Join(endpoints, " "),
	)
}

// formatDescriptionCompact renders a description record as a single line
func formatDescriptionCompact(rec *descriptionRecord) string {
	kind := "upnp"
	if rec.ScalarUDN != "" {
		kind = "scalar"
	}
	return fmt.Sprintf("%s\t%s\t%s\t%s", rec.Location, kind, rec.Remote, strings.Join(rec.LocalAddrs, ","))
}

func adapterNames(adapters []ssdp.Adapter) string {
	names := make([]string, 0, len(adapters))
	for _, a := range adapters {
		names = append(names, a.String())
	}
	return strings.Join(names, ", ")
}

func cameraCard(i int, rec *cameraRecord) *ui.DeviceCard {
	return &ui.DeviceCard{
		Device:     rec.Device,
		Index:      i + 1,
		Location:   rec.Location,
		LocalAddrs: rec.LocalAddrs,
	}
}
