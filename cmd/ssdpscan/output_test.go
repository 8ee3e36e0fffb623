package main

import (
	"bytes"
	"net"
	"path/filepath"
	"strings"
	"testing"

	"github.com/muurk/ssdpscan/internal/description"
	"github.com/muurk/ssdpscan/internal/discovery"
	"github.com/muurk/ssdpscan/internal/ssdp"
)

func adapter(name, addr string, index int) ssdp.Adapter {
	return ssdp.Adapter{
		Interface: net.Interface{Name: name, Index: index, MTU: 1500},
		Addr:      net.ParseIP(addr),
	}
}

func sampleResult() *discovery.Result {
	cam := description.NewDevice("uuid:cam-1", "ILCE-6000", "Alpha 6000", map[string]string{
		"camera": "http://10.0.0.1:8080/sony/camera",
	})
	wlan := adapter("wlan0", "10.0.0.2", 2)
	eth := adapter("eth0", "192.168.1.2", 1)
	remote := &net.UDPAddr{IP: net.ParseIP("10.0.0.1"), Port: 1900}

	return &discovery.Result{
		Adapters: []ssdp.Adapter{wlan, eth},
		Descriptions: []discovery.DescriptionEvent{
			{Location: "http://10.0.0.1:64321/dd.xml", LocalAddr: wlan.Addr, RemoteAddr: remote, Adapter: wlan, Document: []byte("<root/>")},
			{Location: "http://10.0.0.1:64321/dd.xml", LocalAddr: eth.Addr, RemoteAddr: remote, Adapter: eth, Document: []byte("<root/>")},
			{Location: "http://10.0.0.9:80/tv.xml", LocalAddr: wlan.Addr, RemoteAddr: remote, Adapter: wlan},
		},
		Devices: []discovery.DeviceEvent{
			{Location: "http://10.0.0.1:64321/dd.xml", LocalAddr: wlan.Addr, Adapter: wlan, Device: cam},
			{Location: "http://10.0.0.1:64321/dd.xml", LocalAddr: eth.Addr, Adapter: eth, Device: cam},
		},
	}
}

func TestCameraRecords(t *testing.T) {
	records := cameraRecords(sampleResult())

	if len(records) != 1 {
		t.Fatalf("cameraRecords() returned %d records, want 1", len(records))
	}
	rec := records[0]
	if got := strings.Join(rec.LocalAddrs, ","); got != "10.0.0.2,192.168.1.2" {
		t.Errorf("LocalAddrs = %s, want 10.0.0.2,192.168.1.2", got)
	}
	if got := strings.Join(rec.Adapters, ","); got != "wlan0,eth0" {
		t.Errorf("Adapters = %s, want wlan0,eth0", got)
	}
}

func TestCameraRecords_MergesUDNCase(t *testing.T) {
	lower := description.NewDevice("uuid:4a2f6b0e-8c1d-4e5f-9a3b-62f1894ee7be", "ILCE-7M3", "A7", nil)
	upper := description.NewDevice("UUID:4A2F6B0E-8C1D-4E5F-9A3B-62F1894EE7BE", "ILCE-7M3", "A7", nil)
	wlan := adapter("wlan0", "10.0.0.2", 2)
	eth := adapter("eth0", "192.168.1.2", 1)

	records := cameraRecords(&discovery.Result{Devices: []discovery.DeviceEvent{
		{Location: "http://10.0.0.1:64321/dd.xml", LocalAddr: wlan.Addr, Adapter: wlan, Device: lower},
		{Location: "http://10.0.0.1:64321/dd.xml", LocalAddr: eth.Addr, Adapter: eth, Device: upper},
	}})

	if len(records) != 1 {
		t.Fatalf("cameraRecords() returned %d records, want 1", len(records))
	}
	if len(records[0].Adapters) != 2 {
		t.Errorf("Adapters = %v, want both adapters", records[0].Adapters)
	}

	var buf bytes.Buffer
	if err := writeJSON(&buf, records); err != nil {
		t.Fatalf("writeJSON() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"uuid": "4a2f6b0e-8c1d-4e5f-9a3b-62f1894ee7be"`) {
		t.Errorf("JSON output missing parsed uuid:\n%s", buf.String())
	}
}

func TestDescriptionRecords(t *testing.T) {
	records := descriptionRecords(sampleResult())

	if len(records) != 2 {
		t.Fatalf("descriptionRecords() returned %d records, want 2", len(records))
	}
	if records[0].ScalarUDN != "uuid:cam-1" {
		t.Errorf("records[0].ScalarUDN = %q, want uuid:cam-1", records[0].ScalarUDN)
	}
	if records[1].ScalarUDN != "" {
		t.Errorf("records[1].ScalarUDN = %q, want empty", records[1].ScalarUDN)
	}
	if len(records[0].LocalAddrs) != 2 {
		t.Errorf("records[0].LocalAddrs = %v, want two addresses", records[0].LocalAddrs)
	}
	if records[0].Size != len("<root/>") {
		t.Errorf("records[0].Size = %d", records[0].Size)
	}
	if got := formatDescriptionCompact(records[1]); !strings.Contains(got, "upnp") {
		t.Errorf("formatDescriptionCompact() = %q, want upnp kind", got)
	}
}

func TestAdapterRecords(t *testing.T) {
	adapters := []ssdp.Adapter{adapter("wlan0", "10.0.0.2", 2), adapter("eth0", "192.168.1.2", 1)}

	all := adapterRecords(adapters, nil)
	for _, r := range all {
		if !r.Selected {
			t.Errorf("%s should be selected when no filter is set", r.Name)
		}
	}

	filtered := adapterRecords(adapters, []string{"eth0"})
	if filtered[0].Selected || !filtered[1].Selected {
		t.Errorf("adapterRecords() with filter = %+v", filtered)
	}
}

func TestFormatCameraCompact(t *testing.T) {
	rec := cameraRecords(sampleResult())[0]
	line := formatCameraCompact(rec)

	if strings.Count(line, "\n") > 0 {
		t.Error("formatCameraCompact() should return a single line")
	}
	for _, part := range []string{"uuid:cam-1", "ILCE-6000", "Alpha 6000", "camera=http://10.0.0.1:8080/sony/camera"} {
		if !strings.Contains(line, part) {
			t.Errorf("formatCameraCompact() missing expected part: %s", part)
		}
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{formatDetailed, false},
		{formatCompact, false},
		{formatJSON, false},
		{"yaml", true},
		{"", true},
	}

	for _, tt := range tests {
		err := validateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	defer func() { configPath = "" }()

	run := func(args ...string) (string, error) {
		var buf bytes.Buffer
		rootCmd.SetOut(&buf)
		rootCmd.SetArgs(args)
		err := rootCmd.Execute()
		return buf.String(), err
	}

	out, err := run("config", "init", "--config", path)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("config init output = %q, want path", out)
	}

	if _, err := run("config", "init", "--config", path); err == nil {
		t.Error("config init should refuse to overwrite without --force")
	}

	out, err = run("config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, part := range []string{"version: 1", "target: ssdp:all", "timeout_seconds: 5"} {
		if !strings.Contains(out, part) {
			t.Errorf("config show missing expected part: %s", part)
		}
	}

	out, err = run("config", "path", "--config", path)
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("config path = %q, want %q", out, path)
	}
}
