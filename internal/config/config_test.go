package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/muurk/ssdpscan/internal/discovery"
	"github.com/muurk/ssdpscan/internal/ssdp"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "ssdpscan") {
		t.Errorf("GetConfigDir() = %v, should contain 'ssdpscan'", configDir)
	}

	if runtime.GOOS == "darwin" && !strings.Contains(configDir, ".config") {
		t.Errorf("macOS config dir should contain '.config', got: %v", configDir)
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	want := filepath.Join(xdg, "ssdpscan", "config.yaml")
	if configPath != want {
		t.Errorf("GetConfigPath() = %v, want %v", configPath, want)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.Version != 1 {
		t.Errorf("NewConfig().Version = %v, want 1", cfg.Version)
	}
	if cfg.Search == nil || cfg.HTTP == nil {
		t.Fatal("NewConfig() sections should not be nil")
	}
	if cfg.Search.Target != ssdp.SearchAll {
		t.Errorf("Search.Target = %v, want %v", cfg.Search.Target, ssdp.SearchAll)
	}
	if cfg.Search.TimeoutSeconds != 5 {
		t.Errorf("Search.TimeoutSeconds = %v, want 5", cfg.Search.TimeoutSeconds)
	}
	if cfg.Search.MX != 1 {
		t.Errorf("Search.MX = %v, want 1", cfg.Search.MX)
	}
	if cfg.Search.Workers != discovery.DefaultWorkers {
		t.Errorf("Search.Workers = %v, want %v", cfg.Search.Workers, discovery.DefaultWorkers)
	}
	if cfg.HTTP.TimeoutSeconds != 10 {
		t.Errorf("HTTP.TimeoutSeconds = %v, want 10", cfg.HTTP.TimeoutSeconds)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("NewConfig() should be valid, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero timeout selects default", mutate: func(c *Config) { c.Search.TimeoutSeconds = 0 }},
		{name: "bad version", mutate: func(c *Config) { c.Version = 2 }, wantErr: "unsupported config version"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "log_level"},
		{name: "negative timeout", mutate: func(c *Config) { c.Search.TimeoutSeconds = -1 }, wantErr: "must not be negative"},
		{name: "timeout below floor", mutate: func(c *Config) { c.Search.TimeoutSeconds = 1 }, wantErr: "at least 2"},
		{name: "mx too large", mutate: func(c *Config) { c.Search.MX = 6 }, wantErr: "search.mx"},
		{name: "too many workers", mutate: func(c *Config) { c.Search.Workers = 100 }, wantErr: "search.workers"},
		{name: "empty interface", mutate: func(c *Config) { c.Search.Interfaces = []string{"wlan0", ""} }, wantErr: "empty name"},
		{name: "negative http timeout", mutate: func(c *Config) { c.HTTP.TimeoutSeconds = -5 }, wantErr: "http.timeout_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigSaveAndLoad(t *testing.T) {
	testConfigPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := NewConfig()
	cfg.LogLevel = "debug"
	cfg.Search.Target = ssdp.ScalarWebAPIService
	cfg.Search.TimeoutSeconds = 8
	cfg.Search.Interfaces = []string{"wlan0"}
	cfg.Search.StrictParse = true
	cfg.HTTP.UserAgent = "camera-remote/2.0"

	if err := cfg.SaveFile(testConfigPath); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	info, err := os.Stat(testConfigPath)
	if err != nil {
		t.Fatalf("Saved config missing: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("Config permissions = %v, want 0600", info.Mode().Perm())
	}
	if _, err := os.Stat(testConfigPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temporary file should not remain after save")
	}

	loaded, err := LoadFile(testConfigPath)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if loaded.LogLevel != "debug" {
		t.Errorf("Loaded log level = %v, want debug", loaded.LogLevel)
	}
	if loaded.Search.Target != ssdp.ScalarWebAPIService {
		t.Errorf("Loaded target = %v", loaded.Search.Target)
	}
	if loaded.Search.TimeoutSeconds != 8 {
		t.Errorf("Loaded timeout = %v, want 8", loaded.Search.TimeoutSeconds)
	}
	if len(loaded.Search.Interfaces) != 1 || loaded.Search.Interfaces[0] != "wlan0" {
		t.Errorf("Loaded interfaces = %v, want [wlan0]", loaded.Search.Interfaces)
	}
	if !loaded.Search.StrictParse {
		t.Error("Loaded strict_parse should be true")
	}
	if loaded.HTTP.UserAgent != "camera-remote/2.0" {
		t.Errorf("Loaded user agent = %v", loaded.HTTP.UserAgent)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Search.TimeoutSeconds != 5 {
		t.Errorf("Missing file should give defaults, got timeout %v", cfg.Search.TimeoutSeconds)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "partial file keeps default sections",
			data: "version: 1\nlog_level: warn\n",
			check: func(t *testing.T, c *Config) {
				if c.Search == nil || c.Search.Workers != discovery.DefaultWorkers {
					t.Errorf("Search section should be defaulted, got %+v", c.Search)
				}
				if c.HTTP == nil || c.HTTP.TimeoutSeconds != 10 {
					t.Errorf("HTTP section should be defaulted, got %+v", c.HTTP)
				}
			},
		},
		{
			name: "search section",
			data: "version: 1\nsearch:\n  target: upnp:rootdevice\n  timeout_seconds: 3\n  mx: 2\n  interfaces: [eth0, wlan0]\n",
			check: func(t *testing.T, c *Config) {
				if c.Search.Target != "upnp:rootdevice" || c.Search.MX != 2 || len(c.Search.Interfaces) != 2 {
					t.Errorf("Unexpected search section %+v", c.Search)
				}
			},
		},
		{name: "missing version", data: "log_level: info\n", wantErr: true},
		{name: "invalid yaml", data: "version: [1\n", wantErr: true},
		{name: "invalid value", data: "version: 1\nsearch:\n  mx: 9\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Error("Parse() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestConfigSearchRequest(t *testing.T) {
	cfg := NewConfig()
	cfg.Search.Target = "upnp:rootdevice"
	cfg.Search.TimeoutSeconds = 3
	cfg.Search.MX = 2
	cfg.Search.Interfaces = []string{"wlan0"}

	req := cfg.SearchRequest("")
	if req.ST != "upnp:rootdevice" {
		t.Errorf("ST = %v, want configured target", req.ST)
	}
	if req.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", req.Timeout)
	}
	if req.MX != 2 {
		t.Errorf("MX = %v, want 2", req.MX)
	}
	if len(req.InterfaceNames) != 1 || req.InterfaceNames[0] != "wlan0" {
		t.Errorf("InterfaceNames = %v, want [wlan0]", req.InterfaceNames)
	}

	req.InterfaceNames[0] = "eth0"
	if cfg.Search.Interfaces[0] != "wlan0" {
		t.Error("SearchRequest() should copy the interface list")
	}

	if got := cfg.SearchRequest(ssdp.ScalarWebAPIService).ST; got != ssdp.ScalarWebAPIService {
		t.Errorf("explicit ST = %v, want %v", got, ssdp.ScalarWebAPIService)
	}
}

func TestConfigToDiscoveryConfig(t *testing.T) {
	cfg := &Config{Version: 1}
	cfg.fillDefaults()
	cfg.Search.Workers = 8
	cfg.Search.StrictParse = true
	cfg.HTTP.TimeoutSeconds = 3
	cfg.HTTP.UserAgent = "test-agent"

	dc := cfg.ToDiscoveryConfig()
	if dc.Workers != 8 || !dc.StrictParse {
		t.Errorf("Unexpected discovery config %+v", dc)
	}

	fetcher := cfg.NewFetcher()
	if fetcher.UserAgent != "test-agent" {
		t.Errorf("UserAgent = %v, want test-agent", fetcher.UserAgent)
	}
	if fetcher.Client.Timeout != 3*time.Second {
		t.Errorf("Client timeout = %v, want 3s", fetcher.Client.Timeout)
	}
}
