package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output.DefaultFormat != "cli" {
		t.Errorf("DefaultFormat = %q, want cli", cfg.Output.DefaultFormat)
	}
	if cfg.Server.Addr != ":8090" {
		t.Errorf("Addr = %q, want :8090", cfg.Server.Addr)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")

	cfg := Default()
	cfg.PolicyFile = "/etc/merlin/policy.yaml"
	cfg.Output.ShowClampTrail = false
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.PolicyFile != cfg.PolicyFile {
		t.Errorf("PolicyFile = %q, want %q", loaded.PolicyFile, cfg.PolicyFile)
	}
	if loaded.Output.ShowClampTrail {
		t.Error("ShowClampTrail should stay false after round trip")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := []byte(`{"version": "1.0", "server": {"addr": ":9100"}}`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Server.Addr != ":9100" {
		t.Errorf("Addr = %q, want :9100", loaded.Server.Addr)
	}
	if loaded.Output.DefaultFormat != "cli" {
		t.Errorf("DefaultFormat = %q, want cli (default)", loaded.Output.DefaultFormat)
	}
}
