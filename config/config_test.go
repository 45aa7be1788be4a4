package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if cfg.Language != def.Language || cfg.Format != def.Format {
		t.Errorf("got %+v, want defaults", cfg)
	}
	if cfg.HistoryCapacity != 4 || cfg.PinnedCapacity != 10 {
		t.Errorf("capacities = %d/%d, want 4/10", cfg.HistoryCapacity, cfg.PinnedCapacity)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
language: en
format: wav
auto_paste: true
mute: true
pinned_capacity: 15
local:
  base_url: http://localhost:9999
  command: /opt/sensevoice/serve
remote:
  model: whisper-1
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Language != "en" {
		t.Errorf("Language = %q", cfg.Language)
	}
	if cfg.Format != "wav" {
		t.Errorf("Format = %q", cfg.Format)
	}
	if !cfg.AutoPaste {
		t.Error("AutoPaste not set")
	}
	if !cfg.Mute {
		t.Error("Mute not set")
	}
	if cfg.PinnedCapacity != 15 {
		t.Errorf("PinnedCapacity = %d", cfg.PinnedCapacity)
	}
	if cfg.Local.BaseURL != "http://localhost:9999" {
		t.Errorf("Local.BaseURL = %q", cfg.Local.BaseURL)
	}
	if cfg.Local.Command != "/opt/sensevoice/serve" {
		t.Errorf("Local.Command = %q", cfg.Local.Command)
	}
	// Untouched fields keep defaults.
	if cfg.Local.ProbeTimeoutMS != 1500 {
		t.Errorf("ProbeTimeoutMS = %d, want default 1500", cfg.Local.ProbeTimeoutMS)
	}
	if cfg.Remote.Model != "whisper-1" {
		t.Errorf("Remote.Model = %q", cfg.Remote.Model)
	}
}

func TestLoadRejectsBadFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("format: mp3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("language: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
