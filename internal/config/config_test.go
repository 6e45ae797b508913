package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TailLines != defaultTailLines || cfg.PollInterval != defaultPollInterval {
		t.Fatalf("cfg = %#v, want defaults", cfg)
	}
	if cfg.Encoding != defaultEncoding || cfg.Palette != defaultPalette {
		t.Fatalf("Encoding/Palette = %q/%q", cfg.Encoding, cfg.Palette)
	}

	wantRules, err := expandPath(defaultRulesPath)
	if err != nil {
		t.Fatalf("expandPath(defaultRulesPath) returned error: %v", err)
	}
	if cfg.RulesPath != wantRules {
		t.Fatalf("RulesPath = %q, want %q", cfg.RulesPath, wantRules)
	}
	if cfg.LogPath != "" {
		t.Fatalf("LogPath = %q, want empty", cfg.LogPath)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
log_path = "  ~/state/logview.log  "
debug = true
rules_path = "~/rules.toml"
tail_lines = 0
poll_seconds = 3
encoding = " latin1 "
palette = "Monokai"
max_buffer_bytes = 1024
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !strings.HasPrefix(cfg.LogPath, home) || !strings.HasSuffix(cfg.LogPath, "logview.log") {
		t.Fatalf("LogPath = %q, want it under HOME %q", cfg.LogPath, home)
	}
	if !strings.HasPrefix(cfg.RulesPath, home) {
		t.Fatalf("RulesPath = %q, want it under HOME %q", cfg.RulesPath, home)
	}
	if !cfg.Debug || cfg.TailLines != 0 || cfg.PollInterval != 3*time.Second {
		t.Fatalf("cfg = %#v", cfg)
	}
	if cfg.Encoding != "latin1" || cfg.Palette != "monokai" || cfg.MaxBufferBytes != 1024 {
		t.Fatalf("cfg = %#v", cfg)
	}
}

func TestLoad_RejectsBadNumbers(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	for _, content := range []string{"tail_lines = -1\n", "poll_seconds = 0\n"} {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("Load(%q) expected error", content)
		}
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("tail_lines = \"many\"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
