package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Verbose != false {
		t.Errorf("Expected Verbose to be false, got %v", cfg.Verbose)
	}
	if cfg.ShowCitations != true {
		t.Errorf("Expected ShowCitations to be true, got %v", cfg.ShowCitations)
	}
	if cfg.TUITheme != "tokyonight" {
		t.Errorf("Expected TUITheme to be 'tokyonight', got '%s'", cfg.TUITheme)
	}
	if cfg.Markdown.Style != "dark" {
		t.Errorf("Expected Markdown.Style to be 'dark', got '%s'", cfg.Markdown.Style)
	}
}

func TestGetConfigDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() returned error: %v", err)
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("GetConfigDir() returned relative path: %s", dir)
	}
	if filepath.Base(dir) != ".deploychat" {
		t.Errorf("GetConfigDir() base = %s, want .deploychat", filepath.Base(dir))
	}
}

func TestLoadConfigFileNotExists(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	// Missing file falls back to defaults
	if cfg.TUITheme != "tokyonight" {
		t.Errorf("Expected default config, got theme '%s'", cfg.TUITheme)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Verbose = true
	cfg.CopyToClipboard = true
	cfg.TUITheme = "dracula"

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() returned error: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if !loaded.Verbose || !loaded.CopyToClipboard {
		t.Errorf("loaded config = %+v", loaded)
	}
	if loaded.TUITheme != "dracula" {
		t.Errorf("Expected TUITheme 'dracula', got '%s'", loaded.TUITheme)
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".deploychat")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{invalid"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err == nil {
		t.Error("Expected error for invalid config file")
	}
	// Corrupt file still yields usable defaults
	if cfg.TUITheme != "tokyonight" {
		t.Errorf("Expected default config on parse failure, got theme '%s'", cfg.TUITheme)
	}
}
