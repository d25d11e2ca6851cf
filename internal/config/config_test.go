package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Expected default port 3000, got %d", cfg.Server.Port)
	}
	if cfg.Server.BodyLimit != "500M" {
		t.Errorf("Expected default body limit 500M, got %s", cfg.Server.BodyLimit)
	}
	if cfg.Processing.SessionTimeoutMinutes != 30 {
		t.Errorf("Expected default session timeout 30, got %d", cfg.Processing.SessionTimeoutMinutes)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	yaml := `
server:
  port: 8080
  bindAddress: "127.0.0.1"
storage:
  uploadsDirectory: "/tmp/gstlog-uploads"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("Writing fixture failed: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.GetServerAddr() != "127.0.0.1:8080" {
		t.Errorf("Expected 127.0.0.1:8080, got %s", cfg.GetServerAddr())
	}
	if cfg.GetUploadDir() != "/tmp/gstlog-uploads" {
		t.Errorf("Expected override upload dir, got %s", cfg.GetUploadDir())
	}

	// Keys absent from the file keep defaults
	if cfg.Server.ReadTimeout != 30 {
		t.Errorf("Expected default read timeout, got %d", cfg.Server.ReadTimeout)
	}
	if cfg.Storage.DataDirectory != "./data" {
		t.Errorf("Expected default data directory, got %s", cfg.Storage.DataDirectory)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a mapping"), 0644); err != nil {
		t.Fatalf("Writing fixture failed: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Errorf("Expected error for malformed config")
	}
}
