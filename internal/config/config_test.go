package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.JMAP.SessionURL != "https://api.fastmail.com/jmap/session" {
		t.Errorf("session_url = %q", cfg.JMAP.SessionURL)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout())
	}
	if cfg.Attachment.PDFToText != "pdftotext" {
		t.Errorf("pdftotext = %q", cfg.Attachment.PDFToText)
	}
	if cfg.Attachment.ImageScaleRatio != 0.7 {
		t.Errorf("image_scale_ratio = %v", cfg.Attachment.ImageScaleRatio)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `jmap:
  session_url: https://example.com/jmap/session
  timeout_sec: 5
carddav:
  cache_max_age_sec: 60
attachment:
  text_max_bytes: 1024
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.JMAP.SessionURL != "https://example.com/jmap/session" {
		t.Errorf("session_url = %q", cfg.JMAP.SessionURL)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout())
	}
	if cfg.CacheMaxAge() != time.Minute {
		t.Errorf("cache max age = %v", cfg.CacheMaxAge())
	}
	if cfg.Attachment.TextMaxBytes != 1024 {
		t.Errorf("text_max_bytes = %d", cfg.Attachment.TextMaxBytes)
	}
	// Untouched keys keep their defaults.
	if cfg.CardDAV.BaseURL != "https://carddav.fastmail.com" {
		t.Errorf("base_url = %q", cfg.CardDAV.BaseURL)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":[not yaml"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
