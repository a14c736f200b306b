// Package config loads the fastmailctl configuration from a YAML
// file, with defaults for every key so a missing file is fine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// JMAPConfig holds settings for the JMAP client.
type JMAPConfig struct {
	// SessionURL is the JMAP session endpoint.
	SessionURL string `mapstructure:"session_url" yaml:"session_url"`

	// TimeoutSec bounds each HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// CardDAVConfig holds settings for the contacts subsystem.
type CardDAVConfig struct {
	// BaseURL is the CardDAV server root.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// CachePath is the SQLite contact cache location.
	CachePath string `mapstructure:"cache_path" yaml:"cache_path"`

	// CacheMaxAgeSec is how long the cache stays fresh; 0 means it
	// only refreshes when forced.
	CacheMaxAgeSec int `mapstructure:"cache_max_age_sec" yaml:"cache_max_age_sec"`
}

// AttachmentConfig holds decoder tool names and the size bounds the
// tool adapter applies to resolved content.
type AttachmentConfig struct {
	PDFToText string `mapstructure:"pdftotext" yaml:"pdftotext"`
	Antiword  string `mapstructure:"antiword" yaml:"antiword"`
	Tesseract string `mapstructure:"tesseract" yaml:"tesseract"`

	// ImageMaxBytes bounds images returned through the tool adapter.
	ImageMaxBytes int `mapstructure:"image_max_bytes" yaml:"image_max_bytes"`

	// TextMaxBytes bounds extracted text returned through the tool
	// adapter.
	TextMaxBytes int `mapstructure:"text_max_bytes" yaml:"text_max_bytes"`

	// ImageScaleRatio is the per-step downscale factor for oversized
	// images.
	ImageScaleRatio float64 `mapstructure:"image_scale_ratio" yaml:"image_scale_ratio"`
}

// Config is the top-level application configuration.
type Config struct {
	JMAP       JMAPConfig       `mapstructure:"jmap" yaml:"jmap"`
	CardDAV    CardDAVConfig    `mapstructure:"carddav" yaml:"carddav"`
	Attachment AttachmentConfig `mapstructure:"attachment" yaml:"attachment"`
}

// Timeout returns the HTTP timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.JMAP.TimeoutSec) * time.Second
}

// CacheMaxAge returns the contact cache freshness window.
func (c *Config) CacheMaxAge() time.Duration {
	return time.Duration(c.CardDAV.CacheMaxAgeSec) * time.Second
}

// DefaultPath returns the default path for the configuration file,
// located at ~/.config/fastmailctl/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "fastmailctl", "config.yaml")
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "contacts.db")
	}
	return filepath.Join(home, ".config", "fastmailctl", "contacts.db")
}

// Load reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns the default configuration.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("jmap.session_url", "https://api.fastmail.com/jmap/session")
	v.SetDefault("jmap.timeout_sec", 30)
	v.SetDefault("carddav.base_url", "https://carddav.fastmail.com")
	v.SetDefault("carddav.cache_path", defaultCachePath())
	v.SetDefault("carddav.cache_max_age_sec", 3600)
	v.SetDefault("attachment.pdftotext", "pdftotext")
	v.SetDefault("attachment.antiword", "antiword")
	v.SetDefault("attachment.tesseract", "tesseract")
	v.SetDefault("attachment.image_max_bytes", 768*1024)
	v.SetDefault("attachment.text_max_bytes", 256*1024)
	v.SetDefault("attachment.image_scale_ratio", 0.7)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return unmarshal(v, path)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return unmarshal(v, path)
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return unmarshal(v, path)
}

func unmarshal(v *viper.Viper, path string) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
