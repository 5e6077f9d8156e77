package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Version       string        `yaml:"version" json:"version"`
	Server        Server        `yaml:"server" json:"server"`
	Storage       Storage       `yaml:"storage" json:"storage"`
	Import        Import        `yaml:"import" json:"import"`
	Announcements Announcements `yaml:"announcements" json:"announcements"`
}

type Server struct {
	Addr string `yaml:"addr" json:"addr"`
	// CORSOrigins is the browser origin allowlist for the API.
	CORSOrigins []string `yaml:"cors_origins" json:"cors_origins"`
}

type Storage struct {
	DataDir string `yaml:"data_dir" json:"data_dir"`
	// CacheTTLSeconds bounds how long a loaded snapshot is served without
	// re-reading the backing document.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds" json:"cache_ttl_seconds"`
}

type Import struct {
	MaxUploadBytes int64 `yaml:"max_upload_bytes" json:"max_upload_bytes"`
	// MaxErrors caps how many per-item error messages an import reports.
	MaxErrors int `yaml:"max_errors" json:"max_errors"`
}

type Announcements struct {
	// ListLimit is how many task descriptions an announcement spells out.
	ListLimit int `yaml:"list_limit" json:"list_limit"`
}

func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Storage.CacheTTLSeconds <= 0 {
		c.Storage.CacheTTLSeconds = 10
	}
	if c.Import.MaxUploadBytes <= 0 {
		c.Import.MaxUploadBytes = 10 << 20
	}
	if c.Import.MaxErrors <= 0 {
		c.Import.MaxErrors = 10
	}
	if c.Announcements.ListLimit <= 0 {
		c.Announcements.ListLimit = 3
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	return &c, nil
}
