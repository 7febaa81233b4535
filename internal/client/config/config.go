package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
)

// Config holds runtime settings for the gophtasks CLI.
type Config struct {
	ServerURL      string
	SessionFile    string
	RequestTimeout time.Duration
}

// userHomeDir is a test seam for os.UserHomeDir.
var userHomeDir = os.UserHomeDir

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:5050"
	c.SessionFile = defaultSessionFile()
	c.RequestTimeout = 10 * time.Second
}

func defaultSessionFile() string {
	home, err := userHomeDir()
	if err != nil || home == "" {
		return ".gophtasks-session.json"
	}
	return filepath.Join(home, ".gophtasks", "session.json")
}

// LoadConfig builds a Config from defaults, the optional config file, the
// environment and fs. Later sources take precedence over earlier ones.
// fs may be nil.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	var path string
	if fs != nil && fs.Lookup(FlagConfig) != nil {
		p, err := fs.GetString(FlagConfig)
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := parseFile(cfg, path); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if fs != nil {
		if err := applyFlags(cfg, fs); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
