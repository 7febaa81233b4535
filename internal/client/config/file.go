package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dmitrijs2005/gophtasks/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the client configuration.
type FileConfig struct {
	ServerURL      string          `json:"server_url" yaml:"server_url" toml:"server_url"`
	SessionFile    string          `json:"session_file" yaml:"session_file" toml:"session_file"`
	RequestTimeout *timex.Duration `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
}

func parseFile(config *Config, path string) error {
	if path == "" {
		return nil
	}

	c := &FileConfig{}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(path, c); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	case ".json", ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if ext == ".json" {
			err = json.Unmarshal(data, c)
		} else {
			err = yaml.Unmarshal(data, c)
		}
		if err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file extension %q", ext)
	}

	setString(&config.ServerURL, c.ServerURL)
	setString(&config.SessionFile, c.SessionFile)
	if c.RequestTimeout != nil {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
