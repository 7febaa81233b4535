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

// FileConfig is the on-disk shape of the configuration. It uses
// timex.Duration for interval fields, which allows both "24h" strings and
// integer nanoseconds. Absent fields leave the current value untouched.
type FileConfig struct {
	HTTPAddr                    string          `json:"http_addr" yaml:"http_addr" toml:"http_addr"`
	GRPCHealthAddr              *string         `json:"grpc_health_addr" yaml:"grpc_health_addr" toml:"grpc_health_addr"`
	DatabaseDSN                 string          `json:"database_dsn" yaml:"database_dsn" toml:"database_dsn"`
	SecretKey                   string          `json:"secret_key" yaml:"secret_key" toml:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration" toml:"access_token_validity_duration"`
	LogLevel                    string          `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat                   string          `json:"log_format" yaml:"log_format" toml:"log_format"`
	ShutdownTimeout             *timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	HealthCheckInterval         *timex.Duration `json:"health_check_interval" yaml:"health_check_interval" toml:"health_check_interval"`
}

// parseFile loads path, picking the decoder by extension
// (.json, .yaml/.yml, .toml). An empty path loads nothing.
func parseFile(config *Config, path string) error {

	// nothing to load
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

	c.applyTo(config)
	return nil
}

func (c *FileConfig) applyTo(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	if c.GRPCHealthAddr != nil {
		config.GRPCHealthAddr = *c.GRPCHealthAddr
	}
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.HealthCheckInterval != nil {
		config.HealthCheckInterval = c.HealthCheckInterval.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
