package config

import (
	"github.com/spf13/pflag"
)

const (
	FlagConfig         = "config"
	FlagServerURL      = "server"
	FlagSessionFile    = "session-file"
	FlagRequestTimeout = "timeout"
)

// BindFlags registers the client flags on fs.
//
//	-c string     config file (.json, .yaml, .yml, .toml)
//	-a string     base URL of the gophtasks server
//	--session-file string
//	--timeout duration
func BindFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "config file (.json, .yaml, .yml, .toml)")
	fs.StringP(FlagServerURL, "a", d.ServerURL, "base URL of the gophtasks server")
	fs.String(FlagSessionFile, d.SessionFile, "where the login session is stored")
	fs.Duration(FlagRequestTimeout, d.RequestTimeout, "per-request timeout")
}

func applyFlags(config *Config, fs *pflag.FlagSet) error {
	for name, dst := range map[string]*string{
		FlagServerURL:   &config.ServerURL,
		FlagSessionFile: &config.SessionFile,
	} {
		if fs.Lookup(name) == nil || !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if fs.Lookup(FlagRequestTimeout) != nil && fs.Changed(FlagRequestTimeout) {
		v, err := fs.GetDuration(FlagRequestTimeout)
		if err != nil {
			return err
		}
		config.RequestTimeout = v
	}
	return nil
}
