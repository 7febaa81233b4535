package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Flag names shared with the command tree.
const (
	FlagConfig          = "config"
	FlagHTTPAddr        = "http-addr"
	FlagGRPCHealthAddr  = "grpc-addr"
	FlagDatabaseDSN     = "database-dsn"
	FlagSecretKey       = "secret-key"
	FlagTokenValidity   = "token-validity"
	FlagLogLevel        = "log-level"
	FlagLogFormat       = "log-format"
	FlagShutdownTimeout = "shutdown-timeout"
)

// BindFlags registers the server flags on fs. Defaults shown in help are
// the built-in ones; only flags the user actually sets override the file
// and the environment.
//
// Supported flags (short forms):
//
//	-c string     config file (.json, .yaml, .yml, .toml)
//	-a string     HTTP bind address (e.g., ":5050")
//	-g string     gRPC health bind address
//	-d string     PostgreSQL DSN
//	-s string     JWT HMAC secret key
//	-t duration   access token validity (e.g., "24h")
func BindFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "config file (.json, .yaml, .yml, .toml)")
	fs.StringP(FlagHTTPAddr, "a", d.HTTPAddr, "address and port to run the HTTP API")
	fs.StringP(FlagGRPCHealthAddr, "g", d.GRPCHealthAddr, "address and port to run the gRPC health endpoint (empty disables it)")
	fs.StringP(FlagDatabaseDSN, "d", d.DatabaseDSN, "database DSN")
	fs.StringP(FlagSecretKey, "s", d.SecretKey, "secret key")
	fs.DurationP(FlagTokenValidity, "t", d.AccessTokenValidityDuration, "access token validity")
	fs.String(FlagLogLevel, d.LogLevel, "log level (debug, info, warn, error)")
	fs.String(FlagLogFormat, d.LogFormat, "log format (json, text)")
	fs.Duration(FlagShutdownTimeout, d.ShutdownTimeout, "graceful shutdown timeout")
}

func applyFlags(config *Config, fs *pflag.FlagSet) error {
	strs := map[string]*string{
		FlagHTTPAddr:       &config.HTTPAddr,
		FlagGRPCHealthAddr: &config.GRPCHealthAddr,
		FlagDatabaseDSN:    &config.DatabaseDSN,
		FlagSecretKey:      &config.SecretKey,
		FlagLogLevel:       &config.LogLevel,
		FlagLogFormat:      &config.LogFormat,
	}
	for name, dst := range strs {
		if fs.Lookup(name) == nil || !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	durations := map[string]*time.Duration{
		FlagTokenValidity:   &config.AccessTokenValidityDuration,
		FlagShutdownTimeout: &config.ShutdownTimeout,
	}
	for name, dst := range durations {
		if fs.Lookup(name) == nil || !fs.Changed(name) {
			continue
		}
		v, err := fs.GetDuration(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	return nil
}
