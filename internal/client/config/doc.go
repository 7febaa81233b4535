// Package config loads runtime configuration for the gophtasks CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via --config (.json, .yaml, .yml, .toml).
//  3. Environment variables (GOPHTASKS_SERVER_URL, GOPHTASKS_SESSION_FILE,
//     GOPHTASKS_REQUEST_TIMEOUT).
//  4. Command-line flags, applied only when set explicitly.
//
// # File schema
//
// Durations are timex.Duration, so values can be either strings like "5s"
// or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:5050",
//	  "session_file": "/home/me/.gophtasks/session.json",
//	  "request_timeout": "10s"
//	}
package config
