package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvConfig lists the environment variables the CLI reads.
type EnvConfig struct {
	ServerURL      string        `env:"GOPHTASKS_SERVER_URL"`
	SessionFile    string        `env:"GOPHTASKS_SESSION_FILE"`
	RequestTimeout time.Duration `env:"GOPHTASKS_REQUEST_TIMEOUT"`
}

func parseEnv(config *Config) error {
	e := &EnvConfig{}
	if err := cleanenv.ReadEnv(e); err != nil {
		return err
	}
	setString(&config.ServerURL, e.ServerURL)
	setString(&config.SessionFile, e.SessionFile)
	if e.RequestTimeout != 0 {
		config.RequestTimeout = e.RequestTimeout
	}
	return nil
}
