package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvConfig lists the environment variables the server reads. Unset
// variables leave the current value untouched.
type EnvConfig struct {
	HTTPAddr                    string        `env:"GOPHTASKS_HTTP_ADDR"`
	GRPCHealthAddr              string        `env:"GOPHTASKS_GRPC_HEALTH_ADDR"`
	DatabaseDSN                 string        `env:"GOPHTASKS_DATABASE_DSN"`
	SecretKey                   string        `env:"GOPHTASKS_SECRET_KEY"`
	AccessTokenValidityDuration time.Duration `env:"GOPHTASKS_ACCESS_TOKEN_VALIDITY"`
	LogLevel                    string        `env:"GOPHTASKS_LOG_LEVEL"`
	LogFormat                   string        `env:"GOPHTASKS_LOG_FORMAT"`
	ShutdownTimeout             time.Duration `env:"GOPHTASKS_SHUTDOWN_TIMEOUT"`
	HealthCheckInterval         time.Duration `env:"GOPHTASKS_HEALTH_CHECK_INTERVAL"`
}

func parseEnv(config *Config) error {
	e := &EnvConfig{}
	if err := cleanenv.ReadEnv(e); err != nil {
		return err
	}

	setString(&config.HTTPAddr, e.HTTPAddr)
	setString(&config.GRPCHealthAddr, e.GRPCHealthAddr)
	setString(&config.DatabaseDSN, e.DatabaseDSN)
	setString(&config.SecretKey, e.SecretKey)
	setString(&config.LogLevel, e.LogLevel)
	setString(&config.LogFormat, e.LogFormat)
	setDuration(&config.AccessTokenValidityDuration, e.AccessTokenValidityDuration)
	setDuration(&config.ShutdownTimeout, e.ShutdownTimeout)
	setDuration(&config.HealthCheckInterval, e.HealthCheckInterval)
	return nil
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
