// Package config loads the server configuration from environment
// variables. The whole surface is small: where to listen, where to
// forward, and how loudly to log.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// Port is the network port the DNS server will bind to.
	Port int `koanf:"port" validate:"required,gte=1,lt=65535"`

	// Resolver is the optional upstream resolver address (host:port).
	// When empty, the server answers every question with the synthetic
	// fixed-address record instead of forwarding.
	Resolver string `koanf:"resolver" validate:"omitempty,hostname_port"`

	// UpstreamTimeout bounds one upstream exchange, in seconds.
	UpstreamTimeout int `koanf:"upstream_timeout" validate:"required,gte=1,lte=60"`
}

// envLoader loads environment variables with the prefix "RELAY_",
// lowercasing keys and stripping the prefix. Swappable in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "RELAY_",
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, "RELAY_")), value
		},
	}), nil)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	// Load default values using structs provider.
	k.Load(structs.Provider(AppConfig{
		Env:             "prod",
		LogLevel:        "info",
		Port:            2053,
		Resolver:        "",
		UpstreamTimeout: 5,
	}, "koanf"), nil)

	err := envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
