// Package config loads gateway configuration from LLMDNS_-prefixed
// environment variables, applies defaults, and validates the result.
package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds configuration values parsed from environment variables.
// It is loaded once at startup and shared read-only by all requests.
type AppConfig struct {
	// APIKey is the bearer credential for the inference service. Required.
	APIKey string `koanf:"api_key" validate:"required"`

	// Models is the ordered fallback chain of model identifiers. The env
	// value is split on commas and whitespace.
	Models []string `koanf:"models" validate:"required,min=1,dive,required"`

	// SystemPrompt is prepended to every completion request as a system
	// role message.
	SystemPrompt string `koanf:"system_prompt"`

	// BaseURL overrides the inference service endpoint. Empty means the
	// client's built-in default.
	BaseURL string `koanf:"base_url" validate:"omitempty,url"`

	// Address is the IP address the DNS server binds to.
	Address string `koanf:"address" validate:"required,bind_addr"`

	// Port is the network port the DNS server will bind to.
	Port int `koanf:"port" validate:"required,gte=1,lt=65535"`

	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`
}

// DEFAULT_APP_CONFIG defines the default gateway configuration. The API
// key has no default and must always come from the environment. The
// default model chain mirrors the fastest free OpenRouter models.
var DEFAULT_APP_CONFIG = AppConfig{
	Models: []string{
		"nvidia/nemotron-nano-9b-v2:free",
		"meituan/longcat-flash-chat:free",
		"minimax/minimax-m2:free",
	},
	SystemPrompt: "You are a helpful assistant. Keep responses concise and under 200 words.",
	Address:      "0.0.0.0",
	Port:         53,
	Env:          "prod",
	LogLevel:     "info",
}

// listKeys are the config keys whose env values are comma/space
// separated lists. Free-text values like the system prompt must never
// be split.
var listKeys = map[string]bool{
	"models": true,
}

// validBindAddr validates that the field value is a bare IP address
// suitable for binding (no port).
func validBindAddr(fl validator.FieldLevel) bool {
	return net.ParseIP(fl.Field().String()) != nil
}

// envLoader loads environment variables with the prefix "LLMDNS_",
// lowercasing keys and stripping the prefix. It is a package variable so
// tests can substitute a failing loader.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "LLMDNS_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "LLMDNS_"))
			value = strings.TrimSpace(value)

			if listKeys[key] && value != "" {
				parts := strings.FieldsFunc(value, func(r rune) bool {
					return r == ' ' || r == ','
				})
				return key, parts
			}

			return key, value
		},
	}), nil)
}

// defaultLoader loads DEFAULT_APP_CONFIG into the provided Koanf
// instance using the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers the custom "bind_addr" validation.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("bind_addr", validBindAddr)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	err := defaultLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	err = envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig

	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	err = registerValidation(validate)
	if err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	err = validate.Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
