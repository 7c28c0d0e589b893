package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/v2"
)

func TestLoad_Defaults(t *testing.T) {
	// API key is the only value without a default
	t.Setenv("LLMDNS_API_KEY", "sk-or-v1-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.APIKey != "sk-or-v1-test" {
		t.Errorf("expected APIKey=sk-or-v1-test, got %q", cfg.APIKey)
	}
	wantModels := []string{
		"nvidia/nemotron-nano-9b-v2:free",
		"meituan/longcat-flash-chat:free",
		"minimax/minimax-m2:free",
	}
	if len(cfg.Models) != len(wantModels) {
		t.Fatalf("expected %d default models, got %d", len(wantModels), len(cfg.Models))
	}
	for i, v := range wantModels {
		if cfg.Models[i] != v {
			t.Errorf("expected Models[%d]=%q, got %q", i, v, cfg.Models[i])
		}
	}
	if cfg.SystemPrompt == "" {
		t.Error("expected a default system prompt")
	}
	if cfg.Address != "0.0.0.0" {
		t.Errorf("expected Address=0.0.0.0, got %q", cfg.Address)
	}
	if cfg.Port != 53 {
		t.Errorf("expected Port=53, got %d", cfg.Port)
	}
	if cfg.Env != "prod" {
		t.Errorf("expected Env=prod, got %q", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected LogLevel=info, got %q", cfg.LogLevel)
	}
}

func TestLoad_ValidOverrides(t *testing.T) {
	t.Setenv("LLMDNS_API_KEY", "sk-or-v1-test")
	t.Setenv("LLMDNS_MODELS", "m1, m2 m3")
	t.Setenv("LLMDNS_SYSTEM_PROMPT", "Answer in one word.")
	t.Setenv("LLMDNS_BASE_URL", "http://localhost:8080/api/v1/chat/completions")
	t.Setenv("LLMDNS_ADDRESS", "127.0.0.1")
	t.Setenv("LLMDNS_PORT", "5353")
	t.Setenv("LLMDNS_ENV", "dev")
	t.Setenv("LLMDNS_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	wantModels := []string{"m1", "m2", "m3"}
	if len(cfg.Models) != len(wantModels) {
		t.Fatalf("expected %d models, got %v", len(wantModels), cfg.Models)
	}
	for i, v := range wantModels {
		if cfg.Models[i] != v {
			t.Errorf("expected Models[%d]=%q, got %q", i, v, cfg.Models[i])
		}
	}
	// the system prompt contains spaces and must not be split into a list
	if cfg.SystemPrompt != "Answer in one word." {
		t.Errorf("expected system prompt to survive verbatim, got %q", cfg.SystemPrompt)
	}
	if cfg.BaseURL != "http://localhost:8080/api/v1/chat/completions" {
		t.Errorf("expected BaseURL override, got %q", cfg.BaseURL)
	}
	if cfg.Address != "127.0.0.1" {
		t.Errorf("expected Address=127.0.0.1, got %q", cfg.Address)
	}
	if cfg.Port != 5353 {
		t.Errorf("expected Port=5353, got %d", cfg.Port)
	}
	if cfg.Env != "dev" {
		t.Errorf("expected Env=dev, got %q", cfg.Env)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected LogLevel=debug, got %q", cfg.LogLevel)
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error for missing API key")
	}
	if !strings.Contains(err.Error(), "APIKey") {
		t.Errorf("expected error to mention APIKey, got %v", err)
	}
}

func TestLoad_InvalidAddress(t *testing.T) {
	t.Setenv("LLMDNS_API_KEY", "sk-or-v1-test")
	t.Setenv("LLMDNS_ADDRESS", "not-an-ip")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error for invalid bind address")
	}
	if !strings.Contains(err.Error(), "bind_addr") {
		t.Errorf("expected bind_addr validation failure, got %v", err)
	}
}

func TestLoad_InvalidBaseURL(t *testing.T) {
	t.Setenv("LLMDNS_API_KEY", "sk-or-v1-test")
	t.Setenv("LLMDNS_BASE_URL", "not a url")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error for invalid base URL")
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("LLMDNS_API_KEY", "sk-or-v1-test")
	t.Setenv("LLMDNS_PORT", "70000")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error for out-of-range port")
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("LLMDNS_API_KEY", "sk-or-v1-test")
	t.Setenv("LLMDNS_ENV", "staging")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error for unknown env")
	}
}

func TestLoad_EnvLoaderFailure(t *testing.T) {
	orig := envLoader
	defer func() { envLoader = orig }()
	envLoader = func(k *koanf.Koanf) error {
		return errors.New("boom")
	}

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "error loading env") {
		t.Errorf("expected env loader error, got %v", err)
	}
}

func TestLoad_RegisterValidationFailure(t *testing.T) {
	t.Setenv("LLMDNS_API_KEY", "sk-or-v1-test")

	orig := registerValidation
	defer func() { registerValidation = orig }()
	registerValidation = func(v *validator.Validate) error {
		return errors.New("boom")
	}

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "error registering validation") {
		t.Errorf("expected registration error, got %v", err)
	}
}
