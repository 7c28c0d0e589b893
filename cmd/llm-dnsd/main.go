package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/llmdns/llm-dns/internal/dns/common/clock"
	"github.com/llmdns/llm-dns/internal/dns/common/log"
	"github.com/llmdns/llm-dns/internal/dns/common/textchunk"
	"github.com/llmdns/llm-dns/internal/dns/config"
	"github.com/llmdns/llm-dns/internal/dns/gateways/inference"
	"github.com/llmdns/llm-dns/internal/dns/gateways/transport"
	"github.com/llmdns/llm-dns/internal/dns/gateways/wire"
	"github.com/llmdns/llm-dns/internal/dns/services/gateway"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "llm-dnsd"

	// Default timeouts
	defaultInferenceTimeout = 30 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
)

// Application holds all the components of the DNS gateway
type Application struct {
	config    *config.AppConfig
	transport *transport.UDPTransport
	gateway   *gateway.Gateway
}

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Configure global logging
	err = log.Configure(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}

	log.Info(map[string]any{
		"version":   version,
		"env":       cfg.Env,
		"log_level": cfg.LogLevel,
		"address":   cfg.Address,
		"port":      cfg.Port,
		"models":    cfg.Models,
		"api_key":   maskAPIKey(cfg.APIKey),
	}, "Starting "+appName)

	// Build application with all dependencies
	app, err := buildApplication(cfg)
	if err != nil {
		log.Fatal(map[string]any{"error": err}, "Failed to build application")
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info(map[string]any{"signal": sig.String()}, "Shutdown signal received")
		cancel()
	}()

	// Start the DNS gateway
	if err := app.Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err}, "Server failed")
	}

	log.Info(nil, appName+" stopped gracefully")
}

// buildApplication constructs all components and wires them together
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	// Initialize logger (already configured globally)
	logger := log.GetLogger()

	// Create DNS wire codec
	codec := wire.NewUDPCodec(logger)

	// Create inference client with the configured model fallback chain
	completions, err := inference.New(inference.Options{
		APIKey:       cfg.APIKey,
		Models:       cfg.Models,
		SystemPrompt: cfg.SystemPrompt,
		BaseURL:      cfg.BaseURL,
		Timeout:      defaultInferenceTimeout,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create inference client: %w", err)
	}

	// Build service layer
	gatewayService := gateway.New(gateway.Options{
		Completions: completions,
		Chunker:     textchunk.New(),
		Clock:       &clock.RealClock{},
		Logger:      logger,
	})

	// Build transport layer
	addr := fmt.Sprintf("%s:%d", cfg.Address, cfg.Port)
	udpTransport := transport.NewUDPTransport(addr, codec, logger)

	return &Application{
		config:    cfg,
		transport: udpTransport,
		gateway:   gatewayService,
	}, nil
}

// Run starts the DNS gateway and blocks until context is cancelled
func (app *Application) Run(ctx context.Context) error {
	// Start UDP transport
	if err := app.transport.Start(ctx, app.gateway); err != nil {
		return fmt.Errorf("failed to start UDP transport: %w", err)
	}

	log.Info(map[string]any{
		"address":   app.transport.Address(),
		"transport": "UDP",
	}, "DNS gateway started")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info(nil, "Shutdown initiated")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	// Stop transport gracefully
	if err := app.transport.Stop(); err != nil {
		log.Warn(map[string]any{"error": err}, "Error during transport shutdown")
	}

	// Wait for shutdown completion or timeout
	done := make(chan struct{})
	go func() {
		// In-flight inference calls finish or time out on their own
		close(done)
	}()

	select {
	case <-done:
		log.Info(nil, "Graceful shutdown completed")
		return nil
	case <-shutdownCtx.Done():
		log.Warn(map[string]any{"timeout": defaultShutdownTimeout}, "Shutdown timeout exceeded")
		return fmt.Errorf("shutdown timeout")
	}
}

// maskAPIKey keeps the first few characters of a credential visible for
// log correlation and hides the rest.
func maskAPIKey(key string) string {
	const visible = 8
	if len(key) <= visible {
		return strings.Repeat("*", len(key))
	}
	return key[:visible] + strings.Repeat("*", len(key)-visible)
}
