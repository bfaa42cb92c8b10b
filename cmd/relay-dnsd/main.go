package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relaydns/relay-dns/internal/dns/common/log"
	"github.com/relaydns/relay-dns/internal/dns/config"
	"github.com/relaydns/relay-dns/internal/dns/gateways/transport"
	"github.com/relaydns/relay-dns/internal/dns/gateways/upstream"
	"github.com/relaydns/relay-dns/internal/dns/gateways/wire"
	"github.com/relaydns/relay-dns/internal/dns/services/forwarder"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "relay-dnsd"

	// Bound on graceful shutdown
	defaultShutdownTimeout = 10 * time.Second
)

// Application holds the wired components of the DNS server.
type Application struct {
	config    *config.AppConfig
	transport forwarder.ServerTransport
	forwarder *forwarder.Forwarder
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
		"app":       appName,
		"version":   version,
		"env":       cfg.Env,
		"log_level": cfg.LogLevel,
		"port":      cfg.Port,
		"resolver":  cfg.Resolver,
	}, "Starting DNS forwarder")

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

	// Start the DNS server
	if err := app.Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err}, "Server failed")
	}

	log.Info(nil, "DNS forwarder stopped gracefully")
}

// buildApplication constructs all components and wires them together.
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	// Logger is already configured globally
	logger := log.GetLogger()

	// Create DNS wire codec
	codec := wire.NewCodec(logger)

	// Build upstream gateway; a missing resolver selects the synthetic
	// fixed-answer policy in the forwarder.
	var exchanger forwarder.Exchanger
	if cfg.Resolver != "" {
		client, err := upstream.NewClient(upstream.Options{
			Server:  cfg.Resolver,
			Timeout: time.Duration(cfg.UpstreamTimeout) * time.Second,
			Codec:   codec,
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create upstream client: %w", err)
		}
		exchanger = client

		log.Info(map[string]any{
			"resolver": cfg.Resolver,
			"timeout":  cfg.UpstreamTimeout,
		}, "Upstream DNS client configured")
	} else {
		log.Info(nil, "No upstream resolver configured, answering with fixed records")
	}

	// Build service layer
	forwarderService := forwarder.New(forwarder.Options{
		Upstream: exchanger,
		Logger:   logger,
	})

	// Build transport layer
	addr := fmt.Sprintf(":%d", cfg.Port)
	udpTransport, err := transport.NewTransport(transport.TransportUDP, addr, codec, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	return &Application{
		config:    cfg,
		transport: udpTransport,
		forwarder: forwarderService,
	}, nil
}

// Run starts the DNS server and blocks until the context is cancelled.
func (app *Application) Run(ctx context.Context) error {
	if err := app.transport.Start(ctx, app.forwarder); err != nil {
		return fmt.Errorf("failed to start UDP transport: %w", err)
	}

	log.Info(map[string]any{
		"address":   app.transport.Address(),
		"transport": "UDP",
	}, "DNS server started")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info(nil, "Shutdown initiated")

	// Stop transport gracefully, bounded by the shutdown timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- app.transport.Stop()
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Warn(map[string]any{"error": err}, "Error during transport shutdown")
		}
		return nil
	case <-shutdownCtx.Done():
		return fmt.Errorf("shutdown timed out after %v", defaultShutdownTimeout)
	}
}
