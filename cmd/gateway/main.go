package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"lark-base-gateway/internal/ai"
	"lark-base-gateway/internal/command"
	"lark-base-gateway/internal/config"
	"lark-base-gateway/internal/dedup"
	"lark-base-gateway/internal/gateway"
	"lark-base-gateway/internal/handler"
	"lark-base-gateway/internal/lark"
	"lark-base-gateway/internal/ledger"
	metricsPkg "lark-base-gateway/internal/metrics"
	"lark-base-gateway/internal/scheduler"
	"lark-base-gateway/internal/server"
)

func main() {
	// Configure logging
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	logrus.Info("Starting Lark Base Gateway")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Configuration validation failed: %v", err)
	}

	// Initialize metrics
	metrics := metricsPkg.NewMetrics()

	// Initialize Lark clients. Missing credentials degrade messaging and
	// table commands instead of blocking startup.
	var tokens oauth2.TokenSource
	var tables command.TableReader
	var replier gateway.Replier
	if cfg.Lark.MessagingEnabled() {
		tokens, err = lark.NewTokenBroker(&cfg.Lark)
		if err != nil {
			logrus.Fatalf("Failed to create token broker: %v", err)
		}
		replier = lark.NewMessenger(&cfg.Lark, tokens)
		if cfg.Lark.BitableEnabled() {
			tables = lark.NewBaseClient(&cfg.Lark, tokens)
		} else {
			logrus.Warn("Bitable app token not configured, table commands disabled")
		}
	} else {
		logrus.Warn("Lark app credentials not configured, messaging disabled")
	}

	// Initialize language-model client. Without a key the router answers
	// free text with a fixed notice instead of making doomed API calls.
	var llm command.Completer
	if cfg.OpenAI.Enabled() {
		llm = ai.NewClient(&cfg.OpenAI, metrics)
	} else {
		logrus.Warn("OpenAI API key not configured, free-text replies disabled")
	}

	// Initialize processed-message ledger
	var store ledger.Store
	if cfg.Ledger.Enabled() {
		store, err = ledger.NewGCSStore(context.Background(), &cfg.Ledger)
		if err != nil {
			logrus.Warnf("Failed to create GCS ledger store, falling back to memory: %v", err)
			store = ledger.NewMemoryStore()
		}
	} else {
		logrus.Warn("Ledger bucket not configured, processed messages are not durable")
		store = ledger.NewMemoryStore()
	}

	sync := scheduler.NewLedgerSync(&cfg.Ledger, store, metrics)

	// Initialize gateway
	dedupCache := dedup.NewCache(cfg.Dedup.TTL)
	router := command.NewRouter(tables, llm)
	gw := gateway.New(dedupCache, router, replier, sync, metrics)

	// Initialize HTTP handlers
	handlers := handler.NewHandlers(cfg, gw, tables, sync)

	// Setup HTTP server
	r := server.SetupRouter(handlers)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start ledger sync
	if err := sync.Start(); err != nil {
		logrus.Fatalf("Failed to start ledger sync: %v", err)
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server first so no new events race the final flush
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	// Stop ledger sync (flushes once more)
	if err := sync.Stop(); err != nil {
		logrus.Errorf("Failed to stop ledger sync: %v", err)
	}

	// Wait for an in-flight flush to finish
	sync.Wait()

	logrus.Info("Server stopped gracefully")
}
