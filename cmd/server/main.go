// Command server exposes the clinical intelligence engine over HTTP.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/procheck/medintel"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (JSON or YAML)")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))

	if *addr != "" {
		cfg.Addr = *addr
	}

	engine, err := medintel.New(medintel.Config{
		GraphPath:     cfg.GraphPath,
		TopDiagnoses:  cfg.TopDiagnoses,
		MinEdgeWeight: cfg.MinEdgeWeight,
	})
	if err != nil {
		slog.Error("creating engine", "error", err)
		os.Exit(1)
	}
	slog.Info("knowledge graph loaded",
		"path", cfg.GraphPath,
		"concepts", engine.Store().Len(),
	)

	h := newHandler(engine)
	mux := http.NewServeMux()

	mux.HandleFunc("POST /analyze", h.handleAnalyze)
	mux.HandleFunc("POST /suggestions", h.handleSuggestions)
	mux.HandleFunc("GET /concepts", h.handleListConcepts)
	mux.HandleFunc("GET /concepts/{id}", h.handleGetConcept)
	mux.HandleFunc("GET /health", h.handleHealth)

	handler := chain(mux,
		recoverPanics,
		cors(cfg.CORSOrigins),
		bearerAuth(cfg.APIKey, "/health"),
		requestLog,
	)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
