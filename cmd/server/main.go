package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/agenthands/cartoonist/internal/config"
	"github.com/agenthands/cartoonist/internal/logging"
	"github.com/agenthands/cartoonist/internal/server"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logging.New("info").Fatal("failed to load configuration", "err", err)
	}
	logger := logging.New(cfg.Log.Level)
	if envErr != nil {
		logger.Debug("no .env file found, using environment and config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build server", "err", err)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app.Server.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port, "llm", cfg.LLM.Provider, "image", cfg.Image.Provider, "news", cfg.News.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
