package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"grammar-proxy/api/internal/app"
	"grammar-proxy/api/internal/config"
	"grammar-proxy/api/internal/handle"
	"grammar-proxy/api/internal/httpserver"
)

func main() {
	// .env is optional; real env vars win
	_ = godotenv.Load()

	cfg := config.Load()
	log := cfg.NewLogger()

	svc, engines, err := app.NewService(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("startup failed")
	}
	h := handle.New(svc, engines, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpserver.NewMux(h, log),
		ReadHeaderTimeout: 10 * time.Second,
		// provider timeout plus headroom for retries' backoff and encoding
		WriteTimeout: cfg.ProviderTimeout + 15*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := httpserver.Serve(ctx, srv, 10*time.Second, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
	log.Info("bye")
}
