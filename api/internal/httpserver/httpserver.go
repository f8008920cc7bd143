package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"grammar-proxy/api/internal/handle"
)

// NewMux wires the routes behind the middleware chain.
func NewMux(h *handle.Handle, log logrus.FieldLogger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/api/correct", h.Correct)
	mux.Handle("/metrics", promhttp.Handler())
	return Chain(mux, log)
}

// Chain order: RequestID -> Logging -> Metrics -> handler.
func Chain(next http.Handler, log logrus.FieldLogger) http.Handler {
	h := Metrics(next)
	h = Logging(log)(h)
	h = RequestID(h)
	return h
}

// Serve runs srv until ctx is done, then drains in-flight requests for up to
// grace.
func Serve(ctx context.Context, srv *http.Server, grace time.Duration, log logrus.FieldLogger) error {
	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
