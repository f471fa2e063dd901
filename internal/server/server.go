// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package server exposes the current descriptor over HTTP.
package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ManuGH/twconfig/internal/config"
	xglog "github.com/ManuGH/twconfig/internal/log"
	"github.com/ManuGH/twconfig/internal/validate"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DescriptorSource supplies the descriptor to serve. *config.Holder
// satisfies it.
type DescriptorSource interface {
	Get() config.Descriptor
}

// Config holds HTTP server settings.
type Config struct {
	ListenAddr      string
	RateLimit       int
	RateWindow      time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the settings used by `twconfig watch --listen`.
func DefaultConfig() Config {
	return Config{
		ListenAddr:      "127.0.0.1:8787",
		RateLimit:       60,
		RateWindow:      time.Minute,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Validate checks the settings before a listener is opened.
func (c Config) Validate() error {
	v := validate.New()
	v.NotEmpty("listen", c.ListenAddr)
	if c.RateLimit < 0 {
		v.AddError("rate-limit", "must not be negative", c.RateLimit)
	}
	return v.Err()
}

var contentTypes = map[config.Format]string{
	config.FormatJSON: "application/json",
	config.FormatYAML: "application/yaml",
	config.FormatJS:   "text/javascript; charset=utf-8",
}

// NewRouter builds the HTTP handler.
func NewRouter(src DescriptorSource, cfg Config) *chi.Mux {
	r := chi.NewRouter()
	r.Use(Recoverer)
	r.Use(RequestID)
	r.Use(SecurityHeaders)
	r.Use(AccessLog)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if cfg.RateLimit > 0 && cfg.RateWindow > 0 {
			r.Use(RateLimit(cfg.RateLimit, cfg.RateWindow))
		}
		r.Get("/descriptor", handleDescriptor(src))
	})
	return r
}

func handleDescriptor(src DescriptorSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := xglog.RequestIDFromContext(r.Context())

		format := config.FormatJSON
		if raw := r.URL.Query().Get("format"); raw != "" {
			f, err := config.ParseFormat(raw)
			if err != nil {
				writeJSONError(w, http.StatusBadRequest, "unsupported_format", err.Error(), reqID)
				return
			}
			format = f
		}

		body, err := config.Marshal(src.Get(), format)
		if err != nil {
			xglog.FromContext(r.Context()).Error().Err(err).
				Str(xglog.FieldEvent, "descriptor.encode_failed").
				Str(xglog.FieldFormat, string(format)).
				Msg("failed to encode descriptor")
			writeJSONError(w, http.StatusInternalServerError, "encode_failed", "descriptor could not be encoded", reqID)
			return
		}

		sum := sha256.Sum256(body)
		etag := `"` + hex.EncodeToString(sum[:8]) + `"`
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "no-cache")
		if etagMatches(r.Header.Get("If-None-Match"), etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("Content-Type", contentTypes[format])
		_, _ = w.Write(body)
	}
}

// etagMatches applies the weak comparison If-None-Match uses: any listed
// tag, weak or strong, or "*".
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		c := strings.TrimSpace(candidate)
		if c == "*" || strings.TrimPrefix(c, "W/") == etag {
			return true
		}
	}
	return false
}

// Serve runs an HTTP server on ln until ctx is cancelled, then shuts it
// down gracefully.
func Serve(ctx context.Context, ln net.Listener, cfg Config, handler http.Handler) error {
	logger := xglog.WithComponent("server")
	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout / 2,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str(xglog.FieldEvent, "server.listening").
			Str("addr", ln.Addr().String()).
			Msg("descriptor server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Error().Err(err).Str(xglog.FieldEvent, "server.failed").Msg("descriptor server failed")
			return fmt.Errorf("descriptor server: %w", err)
		}
		return nil
	case <-ctx.Done():
		timeout := cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown descriptor server: %w", err)
		}
		<-errCh
		logger.Info().Str(xglog.FieldEvent, "server.stopped").Msg("descriptor server stopped")
		return nil
	}
}

// ListenAndServe listens on cfg.ListenAddr and calls Serve.
func ListenAndServe(ctx context.Context, cfg Config, handler http.Handler) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
	}
	return Serve(ctx, ln, cfg, handler)
}
