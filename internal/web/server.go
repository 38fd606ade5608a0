// Package web serves the browser dashboard: threshold sliders, table
// upload, rule table, usage chart and placement suggestions.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/KaramelBytes/rxslot-cli/internal/mining"
	"github.com/KaramelBytes/rxslot-cli/internal/pipeline"
	"github.com/KaramelBytes/rxslot-cli/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Options configures the dashboard server.
type Options struct {
	// Base supplies the default source, column and thresholds; requests
	// override thresholds and uploads override the source.
	Base    pipeline.Config
	Miner   mining.Miner
	Locale  string
	Version string
	Bind    string
	Port    int
}

// NewHandler builds the routed handler, wrapped with security headers.
func NewHandler(opts Options) http.Handler {
	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(fmt.Sprintf("template sub-FS: %v", err))
	}
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(fmt.Sprintf("static sub-FS: %v", err))
	}

	miner := opts.Miner
	if miner == nil {
		miner = &mining.Apriori{}
	}
	h := &Handlers{
		base:     opts.Base,
		miner:    miner,
		msg:      report.For(opts.Locale),
		renderer: NewRenderer(templateSub, opts.Version, opts.Locale),
		uploads:  &uploadStore{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.HandleDashboard)
	mux.HandleFunc("GET /report", h.HandleReport)
	mux.HandleFunc("GET /api/result", h.HandleResultJSON)
	mux.HandleFunc("POST /upload", h.HandleUpload)
	mux.HandleFunc("POST /upload/clear", h.HandleUploadClear)
	mux.HandleFunc("POST /upload/sample", h.HandleUploadSample)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	return securityHeaders(mux)
}

// NewServer creates the HTTP server for the dashboard.
func NewServer(opts Options) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", opts.Bind, opts.Port),
		Handler:           NewHandler(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'none'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func Run(ctx context.Context, srv *http.Server) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	slog.Info("dashboard running", "url", "http://"+srv.Addr)
	if strings.HasPrefix(srv.Addr, "0.0.0.0") || strings.HasPrefix(srv.Addr, "[::]") || strings.HasPrefix(srv.Addr, ":") {
		slog.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
