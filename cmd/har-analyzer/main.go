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

	"github.com/steveoberholzer/HARAnalyzer/internal/adapters/storage/memory"
	cfgpkg "github.com/steveoberholzer/HARAnalyzer/internal/infrastructure/config"
	"github.com/steveoberholzer/HARAnalyzer/internal/infrastructure/httpapi"
	obs "github.com/steveoberholzer/HARAnalyzer/internal/infrastructure/observability"
	"github.com/steveoberholzer/HARAnalyzer/internal/usecase"
)

func main() {
	_ = godotenv.Load() // best-effort; env vars win over .env
	cfg := cfgpkg.FromEnv()

	logger := obs.NewLogger(cfg.LogLevel, cfg.DevMode)
	logger.Info().Str("addr", cfg.Addr).Str("version", obs.Version).Msg("starting har-analyzer")

	metrics := obs.NewMetrics()

	store := memory.NewStore(cfg.MaxCaptures, cfg.CaptureTTL)
	store.OnEvict(metrics.EvictionsTotal.Inc)
	svc := usecase.NewAnalysisService(store)
	deps := &httpapi.Deps{
		Cfg:     cfg,
		Logger:  logger,
		Metrics: metrics,
		Svc:     svc,
		Monitor: httpapi.NewMonitorHub(),
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewRouterWithDeps(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Optional TLS server (net/http enables HTTP/2 by default under TLS).
	var tlsSrv *http.Server
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		tlsAddr := cfg.TLSAddr
		if tlsAddr == "" {
			tlsAddr = ":9443"
		}
		tlsSrv = &http.Server{
			Addr:              tlsAddr,
			Handler:           srv.Handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		go func() {
			logger.Info().Str("addr", tlsAddr).Msg("starting TLS server")
			if err := tlsSrv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("tls server error")
				os.Exit(1)
			}
		}()
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	if tlsSrv != nil {
		if err := tlsSrv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("tls server shutdown error")
		}
	}
	logger.Info().Msg("har-analyzer stopped")
}
