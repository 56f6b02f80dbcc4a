package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/steveoberholzer/HARAnalyzer/internal/infrastructure/config"
	obs "github.com/steveoberholzer/HARAnalyzer/internal/infrastructure/observability"
	"github.com/steveoberholzer/HARAnalyzer/internal/usecase"
)

type Deps struct {
	Cfg     config.Config
	Logger  *zerolog.Logger
	Metrics *obs.Metrics
	Svc     *usecase.AnalysisService
	Monitor *MonitorHub
	Uploads *IPRateLimiter
}

func NewRouterWithDeps(d *Deps) http.Handler {
	if d.Uploads == nil {
		d.Uploads = NewIPRateLimiter(rate.Limit(d.Cfg.UploadRPS), d.Cfg.UploadBurst)
	}
	return withCORS(d.Cfg, buildBaseMux(d))
}

func buildBaseMux(d *Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry(), promhttp.HandlerOpts{}))

	mux.HandleFunc("/api/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":    "har-analyzer",
			"version": obs.Version,
			"commit":  obs.Commit,
			"time":    time.Now().UTC(),
		})
	})

	mux.HandleFunc("/api/captures", d.handleCaptures)
	mux.HandleFunc("/api/captures/", d.handleCaptureByID)
	mux.HandleFunc("/api/compare", d.handleCompare)
	mux.HandleFunc("/api/monitor/ws", d.Monitor.HandleWS)

	return mux
}

func withCORS(cfg config.Config, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
