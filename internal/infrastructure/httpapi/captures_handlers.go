package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/steveoberholzer/HARAnalyzer/internal/adapters/har"
	"github.com/steveoberholzer/HARAnalyzer/internal/domain"
	"github.com/steveoberholzer/HARAnalyzer/internal/usecase"
)

type uploadResponse struct {
	Capture domain.Capture     `json:"capture"`
	Report  domain.TraceReport `json:"report"`
}

type listResponse struct {
	Items []domain.Capture `json:"items"`
	Total int              `json:"total"`
}

// handleCaptures serves GET /api/captures (list) and POST /api/captures
// (upload a raw HAR document).
func (d *Deps) handleCaptures(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		f := usecase.CaptureFilter{
			Q:      r.URL.Query().Get("q"),
			Limit:  queryInt(r, "limit", 100),
			Offset: queryInt(r, "offset", 0),
		}
		items, total, err := d.Svc.List(r.Context(), f)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "CAPTURES_LIST_FAILED", err.Error(), nil)
			return
		}
		writeJSON(w, http.StatusOK, listResponse{Items: items, Total: total})
	case http.MethodPost:
		withRateLimit(d.Uploads, d.handleUpload)(w, r)
	case http.MethodDelete:
		if err := d.Svc.ClearAll(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "CAPTURES_CLEAR_FAILED", err.Error(), nil)
			return
		}
		d.Monitor.Broadcast(MonitorEvent{Type: "cleared"})
		d.syncCaptureGauge(r.Context())
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "", "method not allowed", nil)
	}
}

func (d *Deps) handleUpload(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, d.Cfg.MaxBodyBytes)
	raw, err := io.ReadAll(body)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "capture exceeds the configured size limit", nil)
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = r.Header.Get("X-File-Name")
	}
	if name == "" {
		name = "capture.har"
	}
	c, report, err := d.Svc.Upload(r.Context(), name, raw)
	if err != nil {
		d.Metrics.ParseFailures.Inc()
		writeError(w, http.StatusBadRequest, "HAR_PARSE_FAILED", err.Error(), nil)
		return
	}
	d.Metrics.UploadsTotal.Inc()
	d.Metrics.AnalysesTotal.Inc()
	d.Logger.Info().Str("id", c.ID).Str("file", c.FileName).Int("entries", c.EntryCount).Msg("capture uploaded")
	d.Monitor.Broadcast(MonitorEvent{Type: "uploaded", ID: c.ID, File: c.FileName})
	d.syncCaptureGauge(r.Context())
	writeJSON(w, http.StatusCreated, uploadResponse{Capture: c, Report: report})
}

// handleCaptureByID routes /api/captures/{id} and its sub-resources
// (domains, buckets, trim).
func (d *Deps) handleCaptureByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/captures/")
	id, sub := rest, ""
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		id, sub = rest[:i], strings.Trim(rest[i+1:], "/")
	}
	if id == "" {
		writeError(w, http.StatusNotFound, "CAPTURE_NOT_FOUND", "missing capture id", nil)
		return
	}
	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			report, err := d.Svc.Report(r.Context(), id)
			if err != nil {
				d.writeServiceError(w, id, err)
				return
			}
			d.Metrics.AnalysesTotal.Inc()
			writeJSON(w, http.StatusOK, report)
		case http.MethodDelete:
			if err := d.Svc.Delete(r.Context(), id); err != nil {
				writeError(w, http.StatusInternalServerError, "CAPTURE_DELETE_FAILED", err.Error(), nil)
				return
			}
			d.Monitor.Broadcast(MonitorEvent{Type: "deleted", ID: id})
			d.syncCaptureGauge(r.Context())
			w.WriteHeader(http.StatusNoContent)
		default:
			writeError(w, http.StatusMethodNotAllowed, "", "method not allowed", nil)
		}
	case "domains":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "", "method not allowed", nil)
			return
		}
		rollups, err := d.Svc.Domains(r.Context(), id)
		if err != nil {
			d.writeServiceError(w, id, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"domains": rollups})
	case "buckets":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "", "method not allowed", nil)
			return
		}
		width := queryInt(r, "width", d.Cfg.BucketSeconds)
		buckets, ok, err := d.Svc.Buckets(r.Context(), id, width)
		if err != nil {
			d.writeServiceError(w, id, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"buckets":          buckets,
			"hasTimestampData": ok,
			"widthSec":         width,
		})
	case "trim":
		d.handleTrim(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown resource", map[string]any{"path": r.URL.Path})
	}
}

func (d *Deps) handleTrim(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "", "method not allowed", nil)
		return
	}
	cutoffRaw := r.URL.Query().Get("cutoff")
	cutoff, ok := har.ParseTime(cutoffRaw)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_CUTOFF", "cutoff must be an RFC 3339 timestamp", map[string]any{"cutoff": cutoffRaw})
		return
	}
	trimmed, kept, err := d.Svc.Trim(r.Context(), id, cutoff)
	if err != nil {
		if errors.Is(err, har.ErrNoEntries) {
			writeError(w, http.StatusUnprocessableEntity, "INVALID_DOCUMENT", "document has no entries array", nil)
			return
		}
		d.writeServiceError(w, id, err)
		return
	}
	d.Metrics.TrimsTotal.Inc()
	d.Logger.Info().Str("id", id).Int("kept", kept).Msg("capture trimmed")
	d.Monitor.Broadcast(MonitorEvent{Type: "trimmed", ID: id})
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=trimmed_"+id+".har")
	w.Header().Set("X-Retained-Entries", strconv.Itoa(kept))
	_, _ = w.Write(trimmed)
}

// handleCompare serves GET /api/compare?base={id}&new={id}.
func (d *Deps) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "", "method not allowed", nil)
		return
	}
	baseID := r.URL.Query().Get("base")
	newID := r.URL.Query().Get("new")
	if baseID == "" || newID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_IDS", "base and new capture ids are required", nil)
		return
	}
	report, err := d.Svc.Compare(r.Context(), baseID, newID)
	if err != nil {
		if errors.Is(err, usecase.ErrCaptureNotFound) {
			writeError(w, http.StatusNotFound, "CAPTURE_NOT_FOUND", err.Error(), nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "COMPARE_FAILED", err.Error(), nil)
		return
	}
	d.Metrics.ComparesTotal.Inc()
	d.Metrics.RegressionsFound.Add(float64(report.RegressionCount))
	d.Metrics.ImprovementsFound.Add(float64(report.ImprovementCount))
	d.Logger.Info().
		Str("base", baseID).Str("new", newID).
		Int("matched", report.MatchedCount).
		Int("regressions", report.RegressionCount).
		Int("improvements", report.ImprovementCount).
		Msg("captures compared")
	d.Monitor.Broadcast(MonitorEvent{Type: "compared", ID: newID, Ref: baseID})
	writeJSON(w, http.StatusOK, report)
}

func (d *Deps) writeServiceError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, usecase.ErrCaptureNotFound) {
		writeError(w, http.StatusNotFound, "CAPTURE_NOT_FOUND", "no capture with that id", map[string]any{"id": id})
		return
	}
	writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), map[string]any{"id": id})
}

func (d *Deps) syncCaptureGauge(ctx context.Context) {
	if _, total, err := d.Svc.List(ctx, usecase.CaptureFilter{Limit: 1}); err == nil {
		d.Metrics.StoredCaptures.Set(float64(total))
	}
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
