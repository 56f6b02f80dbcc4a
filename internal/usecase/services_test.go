package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/steveoberholzer/HARAnalyzer/internal/adapters/storage/memory"
	"github.com/steveoberholzer/HARAnalyzer/internal/usecase"
)

const baselineDoc = `{
  "log": {
    "version": "1.2",
    "creator": {"name": "chrome", "version": "120"},
    "entries": [
      {"startedDateTime": "2024-03-01T10:00:00Z",
       "request": {"method": "GET", "url": "https://api.example.com/p", "headersSize": -1, "bodySize": 0},
       "response": {"status": 200, "statusText": "OK", "content": {"size": 5, "mimeType": "application/json"}, "headersSize": -1, "bodySize": 5},
       "timings": {"blocked": -1, "dns": -1, "connect": -1, "ssl": -1, "send": 0, "wait": 100, "receive": 0}}
    ]
  }
}`

const rerunDoc = `{
  "log": {
    "version": "1.2",
    "creator": {"name": "chrome", "version": "120"},
    "entries": [
      {"startedDateTime": "2024-03-01T11:00:00Z",
       "request": {"method": "GET", "url": "https://api.example.com/p", "headersSize": -1, "bodySize": 0},
       "response": {"status": 200, "statusText": "OK", "content": {"size": 5, "mimeType": "application/json"}, "headersSize": -1, "bodySize": 5},
       "timings": {"blocked": -1, "dns": -1, "connect": -1, "ssl": -1, "send": 0, "wait": 165, "receive": 0}}
    ]
  }
}`

func newService() *usecase.AnalysisService {
	return usecase.NewAnalysisService(memory.NewStore(10, time.Hour))
}

func TestUploadAndReport(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	c, report, err := svc.Upload(ctx, "baseline.har", []byte(baselineDoc))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if c.ID == "" || c.EntryCount != 1 {
		t.Fatalf("capture metadata wrong: %+v", c)
	}
	if report.TotalEntries != 1 || report.TotalTimeMs != 100 {
		t.Fatalf("report wrong: %+v", report)
	}
	again, err := svc.Report(ctx, c.ID)
	if err != nil || again.TotalTimeMs != 100 {
		t.Fatalf("re-report: %v %+v", err, again)
	}
}

func TestUploadRejectsMalformed(t *testing.T) {
	svc := newService()
	if _, _, err := svc.Upload(context.Background(), "bad.har", []byte("{nope")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestCompareThroughService(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	base, _, err := svc.Upload(ctx, "baseline.har", []byte(baselineDoc))
	if err != nil {
		t.Fatalf("upload base: %v", err)
	}
	next, _, err := svc.Upload(ctx, "rerun.har", []byte(rerunDoc))
	if err != nil {
		t.Fatalf("upload rerun: %v", err)
	}
	report, err := svc.Compare(ctx, base.ID, next.ID)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if report.FileA != "baseline.har" || report.FileB != "rerun.har" {
		t.Fatalf("file identities wrong: %+v", report)
	}
	if report.MatchedCount != 1 || report.RegressionCount != 1 {
		t.Fatalf("matched=%d regressions=%d, want 1/1", report.MatchedCount, report.RegressionCount)
	}
	if report.Diffs[0].DeltaMs != 65 {
		t.Fatalf("delta = %v, want 65", report.Diffs[0].DeltaMs)
	}
}

func TestCompareUnknownCapture(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	base, _, _ := svc.Upload(ctx, "baseline.har", []byte(baselineDoc))
	_, err := svc.Compare(ctx, base.ID, "missing")
	if !errors.Is(err, usecase.ErrCaptureNotFound) {
		t.Fatalf("err = %v, want ErrCaptureNotFound", err)
	}
}

func TestTrimThroughService(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	c, _, _ := svc.Upload(ctx, "baseline.har", []byte(baselineDoc))
	cutoff := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	trimmed, kept, err := svc.Trim(ctx, c.ID, cutoff)
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	if kept != 0 {
		t.Fatalf("kept = %d, want 0 for cutoff after the last entry", kept)
	}
	if !strings.Contains(string(trimmed), `"entries":[]`) {
		t.Fatalf("trimmed doc should have an empty entries array: %s", trimmed)
	}
	// original stays intact
	stored, ok, _ := svc.Get(ctx, c.ID)
	if !ok || !strings.Contains(string(stored.Raw), "https://api.example.com/p") {
		t.Fatalf("stored capture was mutated")
	}
}

func TestDomainsAndBuckets(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	c, _, _ := svc.Upload(ctx, "baseline.har", []byte(baselineDoc))
	rollups, err := svc.Domains(ctx, c.ID)
	if err != nil || len(rollups) != 1 || rollups[0].Host != "api.example.com" {
		t.Fatalf("domains: %v %+v", err, rollups)
	}
	buckets, ok, err := svc.Buckets(ctx, c.ID, 5)
	if err != nil || !ok || len(buckets) != 1 {
		t.Fatalf("buckets: %v ok=%v %+v", err, ok, buckets)
	}
}
