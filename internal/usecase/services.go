package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/steveoberholzer/HARAnalyzer/internal/adapters/har"
	"github.com/steveoberholzer/HARAnalyzer/internal/analysis"
	"github.com/steveoberholzer/HARAnalyzer/internal/domain"
)

// ErrCaptureNotFound is returned when an operation references a capture
// id the repository does not hold.
var ErrCaptureNotFound = errors.New("capture not found")

// AnalysisService orchestrates the analysis engine over captures held
// by the repository. Captures store the original raw bytes; reports are
// recomputed per request, so the engine stays a pure function of the
// stored document.
type AnalysisService struct {
	captures CaptureRepository
}

func NewAnalysisService(r CaptureRepository) *AnalysisService {
	return &AnalysisService{captures: r}
}

// Upload parses and analyzes a raw HAR document, stores it, and returns
// the stored capture along with its report.
func (s *AnalysisService) Upload(ctx context.Context, fileName string, raw []byte) (domain.Capture, domain.TraceReport, error) {
	doc, err := har.Parse(raw)
	if err != nil {
		return domain.Capture{}, domain.TraceReport{}, err
	}
	report := analysis.Analyze(doc, fileName)
	c := domain.Capture{
		ID:         uuid.NewString(),
		FileName:   fileName,
		UploadedAt: time.Now().UTC(),
		Size:       len(raw),
		EntryCount: report.TotalEntries,
		Raw:        raw,
	}
	if err := s.captures.SaveCapture(ctx, c); err != nil {
		return domain.Capture{}, domain.TraceReport{}, err
	}
	return c, report, nil
}

func (s *AnalysisService) Get(ctx context.Context, id string) (domain.Capture, bool, error) {
	return s.captures.GetCapture(ctx, id)
}

func (s *AnalysisService) List(ctx context.Context, f CaptureFilter) ([]domain.Capture, int, error) {
	return s.captures.ListCaptures(ctx, f)
}

func (s *AnalysisService) Delete(ctx context.Context, id string) error {
	return s.captures.DeleteCapture(ctx, id)
}

func (s *AnalysisService) ClearAll(ctx context.Context) error {
	return s.captures.ClearAllCaptures(ctx)
}

// Report re-analyzes a stored capture.
func (s *AnalysisService) Report(ctx context.Context, id string) (domain.TraceReport, error) {
	doc, c, err := s.load(ctx, id)
	if err != nil {
		return domain.TraceReport{}, err
	}
	return analysis.Analyze(doc, c.FileName), nil
}

// Domains computes per-host rollups for a stored capture.
func (s *AnalysisService) Domains(ctx context.Context, id string) ([]domain.DomainRollup, error) {
	report, err := s.Report(ctx, id)
	if err != nil {
		return nil, err
	}
	return analysis.GroupByDomain(report.Entries), nil
}

// Buckets computes the timeline buckets for a stored capture. ok is
// false when the capture has no usable timestamps.
func (s *AnalysisService) Buckets(ctx context.Context, id string, widthSeconds int) ([]domain.TimeBucket, bool, error) {
	report, err := s.Report(ctx, id)
	if err != nil {
		return nil, false, err
	}
	buckets, ok := analysis.Bucket(report.Entries, widthSeconds)
	return buckets, ok, nil
}

// Compare analyzes the baseline and the newer capture concurrently,
// joins, and diffs them. The two analyses share no state.
func (s *AnalysisService) Compare(ctx context.Context, baseID, newID string) (domain.CompareReport, error) {
	docA, capA, err := s.load(ctx, baseID)
	if err != nil {
		return domain.CompareReport{}, fmt.Errorf("baseline: %w", err)
	}
	docB, capB, err := s.load(ctx, newID)
	if err != nil {
		return domain.CompareReport{}, fmt.Errorf("new: %w", err)
	}
	var reportA, reportB domain.TraceReport
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		reportA = analysis.Analyze(docA, capA.FileName)
	}()
	go func() {
		defer wg.Done()
		reportB = analysis.Analyze(docB, capB.FileName)
	}()
	wg.Wait()
	return analysis.Compare(reportA, reportB), nil
}

// Trim returns a filtered copy of the stored document keeping entries
// that started at or after cutoff, plus the retained count. The stored
// capture is never mutated.
func (s *AnalysisService) Trim(ctx context.Context, id string, cutoff time.Time) ([]byte, int, error) {
	c, ok, err := s.captures.GetCapture(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, ErrCaptureNotFound
	}
	return har.Trim(c.Raw, cutoff)
}

func (s *AnalysisService) load(ctx context.Context, id string) (*har.HAR, domain.Capture, error) {
	c, ok, err := s.captures.GetCapture(ctx, id)
	if err != nil {
		return nil, domain.Capture{}, err
	}
	if !ok {
		return nil, domain.Capture{}, ErrCaptureNotFound
	}
	doc, err := har.Parse(c.Raw)
	if err != nil {
		return nil, domain.Capture{}, err
	}
	return doc, c, nil
}
