package analysis

import (
	"sort"
	"time"

	"github.com/steveoberholzer/HARAnalyzer/internal/adapters/har"
	"github.com/steveoberholzer/HARAnalyzer/internal/domain"
)

// DefaultBucketSeconds is the timeline window width used when the
// caller does not pick one.
const DefaultBucketSeconds = 5

// Analyze normalizes every entry of a capture and computes the trace
// summary. An empty capture yields a valid report with zero aggregates.
func Analyze(doc *har.HAR, file string) domain.TraceReport {
	report := domain.TraceReport{
		File:           file,
		CreatorName:    doc.Log.Creator.Name,
		CreatorVersion: doc.Log.Creator.Version,
	}
	entries := NormalizeAll(doc.Log.Entries)
	// Ascending by start time, unknown timestamps last; stable so ties
	// keep capture order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartedAt.Before(entries[j].StartedAt)
	})
	report.Entries = entries
	report.TotalEntries = len(entries)

	var minStart, maxStart time.Time
	known := 0
	for _, e := range entries {
		report.TotalTimeMs += e.TotalMs
		if e.TotalMs > report.MaxTimeMs {
			report.MaxTimeMs = e.TotalMs
		}
		if e.Timings.WaitMs > report.MaxTTFBMs {
			report.MaxTTFBMs = e.Timings.WaitMs
		}
		if e.IsSlow() {
			report.SlowCount++
		}
		if e.IsError() {
			report.ErrorCount++
		}
		if e.StartedAt.Known {
			t := e.StartedAt.Time
			if known == 0 || t.Before(minStart) {
				minStart = t
			}
			if known == 0 || t.After(maxStart) {
				maxStart = t
			}
			known++
		}
	}
	if report.TotalEntries > 0 {
		report.AvgTimeMs = report.TotalTimeMs / float64(report.TotalEntries)
	}
	// The elapsed span needs two known timestamps to mean anything.
	if known >= 2 {
		report.ElapsedMs = float64(maxStart.Sub(minStart)) / float64(time.Millisecond)
	}
	return report
}

// GroupByDomain rolls entries up by host, ordered by summed total time
// descending. Hosts that tie keep first-encounter order.
func GroupByDomain(entries []domain.CanonicalEntry) []domain.DomainRollup {
	byHost := make(map[string]*domain.DomainRollup)
	order := make([]string, 0)
	for _, e := range entries {
		r, ok := byHost[e.Host]
		if !ok {
			r = &domain.DomainRollup{Host: e.Host}
			byHost[e.Host] = r
			order = append(order, e.Host)
		}
		r.Count++
		r.TotalTimeMs += e.TotalMs
		if e.TotalMs > r.MaxTimeMs {
			r.MaxTimeMs = e.TotalMs
		}
		if e.Timings.WaitMs > r.MaxTTFBMs {
			r.MaxTTFBMs = e.Timings.WaitMs
		}
		if e.IsSlow() {
			r.SlowCount++
		}
		if e.IsError() {
			r.ErrorCount++
		}
	}
	out := make([]domain.DomainRollup, 0, len(order))
	for _, host := range order {
		r := byHost[host]
		r.AvgTimeMs = r.TotalTimeMs / float64(r.Count)
		out = append(out, *r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalTimeMs > out[j].TotalTimeMs
	})
	return out
}

// Bucket groups entries with known timestamps into fixed-width windows
// offset from the earliest known timestamp, ordered ascending. The
// second return is false when no entry carries a usable timestamp —
// a distinct "no timestamp data" case, not an error.
func Bucket(entries []domain.CanonicalEntry, bucketSeconds int) ([]domain.TimeBucket, bool) {
	if bucketSeconds <= 0 {
		bucketSeconds = DefaultBucketSeconds
	}
	var origin time.Time
	found := false
	for _, e := range entries {
		if !e.StartedAt.Known {
			continue
		}
		if !found || e.StartedAt.Time.Before(origin) {
			origin = e.StartedAt.Time
			found = true
		}
	}
	if !found {
		return nil, false
	}
	width := int64(bucketSeconds)
	byOffset := make(map[int64]*domain.TimeBucket)
	offsets := make([]int64, 0)
	for _, e := range entries {
		if !e.StartedAt.Known {
			continue
		}
		off := int64(e.StartedAt.Time.Sub(origin)/time.Second) / width * width
		b, ok := byOffset[off]
		if !ok {
			b = &domain.TimeBucket{OffsetSec: off, StartAt: origin.Add(time.Duration(off) * time.Second)}
			byOffset[off] = b
			offsets = append(offsets, off)
		}
		b.Count++
		b.TotalTimeMs += e.TotalMs
		if e.TotalMs > b.MaxTimeMs {
			b.MaxTimeMs = e.TotalMs
		}
		if e.IsError() {
			b.ErrorCount++
		}
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	out := make([]domain.TimeBucket, 0, len(offsets))
	for _, off := range offsets {
		out = append(out, *byOffset[off])
	}
	return out, true
}
