package analysis

import (
	"math"
	"sort"

	"github.com/steveoberholzer/HARAnalyzer/internal/domain"
)

// Compare matches two analyzed traces by endpoint and classifies every
// matched endpoint's change. Side A is the baseline, side B the newer
// run. Entries sharing an endpoint within one trace (retries, repeated
// calls) are averaged per side before diffing, so an endpoint called
// many times in one run and once in the other is not biased by volume.
func Compare(a, b domain.TraceReport) domain.CompareReport {
	report := domain.CompareReport{
		FileA:        a.File,
		FileB:        b.File,
		EntriesA:     a.TotalEntries,
		EntriesB:     b.TotalEntries,
		TotalTimeAMs: a.TotalTimeMs,
		TotalTimeBMs: b.TotalTimeMs,
	}

	sideA, orderA := groupByKey(a.Entries)
	sideB, orderB := groupByKey(b.Entries)

	// Union of keys in deterministic encounter order: side A first,
	// then keys only side B saw. Map iteration order must not leak
	// into tie-breaks of the sorted output.
	keys := make([]domain.MatchKey, 0, len(orderA)+len(orderB))
	keys = append(keys, orderA...)
	for _, k := range orderB {
		if _, ok := sideA[k]; !ok {
			keys = append(keys, k)
		}
	}

	for _, key := range keys {
		entriesA, inA := sideA[key]
		entriesB, inB := sideB[key]
		switch {
		case inA && inB:
			report.Diffs = append(report.Diffs, diffEndpoint(key, entriesA, entriesB))
		case inA:
			report.OnlyInA = append(report.OnlyInA, entriesA...)
		default:
			report.OnlyInB = append(report.OnlyInB, entriesB...)
		}
	}

	sort.SliceStable(report.Diffs, func(i, j int) bool {
		return math.Abs(report.Diffs[i].DeltaMs) > math.Abs(report.Diffs[j].DeltaMs)
	})
	sort.SliceStable(report.OnlyInA, func(i, j int) bool {
		return report.OnlyInA[i].TotalMs > report.OnlyInA[j].TotalMs
	})
	sort.SliceStable(report.OnlyInB, func(i, j int) bool {
		return report.OnlyInB[i].TotalMs > report.OnlyInB[j].TotalMs
	})

	for _, d := range report.Diffs {
		report.TotalDeltaMs += d.DeltaMs
		switch d.Category {
		case domain.CategoryRegression:
			report.Regressions = append(report.Regressions, d)
		case domain.CategoryImprovement:
			report.Improvements = append(report.Improvements, d)
		}
	}
	report.MatchedCount = len(report.Diffs)
	report.RegressionCount = len(report.Regressions)
	report.ImprovementCount = len(report.Improvements)
	report.OnlyInACount = len(report.OnlyInA)
	report.OnlyInBCount = len(report.OnlyInB)
	return report
}

// groupByKey buckets entries by endpoint, also returning the keys in
// first-encounter order.
func groupByKey(entries []domain.CanonicalEntry) (map[domain.MatchKey][]domain.CanonicalEntry, []domain.MatchKey) {
	byKey := make(map[domain.MatchKey][]domain.CanonicalEntry)
	order := make([]domain.MatchKey, 0)
	for _, e := range entries {
		key := domain.MatchKey{Method: e.Method, BaseURL: stripQuery(e.URL)}
		if _, ok := byKey[key]; !ok {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], e)
	}
	return byKey, order
}

func diffEndpoint(key domain.MatchKey, entriesA, entriesB []domain.CanonicalEntry) domain.RequestDiff {
	avgA, ttfbA := averages(entriesA)
	avgB, ttfbB := averages(entriesB)
	d := domain.RequestDiff{
		Method:     key.Method,
		BaseURL:    key.BaseURL,
		Host:       firstHost(entriesA, entriesB),
		AvgTimeAMs: avgA,
		AvgTimeBMs: avgB,
		AvgTTFBAMs: ttfbA,
		AvgTTFBBMs: ttfbB,
		DeltaMs:    avgB - avgA,
		CountA:     len(entriesA),
		CountB:     len(entriesB),
	}
	// A zero baseline makes the relative change undefined, not an
	// infinite spike: NaN, which always classifies as negligible.
	if avgA == 0 {
		d.PercentChange = domain.Percent(math.NaN())
	} else {
		d.PercentChange = domain.Percent(d.DeltaMs / avgA * 100)
	}
	d.Category = domain.Classify(d.DeltaMs, float64(d.PercentChange))
	return d
}

func averages(entries []domain.CanonicalEntry) (avgTotal, avgTTFB float64) {
	if len(entries) == 0 {
		return 0, 0
	}
	for _, e := range entries {
		avgTotal += e.TotalMs
		avgTTFB += e.Timings.WaitMs
	}
	n := float64(len(entries))
	return avgTotal / n, avgTTFB / n
}

func firstHost(entriesA, entriesB []domain.CanonicalEntry) string {
	for _, e := range entriesA {
		if e.Host != "" {
			return e.Host
		}
	}
	for _, e := range entriesB {
		if e.Host != "" {
			return e.Host
		}
	}
	return ""
}
