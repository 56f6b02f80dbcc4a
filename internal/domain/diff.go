package domain

import (
	"math"
	"strconv"
)

// MatchKey identifies one logical endpoint across traces: the request
// method plus the URL with its query string removed. Comparison is
// case-sensitive on the URL.
type MatchKey struct {
	Method  string `json:"method"`
	BaseURL string `json:"baseUrl"`
}

// DiffCategory classifies a matched endpoint's change between runs.
type DiffCategory string

const (
	CategoryNegligible  DiffCategory = "negligible"
	CategoryRegression  DiffCategory = "regression"
	CategoryImprovement DiffCategory = "improvement"
)

// Classification thresholds: both the absolute and the relative gate
// must hold for a change to count as a regression or improvement.
const (
	diffThresholdMs  = 50
	diffThresholdPct = 10
)

// Classify categorizes a delta/percent pair. A NaN percent (undefined
// baseline) is always negligible.
func Classify(deltaMs, pct float64) DiffCategory {
	if math.IsNaN(pct) {
		return CategoryNegligible
	}
	if deltaMs > diffThresholdMs && pct > diffThresholdPct {
		return CategoryRegression
	}
	if deltaMs < -diffThresholdMs && pct < -diffThresholdPct {
		return CategoryImprovement
	}
	return CategoryNegligible
}

// Percent is a percentage that may be NaN when undefined (zero
// baseline). It marshals as JSON null in that case so consumers can
// render it distinctly from an actual 0%.
type Percent float64

func (p Percent) IsNaN() bool { return math.IsNaN(float64(p)) }

func (p Percent) MarshalJSON() ([]byte, error) {
	if p.IsNaN() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(p), 'f', -1, 64), nil
}

func (p *Percent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Percent(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*p = Percent(v)
	return nil
}

// RequestDiff is one endpoint matched across two traces, with per-side
// averages over every call to it within each trace.
type RequestDiff struct {
	Method        string       `json:"method"`
	BaseURL       string       `json:"baseUrl"`
	Host          string       `json:"host"`
	AvgTimeAMs    float64      `json:"avgTimeAMs"`
	AvgTimeBMs    float64      `json:"avgTimeBMs"`
	AvgTTFBAMs    float64      `json:"avgTtfbAMs"`
	AvgTTFBBMs    float64      `json:"avgTtfbBMs"`
	DeltaMs       float64      `json:"deltaMs"`
	PercentChange Percent      `json:"percentChange"`
	CountA        int          `json:"countA"`
	CountB        int          `json:"countB"`
	Category      DiffCategory `json:"category"`
}

// CompareReport is the full output of a two-trace comparison. Diffs are
// sorted by absolute delta descending; Regressions and Improvements are
// filtered views preserving that order; the only-in lists are sorted by
// total time descending.
type CompareReport struct {
	FileA            string           `json:"fileA"`
	FileB            string           `json:"fileB"`
	EntriesA         int              `json:"entriesA"`
	EntriesB         int              `json:"entriesB"`
	TotalTimeAMs     float64          `json:"totalTimeAMs"`
	TotalTimeBMs     float64          `json:"totalTimeBMs"`
	MatchedCount     int              `json:"matchedCount"`
	RegressionCount  int              `json:"regressionCount"`
	ImprovementCount int              `json:"improvementCount"`
	OnlyInACount     int              `json:"onlyInACount"`
	OnlyInBCount     int              `json:"onlyInBCount"`
	TotalDeltaMs     float64          `json:"totalDeltaMs"`
	Diffs            []RequestDiff    `json:"diffs"`
	Regressions      []RequestDiff    `json:"regressions"`
	Improvements     []RequestDiff    `json:"improvements"`
	OnlyInA          []CanonicalEntry `json:"onlyInA"`
	OnlyInB          []CanonicalEntry `json:"onlyInB"`
}
