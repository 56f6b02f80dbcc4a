package domain

import "time"

// TraceReport is the aggregate view of one analyzed capture. Entries are
// sorted ascending by start time with unknown timestamps last.
type TraceReport struct {
	File           string           `json:"file"`
	CreatorName    string           `json:"creatorName"`
	CreatorVersion string           `json:"creatorVersion"`
	TotalEntries   int              `json:"totalEntries"`
	TotalTimeMs    float64          `json:"totalTimeMs"`
	AvgTimeMs      float64          `json:"avgTimeMs"`
	MaxTimeMs      float64          `json:"maxTimeMs"`
	MaxTTFBMs      float64          `json:"maxTtfbMs"`
	SlowCount      int              `json:"slowCount"`
	ErrorCount     int              `json:"errorCount"`
	ElapsedMs      float64          `json:"elapsedMs"`
	Entries        []CanonicalEntry `json:"entries"`
}

// DomainRollup aggregates entries sharing one host.
type DomainRollup struct {
	Host        string  `json:"host"`
	Count       int     `json:"count"`
	TotalTimeMs float64 `json:"totalTimeMs"`
	AvgTimeMs   float64 `json:"avgTimeMs"`
	MaxTimeMs   float64 `json:"maxTimeMs"`
	MaxTTFBMs   float64 `json:"maxTtfbMs"`
	SlowCount   int     `json:"slowCount"`
	ErrorCount  int     `json:"errorCount"`
}

// TimeBucket aggregates entries falling into one fixed-width window,
// offset from the earliest known timestamp in the trace.
type TimeBucket struct {
	OffsetSec   int64     `json:"offsetSec"`
	StartAt     time.Time `json:"startAt"`
	Count       int       `json:"count"`
	TotalTimeMs float64   `json:"totalTimeMs"`
	MaxTimeMs   float64   `json:"maxTimeMs"`
	ErrorCount  int       `json:"errorCount"`
}

// Capture is one uploaded trace held by the repository. Raw keeps the
// original document bytes untouched so trimming can preserve fields the
// canonical model does not carry.
type Capture struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	UploadedAt time.Time `json:"uploadedAt"`
	Size       int       `json:"size"`
	EntryCount int       `json:"entryCount"`
	Raw        []byte    `json:"-"`
}
