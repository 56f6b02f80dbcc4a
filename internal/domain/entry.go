package domain

import "time"

// SlowThresholdMs marks an exchange as slow when its total duration
// reaches this many milliseconds.
const SlowThresholdMs = 1000

// Timestamp is a capture timestamp that may be unknown. Entries with an
// unknown timestamp sort after all known ones and are excluded from any
// time-based aggregation.
type Timestamp struct {
	Time  time.Time
	Known bool
}

func KnownTime(t time.Time) Timestamp { return Timestamp{Time: t, Known: true} }

func UnknownTime() Timestamp { return Timestamp{} }

// Before orders timestamps with unknown values last. Two unknowns are
// not ordered (returns false both ways) so stable sorts keep their
// original relative order.
func (t Timestamp) Before(other Timestamp) bool {
	if t.Known && !other.Known {
		return true
	}
	if !t.Known {
		return false
	}
	return t.Time.Before(other.Time)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Known {
		return []byte("null"), nil
	}
	return t.Time.MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}
		return nil
	}
	if err := t.Time.UnmarshalJSON(data); err != nil {
		return err
	}
	t.Known = true
	return nil
}

// Timings holds the seven HAR timing phases, each clamped to be
// non-negative (the HAR -1 "phase did not occur" sentinel becomes 0).
type Timings struct {
	BlockedMs float64 `json:"blockedMs"`
	DNSMs     float64 `json:"dnsMs"`
	ConnectMs float64 `json:"connectMs"`
	SSLMs     float64 `json:"sslMs"`
	SendMs    float64 `json:"sendMs"`
	WaitMs    float64 `json:"waitMs"` // time to first byte
	ReceiveMs float64 `json:"receiveMs"`
}

// Sum is the total across all seven phases.
func (t Timings) Sum() float64 {
	return t.BlockedMs + t.DNSMs + t.ConnectMs + t.SSLMs + t.SendMs + t.WaitMs + t.ReceiveMs
}

// CanonicalEntry is one normalized HTTP exchange from a capture.
// TotalMs is always recomputed as the sum of the clamped timing phases,
// never taken from the capture's own "time" field.
type CanonicalEntry struct {
	StartedAt     Timestamp `json:"startedAt"`
	Method        string    `json:"method"`
	URL           string    `json:"url"`
	Host          string    `json:"host"`
	Status        int       `json:"status"`
	StatusText    string    `json:"statusText"`
	MimeType      string    `json:"mimeType"`
	Timings       Timings   `json:"timings"`
	TotalMs       float64   `json:"totalMs"`
	RequestBytes  int64     `json:"requestBytes"`
	ResponseBytes int64     `json:"responseBytes"`
}

// IsError reports whether the exchange failed: any 4xx/5xx status, or
// status 0 meaning no response was received at all.
func (e CanonicalEntry) IsError() bool { return e.Status >= 400 || e.Status == 0 }

// IsSlow reports whether the exchange took at least SlowThresholdMs.
func (e CanonicalEntry) IsSlow() bool { return e.TotalMs >= SlowThresholdMs }
