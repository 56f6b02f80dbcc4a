// Package analysis is the computation core: entry normalization,
// trace aggregation and two-trace comparison. Everything here is a pure
// function over in-memory data; normalization and aggregation never
// fail, malformed fields degrade to safe defaults instead.
package analysis

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/steveoberholzer/HARAnalyzer/internal/adapters/har"
	"github.com/steveoberholzer/HARAnalyzer/internal/domain"
)

const mimeTypeMaxLen = 60

// Normalize converts one raw HAR entry into its canonical form. It is
// total: bad timestamps become unknown, bad URLs yield host "unknown",
// and negative timing or size sentinels clamp to zero.
func Normalize(raw har.Entry) domain.CanonicalEntry {
	e := domain.CanonicalEntry{
		Method:     strings.ToUpper(raw.Request.Method),
		URL:        raw.Request.URL,
		Host:       hostOf(raw.Request.URL),
		Status:     raw.Response.Status,
		StatusText: raw.Response.StatusText,
		MimeType:   truncate(raw.Response.Content.MimeType, mimeTypeMaxLen),
		Timings: domain.Timings{
			BlockedMs: clampMs(raw.Timings.Blocked),
			DNSMs:     clampMs(raw.Timings.DNS),
			ConnectMs: clampMs(raw.Timings.Connect),
			SSLMs:     clampMs(raw.Timings.SSL),
			SendMs:    clampMs(raw.Timings.Send),
			WaitMs:    clampMs(raw.Timings.Wait),
			ReceiveMs: clampMs(raw.Timings.Receive),
		},
		RequestBytes:  clampSize(raw.Request.BodySize),
		ResponseBytes: clampSize(raw.Response.BodySize),
	}
	// The capture's own "time" field is deliberately ignored; the total
	// is recomputed from the clamped phases for internal consistency.
	e.TotalMs = e.Timings.Sum()
	if t, ok := har.ParseTime(raw.StartedDateTime); ok {
		e.StartedAt = domain.KnownTime(t)
	} else {
		e.StartedAt = domain.UnknownTime()
	}
	return e
}

// NormalizeAll maps every raw entry; order is preserved.
func NormalizeAll(raw []har.Entry) []domain.CanonicalEntry {
	out := make([]domain.CanonicalEntry, len(raw))
	for i, r := range raw {
		out[i] = Normalize(r)
	}
	return out
}

func clampMs(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clampSize(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// truncate cuts s to at most n bytes, backing up so a multi-byte rune
// is never split.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}

// stripQuery removes the query string from a URL for endpoint matching.
// On parse failure it falls back to a literal cut at the first '?'.
func stripQuery(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		if i := strings.IndexByte(rawURL, '?'); i >= 0 {
			return rawURL[:i]
		}
		return rawURL
	}
	u.RawQuery = ""
	u.ForceQuery = false
	return u.String()
}
