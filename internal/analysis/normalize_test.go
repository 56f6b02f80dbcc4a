package analysis

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/steveoberholzer/HARAnalyzer/internal/adapters/har"
)

func TestNormalizeClampsNegativeTimings(t *testing.T) {
	e := Normalize(har.Entry{
		Request:  har.Request{Method: "get", URL: "https://api.example.com/users"},
		Response: har.Response{Status: 200},
		Timings:  har.Timings{Blocked: -1, DNS: -1, Connect: -1, SSL: -1, Send: 2, Wait: 30, Receive: 8},
	})
	if e.Timings.BlockedMs != 0 || e.Timings.DNSMs != 0 || e.Timings.ConnectMs != 0 || e.Timings.SSLMs != 0 {
		t.Fatalf("negative phases not clamped: %+v", e.Timings)
	}
	if e.TotalMs != 40 {
		t.Fatalf("total = %v, want 40 (sum of clamped phases)", e.TotalMs)
	}
	if e.Method != "GET" {
		t.Fatalf("method = %q, want uppercased GET", e.Method)
	}
}

func TestNormalizeIgnoresReportedTime(t *testing.T) {
	e := Normalize(har.Entry{
		Time:     9999,
		Request:  har.Request{Method: "GET", URL: "https://a.com/x"},
		Response: har.Response{Status: 200},
		Timings:  har.Timings{Send: 1, Wait: 2, Receive: 3},
	})
	if e.TotalMs != 6 {
		t.Fatalf("total = %v, want 6 (recomputed, not the capture's time field)", e.TotalMs)
	}
}

func TestNormalizeHostExtraction(t *testing.T) {
	cases := []struct {
		url  string
		host string
	}{
		{"https://api.example.com/v1/users?page=2", "api.example.com"},
		{"https://api.example.com:8443/v1", "api.example.com:8443"},
		{"not a url ://", "unknown"},
		{"", "unknown"},
		{"/relative/path", "unknown"},
	}
	for _, c := range cases {
		e := Normalize(har.Entry{Request: har.Request{Method: "GET", URL: c.url}})
		if e.Host != c.host {
			t.Fatalf("host of %q = %q, want %q", c.url, e.Host, c.host)
		}
	}
}

func TestNormalizeUnknownTimestamp(t *testing.T) {
	for _, raw := range []string{"", "yesterday", "2021-13-45T99:00:00Z"} {
		e := Normalize(har.Entry{StartedDateTime: raw, Request: har.Request{Method: "GET", URL: "https://a.com/"}})
		if e.StartedAt.Known {
			t.Fatalf("timestamp %q should be unknown", raw)
		}
	}
	e := Normalize(har.Entry{StartedDateTime: "2024-03-01T10:00:00.250Z", Request: har.Request{Method: "GET", URL: "https://a.com/"}})
	if !e.StartedAt.Known {
		t.Fatalf("valid RFC3339 timestamp should parse")
	}
}

func TestNormalizeMimeTruncation(t *testing.T) {
	long := "application/vnd.something.very.long+json; charset=utf-8; boundary=------------------"
	e := Normalize(har.Entry{
		Request:  har.Request{Method: "GET", URL: "https://a.com/"},
		Response: har.Response{Status: 200, Content: har.Content{MimeType: long}},
	})
	if len(e.MimeType) != 60 || !strings.HasPrefix(long, e.MimeType) {
		t.Fatalf("mime = %q (len %d), want 60-char prefix", e.MimeType, len(e.MimeType))
	}
}

func TestNormalizeMimeTruncationRuneBoundary(t *testing.T) {
	// 59 ASCII bytes followed by a 2-byte rune straddling the cutoff.
	long := strings.Repeat("x", 59) + "ééé"
	e := Normalize(har.Entry{
		Request:  har.Request{Method: "GET", URL: "https://a.com/"},
		Response: har.Response{Status: 200, Content: har.Content{MimeType: long}},
	})
	if !utf8.ValidString(e.MimeType) {
		t.Fatalf("mime not valid UTF-8: %q", e.MimeType)
	}
	if len(e.MimeType) > 60 || e.MimeType != strings.Repeat("x", 59) {
		t.Fatalf("mime = %q (len %d), want rune-safe cut at 59", e.MimeType, len(e.MimeType))
	}
}

func TestNormalizeClampsNegativeSizes(t *testing.T) {
	e := Normalize(har.Entry{
		Request:  har.Request{Method: "GET", URL: "https://a.com/", BodySize: -1},
		Response: har.Response{Status: 200, BodySize: -1},
	})
	if e.RequestBytes != 0 || e.ResponseBytes != 0 {
		t.Fatalf("sizes not clamped: req=%d resp=%d", e.RequestBytes, e.ResponseBytes)
	}
}

func TestStripQuery(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"https://a.com/x?y=1", "https://a.com/x"},
		{"https://a.com/x?y=1&z=2", "https://a.com/x"},
		{"https://a.com/x", "https://a.com/x"},
		{"://bad url?tok=1", "://bad url"},
	}
	for _, c := range cases {
		if got := stripQuery(c.in); got != c.out {
			t.Fatalf("stripQuery(%q) = %q, want %q", c.in, got, c.out)
		}
	}
}
