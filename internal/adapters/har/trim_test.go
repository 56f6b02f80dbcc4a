package har

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

const trimDoc = `{
  "log": {
    "version": "1.2",
    "creator": {"name": "browser", "version": "1.0"},
    "pages": [
      {"id": "page_1", "title": "login", "startedDateTime": "2024-03-01T10:00:00Z", "pageTimings": {"onLoad": 120}},
      {"id": "page_2", "title": "dashboard", "startedDateTime": "2024-03-01T10:00:10Z", "pageTimings": {"onLoad": 300}}
    ],
    "entries": [
      {"pageref": "page_1", "startedDateTime": "2024-03-01T10:00:00Z",
       "request": {"method": "GET", "url": "https://a.com/login", "headersSize": -1, "bodySize": 0},
       "response": {"status": 200, "statusText": "OK", "content": {"size": 10, "mimeType": "text/html"}, "headersSize": -1, "bodySize": 10},
       "cache": {"beforeRequest": {"eTag": "abc", "hitCount": 3}},
       "serverIPAddress": "10.0.0.1",
       "_vendorExtension": {"custom": true},
       "timings": {"blocked": -1, "dns": -1, "connect": -1, "ssl": -1, "send": 1, "wait": 20, "receive": 2}},
      {"pageref": "page_2", "startedDateTime": "2024-03-01T10:00:10Z",
       "request": {"method": "GET", "url": "https://a.com/dashboard", "headersSize": -1, "bodySize": 0},
       "response": {"status": 200, "statusText": "OK", "content": {"size": 10, "mimeType": "text/html"}, "headersSize": -1, "bodySize": 10},
       "timings": {"send": 1, "wait": 20, "receive": 2}},
      {"startedDateTime": "not-a-date",
       "request": {"method": "GET", "url": "https://a.com/orphan", "headersSize": -1, "bodySize": 0},
       "response": {"status": 200, "statusText": "OK", "content": {"size": 0, "mimeType": ""}, "headersSize": -1, "bodySize": 0},
       "timings": {"send": 0, "wait": 1, "receive": 0}}
    ]
  }
}`

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, ok := ParseTime(s)
	if !ok {
		t.Fatalf("bad test timestamp %q", s)
	}
	return ts
}

func TestTrimCutoffAtMinimumRetainsAll(t *testing.T) {
	out, kept, err := Trim([]byte(trimDoc), mustTime(t, "2024-03-01T10:00:00Z"))
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	if kept != 3 {
		t.Fatalf("kept = %d, want 3", kept)
	}
	doc, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(doc.Log.Entries) != 3 || len(doc.Log.Pages) != 2 {
		t.Fatalf("entries=%d pages=%d, want 3/2", len(doc.Log.Entries), len(doc.Log.Pages))
	}
}

func TestTrimDropsEarlierEntriesAndOrphanPages(t *testing.T) {
	out, kept, err := Trim([]byte(trimDoc), mustTime(t, "2024-03-01T10:00:05Z"))
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	// dashboard entry plus the unparsable-timestamp entry survive
	if kept != 2 {
		t.Fatalf("kept = %d, want 2", kept)
	}
	doc, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(doc.Log.Pages) != 1 || doc.Log.Pages[0].ID != "page_2" {
		t.Fatalf("orphan page_1 should be dropped: %+v", doc.Log.Pages)
	}
	for _, e := range doc.Log.Entries {
		if e.Request.URL == "https://a.com/login" {
			t.Fatalf("login entry should be trimmed")
		}
	}
}

func TestTrimAfterMaximumKeepsOnlyUnknownTimestamps(t *testing.T) {
	out, kept, err := Trim([]byte(trimDoc), mustTime(t, "2024-03-01T11:00:00Z"))
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	if kept != 1 {
		t.Fatalf("kept = %d, want only the unparsable-timestamp entry", kept)
	}
	doc, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if doc.Log.Entries[0].Request.URL != "https://a.com/orphan" {
		t.Fatalf("wrong entry retained: %v", doc.Log.Entries[0].Request.URL)
	}
	// no retained entry references a page, so the pages list must stay
	if len(doc.Log.Pages) != 2 {
		t.Fatalf("empty pageref set must not wipe pages, got %d", len(doc.Log.Pages))
	}
}

func TestTrimPreservesUnmodeledFields(t *testing.T) {
	out, _, err := Trim([]byte(trimDoc), mustTime(t, "2024-03-01T10:00:00Z"))
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	s := string(out)
	// retained entries are carried as raw sub-objects, original bytes intact
	for _, want := range []string{`"_vendorExtension"`, `"custom": true`, `"serverIPAddress"`, `"10.0.0.1"`, `"eTag"`, `"hitCount": 3`, `"headersSize": -1`} {
		if !strings.Contains(s, want) {
			t.Fatalf("trimmed output lost %s", want)
		}
	}
}

func TestTrimNoEntriesArrayIsFatal(t *testing.T) {
	for _, doc := range []string{`{}`, `{"log": {"version": "1.2"}}`} {
		if _, _, err := Trim([]byte(doc), time.Now()); err != ErrNoEntries {
			t.Fatalf("doc %s: err = %v, want ErrNoEntries", doc, err)
		}
	}
}

func TestTrimDoesNotMutateInput(t *testing.T) {
	in := []byte(trimDoc)
	before := string(in)
	_, _, err := Trim(in, mustTime(t, "2024-03-01T10:00:05Z"))
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	if string(in) != before {
		t.Fatalf("input document was mutated")
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	if _, err := Parse([]byte(`{"log":`)); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestParseTimeLayouts(t *testing.T) {
	for _, ok := range []string{
		"2024-03-01T10:00:00Z",
		"2024-03-01T10:00:00.123Z",
		"2024-03-01T10:00:00+02:00",
		"2024-03-01T10:00:00.5",
		"2024-03-01T10:00:00",
	} {
		if _, parsed := ParseTime(ok); !parsed {
			t.Fatalf("layout should parse: %q", ok)
		}
	}
	for _, bad := range []string{"", "bogus", "01/03/2024"} {
		if _, parsed := ParseTime(bad); parsed {
			t.Fatalf("layout should not parse: %q", bad)
		}
	}
}

func TestTrimOutputIsValidJSON(t *testing.T) {
	out, _, err := Trim([]byte(trimDoc), mustTime(t, "2024-03-01T10:00:05Z"))
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	var v map[string]any
	if err := json.Unmarshal(out, &v); err != nil {
		t.Fatalf("output not valid JSON: %v", err)
	}
}
