package har

import (
	"encoding/json"
	"fmt"
	"time"
)

// Trim produces a filtered copy of a raw HAR document keeping only
// entries that started at or after cutoff. Entries whose timestamp
// cannot be parsed are always retained, since their eligibility cannot
// be determined. Pages no longer referenced by any retained entry are
// dropped, unless no retained entry carries a pageref at all (an empty
// referenced set must not wipe the pages list).
//
// The transformation works on raw JSON sub-objects so every field the
// canonical model does not cover (cookies, cache metadata, vendor
// extensions) passes through untouched. Returns the trimmed document
// and the count of retained entries. The input is never modified.
func Trim(doc []byte, cutoff time.Time) ([]byte, int, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, 0, fmt.Errorf("har: trim: %w", err)
	}
	logRaw, ok := root["log"]
	if !ok {
		return nil, 0, ErrNoEntries
	}
	var logObj map[string]json.RawMessage
	if err := json.Unmarshal(logRaw, &logObj); err != nil {
		return nil, 0, fmt.Errorf("har: trim: log: %w", err)
	}
	entriesRaw, ok := logObj["entries"]
	if !ok {
		return nil, 0, ErrNoEntries
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(entriesRaw, &entries); err != nil {
		return nil, 0, fmt.Errorf("har: trim: entries: %w", err)
	}

	retained := make([]json.RawMessage, 0, len(entries))
	pagerefs := make(map[string]struct{})
	for _, raw := range entries {
		var fields struct {
			StartedDateTime string `json:"startedDateTime"`
			Pageref         string `json:"pageref"`
		}
		// An entry that is not even an object is retained as-is.
		_ = json.Unmarshal(raw, &fields)
		if t, known := ParseTime(fields.StartedDateTime); known && t.Before(cutoff) {
			continue
		}
		retained = append(retained, raw)
		if fields.Pageref != "" {
			pagerefs[fields.Pageref] = struct{}{}
		}
	}

	if pagesRaw, ok := logObj["pages"]; ok && len(pagerefs) > 0 {
		var pages []json.RawMessage
		if err := json.Unmarshal(pagesRaw, &pages); err == nil {
			kept := make([]json.RawMessage, 0, len(pages))
			for _, p := range pages {
				var id struct {
					ID string `json:"id"`
				}
				// Pages with an unreadable id are kept, same as entries.
				_ = json.Unmarshal(p, &id)
				if id.ID != "" {
					if _, referenced := pagerefs[id.ID]; !referenced {
						continue
					}
				}
				kept = append(kept, p)
			}
			pagesOut, err := json.Marshal(kept)
			if err != nil {
				return nil, 0, fmt.Errorf("har: trim: pages: %w", err)
			}
			logObj["pages"] = pagesOut
		}
	}

	entriesOut, err := json.Marshal(retained)
	if err != nil {
		return nil, 0, fmt.Errorf("har: trim: entries: %w", err)
	}
	logObj["entries"] = entriesOut
	logOut, err := json.Marshal(logObj)
	if err != nil {
		return nil, 0, fmt.Errorf("har: trim: log: %w", err)
	}
	root["log"] = logOut
	out, err := json.Marshal(root)
	if err != nil {
		return nil, 0, fmt.Errorf("har: trim: %w", err)
	}
	return out, len(retained), nil
}
