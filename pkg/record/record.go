// Package record defines the per-company output row shared by the finder and exporters.
package record

import (
	"bytes"
	"encoding/json"
	"slices"
	"time"
)

// TimeLayout is ISO-8601 UTC with microseconds and a trailing Z.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// Info messages.
const (
	InfoFound           = "LinkedIn page successfully found"
	InfoNotFound        = "No LinkedIn company page found in search results"
	InfoSearchError     = "Search error: "
	InfoUnexpectedError = "Unexpected error: "
)

// Known field keys, in export order.
const (
	KeyCompanyName = "companyName"
	KeySearchQuery = "searchQuery"
	KeyLinkedInURL = "linkedinUrl"
	KeyInfo        = "info"
	KeyTimestamp   = "timestamp"
)

// Extra keys set by the finder.
const (
	KeyResultTitle     = "resultTitle"
	KeyScore           = "score"
	KeyMatchConfidence = "matchConfidence"
)

// KnownKeys lists the fixed fields every record carries.
var KnownKeys = []string{KeyCompanyName, KeySearchQuery, KeyLinkedInURL, KeyInfo, KeyTimestamp}

// Record is the outcome of looking up one company.
// LinkedInURL is empty when no page was found.
type Record struct {
	Extra       map[string]string
	CompanyName string
	SearchQuery string
	LinkedInURL string
	Info        string
	Timestamp   string
}

// Timestamp formats t in TimeLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Get returns the value stored under key, known field or extra.
func (r *Record) Get(key string) string {
	switch key {
	case KeyCompanyName:
		return r.CompanyName
	case KeySearchQuery:
		return r.SearchQuery
	case KeyLinkedInURL:
		return r.LinkedInURL
	case KeyInfo:
		return r.Info
	case KeyTimestamp:
		return r.Timestamp
	default:
		return r.Extra[key]
	}
}

// SetExtra stores an additional field. Known keys are ignored.
func (r *Record) SetExtra(key, value string) {
	if slices.Contains(KnownKeys, key) {
		return
	}
	if r.Extra == nil {
		r.Extra = map[string]string{}
	}
	r.Extra[key] = value
}

// ExtraKeys returns the record's extra keys, sorted.
func (r *Record) ExtraKeys() []string {
	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Keys returns the known keys followed by the sorted extra keys.
func (r *Record) Keys() []string {
	return append(slices.Clone(KnownKeys), r.ExtraKeys()...)
}

// Header returns the known keys followed by the sorted union of all extra keys.
func Header(records []Record) []string {
	seen := map[string]bool{}
	var extras []string
	for i := range records {
		for k := range records[i].Extra {
			if !seen[k] {
				seen[k] = true
				extras = append(extras, k)
			}
		}
	}
	slices.Sort(extras)
	return append(slices.Clone(KnownKeys), extras...)
}

// MarshalJSON writes the known fields in order, then the extras sorted by key.
// HTML characters stay unescaped only when the result is written through a
// json.Encoder with SetEscapeHTML(false); json.Marshal escapes them again.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSONString(&buf, r.Get(k)); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the known fields and keeps any others as extras.
func (r *Record) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*r = Record{
		CompanyName: m[KeyCompanyName],
		SearchQuery: m[KeySearchQuery],
		LinkedInURL: m[KeyLinkedInURL],
		Info:        m[KeyInfo],
		Timestamp:   m[KeyTimestamp],
	}
	for k, v := range m {
		r.SetExtra(k, v)
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1) // Encode appends a newline.
	return nil
}
