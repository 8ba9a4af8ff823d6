package storage

import (
	"net/url"
	"strings"
)

// CanonicalURL normalizes a URL for duplicate detection: the fragment is
// removed and query parameters are sorted by name. URLs that fail to parse
// canonicalize to themselves, so every document still gets a stable dedup
// key. The operation is idempotent.
func CanonicalURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.RawFragment = ""
	if u.RawQuery != "" {
		q, err := url.ParseQuery(u.RawQuery)
		if err == nil {
			// Values.Encode emits parameters sorted by key.
			u.RawQuery = q.Encode()
		}
	}
	return u.String()
}

// StripFragment removes only the fragment from a URL, leaving query
// parameters untouched. Used by the ranking engine to group scored results
// for the same page.
func StripFragment(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		if i := strings.IndexByte(raw, '#'); i >= 0 {
			return raw[:i]
		}
		return raw
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// containsFold reports whether substr occurs in s, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
