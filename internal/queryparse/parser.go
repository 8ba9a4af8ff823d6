package queryparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Filter is the structured form of a free-text query. Zero timestamp fields
// mean "no bound"; an empty Site means "any site".
type Filter struct {
	Site     string
	AfterTs  int64 // inclusive, epoch milliseconds
	BeforeTs int64 // inclusive, epoch milliseconds
	Text     string
}

var (
	sitePattern   = regexp.MustCompile(`(?i)\bsite:(\S+)`)
	beforePattern = regexp.MustCompile(`(?i)\bbefore:(\d{4}-\d{2}-\d{2})`)
	afterPattern  = regexp.MustCompile(`(?i)\bafter:(\d{4}-\d{2}-\d{2})`)
)

// Parse extracts the filter tokens from a raw query. Each matched token is
// removed from the string; the trimmed remainder becomes Filter.Text. Parse
// never fails: date components outside the calendar range are normalized by
// month/day arithmetic rather than rejected.
func Parse(raw string) Filter {
	text := strings.TrimSpace(raw)
	var f Filter

	text = sitePattern.ReplaceAllStringFunc(text, func(m string) string {
		f.Site = strings.ToLower(sitePattern.FindStringSubmatch(m)[1])
		return ""
	})
	text = beforePattern.ReplaceAllStringFunc(text, func(m string) string {
		f.BeforeTs = dateToMillis(beforePattern.FindStringSubmatch(m)[1], true)
		return ""
	})
	text = afterPattern.ReplaceAllStringFunc(text, func(m string) string {
		f.AfterTs = dateToMillis(afterPattern.FindStringSubmatch(m)[1], false)
		return ""
	})

	// Only the ends are trimmed; interior spacing left by token removal is
	// preserved as-is.
	f.Text = strings.TrimSpace(text)
	return f
}

// dateToMillis converts a YYYY-MM-DD string to an epoch-millisecond
// timestamp in local time. With end set, the time is 23:59:59.999 of that
// day, otherwise midnight. time.Date normalizes out-of-range components
// (month 13 rolls into the next year), matching the accepted lenient
// behavior for malformed dates.
func dateToMillis(ymd string, end bool) int64 {
	parts := strings.SplitN(ymd, "-", 3)
	y, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	d, _ := strconv.Atoi(parts[2])

	if end {
		return time.Date(y, time.Month(m), d, 23, 59, 59, 999e6, time.Local).UnixMilli()
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.Local).UnixMilli()
}
