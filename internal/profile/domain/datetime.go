package profile

import (
	"strings"
	"time"
)

// DateOrder disambiguates NN/NN/YYYY date strings. It has no effect on
// unambiguous formats.
type DateOrder string

const (
	OrderDMY DateOrder = "DMY"
	OrderMDY DateOrder = "MDY"
	OrderYMD DateOrder = "YMD"
)

// Two-digit years at or above the pivot read as 19xx, below as 20xx
// (24 -> 2024, 99 -> 1999, 50 -> 1950). Fixed convention, not configurable.
const twoDigitYearPivot = 50

// dateLayoutRule is one stage of the timestamp cascade. Layouts within a
// rule run most-specific first. Numeric day/month elements use the lenient
// single-digit reference forms so both padded and unpadded cells parse.
type dateLayoutRule struct {
	name    string
	layouts []string
	dmy     bool // skipped when the MDY hint is set
	mdy     bool // only tried when the MDY hint is set
}

var dateLayoutRules = []dateLayoutRule{
	{name: "iso8601", layouts: []string{
		time.RFC3339,
		"2006-1-2T15:04:05",
		"2006-1-2 15:04:05",
		"2006-1-2 15:04",
		"2006-1-2",
	}},
	{name: "slash-ymd", layouts: []string{
		"2006/1/2 15:04:05",
		"2006/1/2 15:04",
		"2006/1/2",
	}},
	{name: "slash-dmy", dmy: true, layouts: []string{
		"2/1/2006 15:04:05",
		"2/1/2006 15:04",
		"2/1/2006",
	}},
	{name: "slash-mdy", mdy: true, layouts: []string{
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
		"1/2/2006",
	}},
	{name: "dash-dmy", layouts: []string{
		"2-1-2006 15:04:05",
		"2-1-2006 15:04",
		"2-1-2006",
	}},
	{name: "dash-month-name", layouts: []string{
		"2-Jan-06 15:04:05",
		"2-Jan-06 15:04",
		"2-Jan-06",
		"2-Jan-2006 15:04:05",
		"2-Jan-2006",
	}},
}

// ParseTimestamp parses a date string plus an optional separate time string
// through the format cascade; the first matching pattern wins. A separate
// time string is concatenated with a single space; an absent one means
// midnight. The second return is false when nothing matches - callers treat
// that as a skip condition, never an error.
func ParseTimestamp(dateStr, timeStr string, hint DateOrder) (time.Time, bool) {
	s := strings.TrimSpace(dateStr)
	if s == "" {
		return time.Time{}, false
	}
	if t := strings.TrimSpace(timeStr); t != "" {
		s = s + " " + t
	}
	for _, rule := range dateLayoutRules {
		if rule.mdy && hint != OrderMDY {
			continue
		}
		if rule.dmy && hint == OrderMDY {
			continue
		}
		for _, layout := range rule.layouts {
			t, err := time.Parse(layout, s)
			if err != nil {
				continue
			}
			if hasTwoDigitYear(layout) {
				t = pivotTwoDigitYear(t)
			}
			return t, true
		}
	}
	return time.Time{}, false
}

func hasTwoDigitYear(layout string) bool {
	return strings.Contains(layout, "06") && !strings.Contains(layout, "2006")
}

// pivotTwoDigitYear remaps the century chosen by time.Parse (which pivots
// at 69) onto this package's fixed pivot at 50.
func pivotTwoDigitYear(t time.Time) time.Time {
	yy := t.Year() % 100
	want := 2000 + yy
	if yy >= twoDigitYearPivot {
		want = 1900 + yy
	}
	if want == t.Year() {
		return t
	}
	return time.Date(want, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
