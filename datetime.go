package ics

import "time"

const (
	instantLayoutUtc = "20060102T150405Z"
	dateOnlyLayout   = "20060102"
)

// ParseInstant decodes the two ICS date encodings this codec supports:
// the 16 character UTC basic date-time "YYYYMMDDTHHMMSSZ" and the 8 digit
// date-only "YYYYMMDD", interpreted as midnight UTC.  Any other shape
// reports false; this is a lookup, not a throwing parse.
func ParseInstant(s string) (time.Time, bool) {
	switch len(s) {
	case len(instantLayoutUtc):
		if s[8] != 'T' || s[15] != 'Z' {
			return time.Time{}, false
		}
		t, err := time.ParseInLocation(instantLayoutUtc, s, time.UTC)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	case len(dateOnlyLayout):
		t, err := time.ParseInLocation(dateOnlyLayout, s, time.UTC)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// FormatInstant emits the 16 character UTC basic form.  ICS has second
// resolution only: sub-second components are truncated, not rounded, so
// ParseInstant(FormatInstant(t)) recovers t exactly whenever t has a zero
// sub-second component.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(instantLayoutUtc)
}

// FormatDateOnly emits the 8 digit date-only form of t's UTC calendar day.
func FormatDateOnly(t time.Time) string {
	return t.UTC().Format(dateOnlyLayout)
}
