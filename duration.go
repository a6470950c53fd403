package ics

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DurationUnit is the single dominant unit of a reduced ICS duration.
type DurationUnit string

const (
	UnitDays    DurationUnit = "days"
	UnitHours   DurationUnit = "hours"
	UnitMinutes DurationUnit = "minutes"
	UnitSeconds DurationUnit = "seconds"
)

// Duration is an ISO 8601 duration reduced to its largest non-zero unit.
// The reduction is lossy by design: "P1DT2H" becomes 1 day, the finer
// components are discarded.  FormatDuration mirrors this and only ever
// emits single-unit forms.
type Duration struct {
	Value int
	Unit  DurationUnit
}

var (
	durationDaysRe = regexp.MustCompile(`([0-9]+)D`)
	durationTimeRe = regexp.MustCompile(`T(?:([0-9]+)H)?(?:([0-9]+)M)?(?:([0-9]+)S)?`)
)

// ParseDuration decodes the restricted ISO 8601 duration grammar:
// optional leading "-", optional "P", optional "{n}D", optional
// "T{n}H{n}M{n}S".  The largest non-zero unit wins.  A string with no
// non-zero component reports false.
func ParseDuration(s string) (Duration, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "P")
	if s == "" {
		return Duration{}, false
	}

	var days, hours, minutes, seconds int
	if m := durationDaysRe.FindStringSubmatch(s); m != nil {
		days, _ = strconv.Atoi(m[1])
	}
	if m := durationTimeRe.FindStringSubmatch(s); m != nil {
		if m[1] != "" {
			hours, _ = strconv.Atoi(m[1])
		}
		if m[2] != "" {
			minutes, _ = strconv.Atoi(m[2])
		}
		if m[3] != "" {
			seconds, _ = strconv.Atoi(m[3])
		}
	}

	switch {
	case days > 0:
		return Duration{Value: days, Unit: UnitDays}, true
	case hours > 0:
		return Duration{Value: hours, Unit: UnitHours}, true
	case minutes > 0:
		return Duration{Value: minutes, Unit: UnitMinutes}, true
	case seconds > 0:
		return Duration{Value: seconds, Unit: UnitSeconds}, true
	}
	return Duration{}, false
}

// FormatDuration emits the single-unit wire form: "P{n}D", "PT{n}H",
// "PT{n}M" or "PT{n}S".  Zero or negative magnitudes format to the empty
// string, meaning "no duration".
func FormatDuration(d Duration) string {
	if d.Value <= 0 {
		return ""
	}
	n := strconv.Itoa(d.Value)
	switch d.Unit {
	case UnitDays:
		return "P" + n + "D"
	case UnitHours:
		return "PT" + n + "H"
	case UnitMinutes:
		return "PT" + n + "M"
	case UnitSeconds:
		return "PT" + n + "S"
	}
	return ""
}

// Minutes converts the duration to whole minutes: day=1440, hour=60,
// seconds round up to the next whole minute so reminder code never fires
// later than asked.
func (d Duration) Minutes() int {
	switch d.Unit {
	case UnitDays:
		return d.Value * 24 * 60
	case UnitHours:
		return d.Value * 60
	case UnitMinutes:
		return d.Value
	case UnitSeconds:
		return (d.Value + 59) / 60
	}
	return 0
}

// parseExactDuration decodes the full multi-unit ISO 8601 duration as an
// exact elapsed time.  The parser uses it to derive DTEND from
// DTSTART+DURATION, where the lossy single-unit reduction would produce a
// wrong end instant.  Weeks are accepted per RFC 5545 dur-week.
func parseExactDuration(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "+")
	if !strings.HasPrefix(s, "P") {
		return 0, false
	}
	s = s[1:]

	var total time.Duration
	num := 0
	digits := false
	matched := false
	for _, ch := range s {
		switch {
		case ch >= '0' && ch <= '9':
			num = num*10 + int(ch-'0')
			digits = true
			continue
		case ch == 'T':
			if digits {
				return 0, false
			}
			continue
		}
		if !digits {
			return 0, false
		}
		switch ch {
		case 'W':
			total += time.Duration(num) * 7 * 24 * time.Hour
		case 'D':
			total += time.Duration(num) * 24 * time.Hour
		case 'H':
			total += time.Duration(num) * time.Hour
		case 'M':
			total += time.Duration(num) * time.Minute
		case 'S':
			total += time.Duration(num) * time.Second
		default:
			return 0, false
		}
		num = 0
		digits = false
		matched = true
	}
	if !matched || digits {
		return 0, false
	}
	if neg {
		total = -total
	}
	return total, true
}
