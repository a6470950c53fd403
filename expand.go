package ics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"
)

const defaultMaxOccurrences = 5000

// ExpandOptions bounds an occurrence expansion.
type ExpandOptions struct {
	// RangeStart and RangeEnd are the inclusive window to materialize.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrences caps the expansion of pathological rules.  Zero
	// means the default cap.
	MaxOccurrences int
}

// Occurrence is one concrete instance of an event within a window.
type Occurrence struct {
	UID   string
	Start time.Time
	End   time.Time
}

// ExpandOccurrences materializes the concrete occurrences of ev inside
// the window: the base instant plus RRULE and RDATE occurrences, minus
// EXDATE exclusions.  Each occurrence keeps the event's own span.  The
// event's RRULE string is interpreted here and nowhere else in the codec;
// an unparsable rule is an error, not a silent empty result.
func ExpandOccurrences(ev Event, opts ExpandOptions) ([]Occurrence, error) {
	if opts.RangeEnd.Before(opts.RangeStart) {
		return nil, errors.New("expand: range end is before range start")
	}
	if opts.MaxOccurrences <= 0 {
		opts.MaxOccurrences = defaultMaxOccurrences
	}

	span := ev.End.Sub(ev.Start)
	var starts []time.Time
	if ev.RecurrenceRule == "" {
		starts = staticStarts(ev, opts)
	} else {
		var err error
		starts, err = ruleStarts(ev, opts)
		if err != nil {
			return nil, err
		}
	}

	if len(starts) > opts.MaxOccurrences {
		starts = starts[:opts.MaxOccurrences]
	}
	out := make([]Occurrence, 0, len(starts))
	for _, s := range starts {
		out = append(out, Occurrence{UID: ev.UID, Start: s, End: s.Add(span)})
	}
	return out, nil
}

// staticStarts handles events without an RRULE: the base start plus any
// RDATE instants, minus EXDATE exclusions, window-filtered and sorted.
func staticStarts(ev Event, opts ExpandOptions) []time.Time {
	excluded := make(map[time.Time]struct{}, len(ev.ExDates))
	for _, ex := range ev.ExDates {
		excluded[ex.UTC()] = struct{}{}
	}

	candidates := append([]time.Time{ev.Start}, ev.RDates...)
	var out []time.Time
	seen := make(map[time.Time]struct{}, len(candidates))
	for _, t := range candidates {
		t = t.UTC()
		if t.Before(opts.RangeStart) || t.After(opts.RangeEnd) {
			continue
		}
		if _, ok := excluded[t]; ok {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// ruleStarts expands an RRULE-bearing event through an rrule set so RDATE
// additions and EXDATE exclusions compose with the rule.
func ruleStarts(ev Event, opts ExpandOptions) ([]time.Time, error) {
	rule, err := rrule.StrToRRule(ev.RecurrenceRule)
	if err != nil {
		return nil, fmt.Errorf("expand: parsing RRULE %q: %w", clip(ev.RecurrenceRule), err)
	}
	rule.DTStart(ev.Start.UTC())

	var set rrule.Set
	set.RRule(rule)
	for _, rd := range ev.RDates {
		set.RDate(rd.UTC())
	}
	for _, ex := range ev.ExDates {
		set.ExDate(ex.UTC())
	}
	return set.Between(opts.RangeStart.UTC(), opts.RangeEnd.UTC(), true), nil
}
