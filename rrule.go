package ics

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// RecurrenceRule is the structured counterpart of Event.RecurrenceRule.
// The VEVENT codec keeps RRULE opaque and verbatim; this type gives
// callers that need FREQ/INTERVAL/COUNT/UNTIL/BY* semantics a documented
// parse/build pair without coupling it to event decoding.
type RecurrenceRule struct {
	opt rrule.ROption
}

// ParseRecurrenceRule decodes an RRULE value such as
// "FREQ=WEEKLY;BYDAY=MO".  A leading "RRULE:" name is tolerated.
func ParseRecurrenceRule(s string) (*RecurrenceRule, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "RRULE:")
	opt, err := rrule.StrToROption(s)
	if err != nil {
		return nil, fmt.Errorf("parsing recurrence rule %q: %w", clip(s), err)
	}
	return &RecurrenceRule{opt: *opt}, nil
}

// String rebuilds the wire form of the rule.
func (r *RecurrenceRule) String() string {
	return r.opt.String()
}

// Options exposes the decoded rule parts.
func (r *RecurrenceRule) Options() rrule.ROption {
	return r.opt
}

// Rule materializes the rule anchored at the given start instant.
func (r *RecurrenceRule) Rule(start time.Time) (*rrule.RRule, error) {
	opt := r.opt
	opt.Dtstart = start.UTC()
	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("building recurrence rule: %w", err)
	}
	return rule, nil
}
