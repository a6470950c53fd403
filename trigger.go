package ics

import (
	"regexp"
	"strings"
	"time"
)

// TriggerRelation is the three-way semantic of an alarm trigger relative
// to its event.
type TriggerRelation string

const (
	TriggerBefore TriggerRelation = "before"
	TriggerAt     TriggerRelation = "at"
	TriggerAfter  TriggerRelation = "after"
)

// Trigger is a decoded VALARM TRIGGER value.
type Trigger struct {
	When  TriggerRelation
	Value int
	Unit  DurationUnit
}

var absoluteTriggerRe = regexp.MustCompile(`^[0-9]{8}T[0-9]{6}Z?$`)

// ParseTrigger decodes a TRIGGER value.  An absolute date-time trigger is
// recognized by its fixed-width shape and mapped to {at, 0, minutes}; the
// actual instant is deliberately not recovered here, callers re-derive it
// from the event's own start date (see Event.AlarmTime).  A relative
// trigger reuses the duration reduction, with a leading "-" meaning
// before and none meaning after.
func ParseTrigger(s string) (Trigger, bool) {
	s = strings.TrimSpace(s)
	if absoluteTriggerRe.MatchString(s) {
		return Trigger{When: TriggerAt, Value: 0, Unit: UnitMinutes}, true
	}
	d, ok := ParseDuration(s)
	if !ok {
		return Trigger{}, false
	}
	when := TriggerAfter
	if strings.HasPrefix(s, "-") {
		when = TriggerBefore
	}
	return Trigger{When: when, Value: d.Value, Unit: d.Unit}, true
}

// FormatTrigger is the inverse of ParseTrigger for relative triggers.
// "at" triggers format to the empty string by contract; callers
// substitute the absolute timestamp before emission.
func FormatTrigger(t Trigger) string {
	if t.When == TriggerAt {
		return ""
	}
	s := FormatDuration(Duration{Value: t.Value, Unit: t.Unit})
	if s == "" {
		return ""
	}
	if t.When == TriggerBefore {
		return "-" + s
	}
	return s
}

// AlarmTime resolves the instant an alarm fires.  Absolute ("at")
// triggers fire at the event start; relative triggers offset the start by
// the trigger's whole-minute magnitude.  It reports false when the stored
// trigger string cannot be decoded.
func (ev *Event) AlarmTime(a Alarm) (time.Time, bool) {
	t, ok := ParseTrigger(a.Trigger)
	if !ok {
		return time.Time{}, false
	}
	offset := time.Duration(Duration{Value: t.Value, Unit: t.Unit}.Minutes()) * time.Minute
	switch t.When {
	case TriggerBefore:
		return ev.Start.Add(-offset), true
	case TriggerAfter:
		return ev.Start.Add(offset), true
	}
	return ev.Start, true
}
