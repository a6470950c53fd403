package ics

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// prodID is the stable product identifier emitted in every generated
// calendar, in the conventional "-//owner//product//language" form.
const prodID = "-//calendraft//ICS Codec//EN"

// uidDomain suffixes every generated default UID.
const uidDomain = "calendraft"

// GenerateOption customizes Generate.  Generation itself is total: it
// never fails, whatever the input shape.
type GenerateOption func(*generatorConfig)

type generatorConfig struct {
	fallback time.Time
	fold     bool
}

// WithFallbackTimestamp sets the instant substituted for absent DTSTAMP,
// CREATED and LAST-MODIFIED values.  The default is the current time.
func WithFallbackTimestamp(t time.Time) GenerateOption {
	return func(cfg *generatorConfig) { cfg.fallback = t }
}

// WithLineFolding folds emitted lines at 75 octets per RFC 5545 section
// 3.1.  Folding is a post-processing pass over the finished line buffer
// and is off by default.
func WithLineFolding() GenerateOption {
	return func(cfg *generatorConfig) { cfg.fold = true }
}

// Generate serializes the events, in the given order, as one complete
// VCALENDAR document.  Events are never reordered or deduplicated, every
// optional field is emitted only when present, and the document is
// CRLF-joined.  Generate performs no validation of its input; malformed
// values are serialized verbatim.
func Generate(calendarName string, events []Event, opts ...GenerateOption) string {
	cfg := generatorConfig{fallback: time.Now().UTC()}
	for _, opt := range opts {
		opt(&cfg)
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}
	if calendarName != "" {
		name := EscapeText(calendarName)
		lines = append(lines, "NAME:"+name, "X-WR-CALNAME:"+name)
	}
	for i := range events {
		lines = append(lines, eventLines(&events[i], cfg.fallback)...)
	}
	lines = append(lines, "END:VCALENDAR")

	if cfg.fold {
		lines = foldLines(lines)
	}
	return strings.Join(lines, "\r\n") + "\r\n"
}

// eventLines emits one VEVENT in the fixed property order: identity and
// timestamps, descriptive metadata, recurrence, geography and extensions,
// organizer, attendees, alarms.
func eventLines(ev *Event, fallback time.Time) []string {
	lines := []string{"BEGIN:VEVENT"}
	lines = append(lines, identityLines(ev, fallback)...)
	lines = append(lines, descriptiveLines(ev)...)
	lines = append(lines, recurrenceLines(ev)...)
	lines = append(lines, extensionLines(ev)...)
	lines = append(lines, organizerLines(ev)...)
	lines = append(lines, attendeeLines(ev)...)
	lines = append(lines, alarmLines(ev)...)
	return append(lines, "END:VEVENT")
}

func identityLines(ev *Event, fallback time.Time) []string {
	lines := []string{
		"UID:" + EscapeText(eventUID(ev)),
		"DTSTAMP:" + FormatInstant(orFallback(ev.DtStamp, fallback)),
		"DTSTART:" + FormatInstant(ev.Start),
		"DTEND:" + FormatInstant(ev.End),
		"CREATED:" + FormatInstant(orFallback(ev.Created, fallback)),
		"LAST-MODIFIED:" + FormatInstant(orFallback(ev.LastModified, fallback)),
	}
	if !ev.RecurrenceID.IsZero() {
		lines = append(lines, "RECURRENCE-ID:"+FormatInstant(ev.RecurrenceID))
	}
	if ev.RelatedTo != "" {
		lines = append(lines, "RELATED-TO:"+EscapeText(ev.RelatedTo))
	}
	return lines
}

func descriptiveLines(ev *Event) []string {
	var lines []string
	appendText := func(name, v string) {
		if v != "" {
			lines = append(lines, name+":"+EscapeText(v))
		}
	}
	appendText("SUMMARY", ev.Title)
	appendText("DESCRIPTION", ev.Description)
	appendText("LOCATION", ev.Location)
	if ev.Status != "" {
		lines = append(lines, "STATUS:"+strings.ToUpper(string(ev.Status)))
	}
	if ev.Priority > 0 {
		lines = append(lines, "PRIORITY:"+strconv.Itoa(ev.Priority))
	}
	if len(ev.Categories) > 0 {
		lines = append(lines, "CATEGORIES:"+joinTextList(ev.Categories))
	}
	appendText("URL", ev.URL)
	if ev.Class != "" {
		lines = append(lines, "CLASS:"+strings.ToUpper(string(ev.Class)))
	}
	appendText("COMMENT", ev.Comment)
	appendText("CONTACT", ev.Contact)
	if len(ev.Resources) > 0 {
		lines = append(lines, "RESOURCES:"+joinTextList(ev.Resources))
	}
	if ev.Sequence > 0 {
		lines = append(lines, "SEQUENCE:"+strconv.Itoa(ev.Sequence))
	}
	if ev.Transp != "" {
		lines = append(lines, "TRANSP:"+strings.ToUpper(string(ev.Transp)))
	}
	return lines
}

func recurrenceLines(ev *Event) []string {
	var lines []string
	if ev.RecurrenceRule != "" {
		lines = append(lines, "RRULE:"+ev.RecurrenceRule)
	}
	for _, t := range ev.RDates {
		lines = append(lines, "RDATE:"+FormatInstant(t))
	}
	for _, t := range ev.ExDates {
		lines = append(lines, "EXDATE:"+FormatInstant(t))
	}
	return lines
}

func extensionLines(ev *Event) []string {
	var lines []string
	// A GEO line requires both coordinates; Event.Geo carries both or
	// neither.
	if ev.Geo != nil {
		lines = append(lines, "GEO:"+formatFloat(ev.Geo.Latitude)+";"+formatFloat(ev.Geo.Longitude))
	}
	if ev.Color != "" {
		lines = append(lines, "COLOR:"+EscapeText(ev.Color))
	}
	return lines
}

func organizerLines(ev *Event) []string {
	if ev.Organizer.Email == "" {
		return nil
	}
	line := "ORGANIZER"
	if ev.Organizer.Name != "" {
		line += ";CN=" + quoteParam(ev.Organizer.Name)
	}
	return []string{line + ":mailto:" + ev.Organizer.Email}
}

func attendeeLines(ev *Event) []string {
	var lines []string
	for _, a := range ev.Attendees {
		line := "ATTENDEE"
		if a.Name != "" {
			line += ";CN=" + quoteParam(a.Name)
		}
		if a.Role != "" {
			line += ";ROLE=" + strings.ToUpper(string(a.Role))
		}
		if a.Status != "" {
			line += ";PARTSTAT=" + strings.ToUpper(string(a.Status))
		}
		if a.RSVP {
			line += ";RSVP=TRUE"
		}
		lines = append(lines, line+":mailto:"+a.Email)
	}
	return lines
}

func alarmLines(ev *Event) []string {
	var lines []string
	for _, a := range ev.Alarms {
		lines = append(lines, "BEGIN:VALARM")
		// Absolute triggers are distinguished by the same fixed-width
		// date-time shape the trigger codec tests for.
		if absoluteTriggerRe.MatchString(strings.TrimSpace(a.Trigger)) {
			lines = append(lines, "TRIGGER;VALUE=DATE-TIME:"+a.Trigger)
		} else {
			lines = append(lines, "TRIGGER:"+a.Trigger)
		}
		if a.Action != "" {
			lines = append(lines, "ACTION:"+strings.ToUpper(string(a.Action)))
		}
		if a.Summary != "" {
			lines = append(lines, "SUMMARY:"+EscapeText(a.Summary))
		}
		if a.Description != "" {
			lines = append(lines, "DESCRIPTION:"+EscapeText(a.Description))
		}
		if a.Duration != "" {
			lines = append(lines, "DURATION:"+a.Duration)
		}
		if a.Repeat > 0 {
			lines = append(lines, "REPEAT:"+strconv.Itoa(a.Repeat))
		}
		lines = append(lines, "END:VALARM")
	}
	return lines
}

// eventUID fills in the default "{id}@calendraft" identifier when the
// caller stored no UID; an event without a storage id gets a random one.
func eventUID(ev *Event) string {
	if ev.UID != "" {
		return ev.UID
	}
	id := ev.ID
	if id == "" {
		id = uuid.NewString()
	}
	return id + "@" + uidDomain
}

func orFallback(t, fallback time.Time) time.Time {
	if t.IsZero() {
		return fallback
	}
	return t
}

func joinTextList(values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = EscapeText(v)
	}
	return strings.Join(escaped, ",")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// quoteParam renders a parameter value, quoting it when it contains
// characters reserved by RFC 5545 section 3.2.
func quoteParam(v string) string {
	v = strings.NewReplacer("\"", "", "\r", "", "\n", " ").Replace(v)
	if strings.ContainsAny(v, ";:,") {
		return `"` + v + `"`
	}
	return v
}

const foldWidth = 75

// foldLines wraps each line at 75 octets with single-space continuations.
// It never splits a UTF-8 rune across lines.
func foldLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		out = append(out, foldLine(line)...)
	}
	return out
}

func foldLine(line string) []string {
	if len(line) <= foldWidth {
		return []string{line}
	}
	var out []string
	prefix := ""
	for len(line)+len(prefix) > foldWidth {
		cut := runeSafeCut(line, foldWidth-len(prefix))
		out = append(out, prefix+line[:cut])
		line = line[cut:]
		prefix = " "
	}
	return append(out, prefix+line)
}

// runeSafeCut finds the largest byte offset <= max that does not split a
// rune.
func runeSafeCut(s string, max int) int {
	cut := 0
	for i, r := range s {
		if i+utf8.RuneLen(r) > max {
			break
		}
		cut = i + utf8.RuneLen(r)
	}
	return cut
}
