package ics

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const noEventsDiagnostic = "No events found in the ICS file."

// Parse decodes a full ICS document (one VCALENDAR containing zero or
// more VEVENT blocks) into event records plus non-fatal diagnostics.
//
// One bad event never aborts the batch: an event missing its required
// dates is skipped with a diagnostic and parsing continues.  A document
// that cannot be recognized as iCalendar at all yields an empty event
// list and a single diagnostic, as does a document with no VEVENT blocks.
// Parse never panics, whatever the input; every failure path returns
// through the diagnostics slice.
func Parse(document string) ([]Event, []string) {
	events := []Event{}
	var diags []string

	lines := readContentLines(document)
	if !containsMarker(lines, "BEGIN:VCALENDAR") {
		return events, []string{"Could not parse the ICS file: no VCALENDAR component found."}
	}

	eventCount := 0
	for i := 0; i < len(lines); i++ {
		if marker(lines[i]) != "BEGIN:VEVENT" {
			continue
		}
		eventCount++
		block, next, ok := collectEventBlock(lines, i+1)
		if !ok {
			diags = append(diags, fmt.Sprintf("Skipping event %d: unterminated VEVENT block.", eventCount))
			break
		}
		i = next

		ev, warnings, err := decodeEvent(eventCount, block)
		diags = append(diags, warnings...)
		if err != nil {
			diags = append(diags, fmt.Sprintf("Skipping event %d%s: %v.", eventCount, eventLabel(block), err))
			continue
		}
		events = append(events, ev)
	}

	if eventCount == 0 {
		diags = append(diags, noEventsDiagnostic)
	}
	return events, diags
}

// eventBlock is the raw material of one VEVENT: its own content lines and
// the content lines of each nested VALARM.
type eventBlock struct {
	props  []*contentLine
	alarms [][]*contentLine
}

// readContentLines tokenizes the document into unfolded, non-empty
// logical lines.  Lines that cannot be read are simply not produced; the
// scanner itself never fails on string input.
func readContentLines(document string) []string {
	var out []string
	ls := newLineScanner(strings.NewReader(document))
	for {
		line, err := ls.Next()
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
		if err == io.EOF {
			return out
		}
		if err != nil {
			return out
		}
	}
}

// marker normalizes a line for BEGIN/END comparison.
func marker(line string) string {
	return strings.ToUpper(strings.TrimSpace(line))
}

func containsMarker(lines []string, want string) bool {
	for _, l := range lines {
		if marker(l) == want {
			return true
		}
	}
	return false
}

// collectEventBlock gathers the lines of one VEVENT starting at index i
// (the line after BEGIN:VEVENT).  Nested VALARM blocks are collected
// separately; other nested components are skipped.  It returns the index
// of the END:VEVENT line, and ok=false when the block never terminates.
func collectEventBlock(lines []string, i int) (eventBlock, int, bool) {
	var block eventBlock
	for ; i < len(lines); i++ {
		m := marker(lines[i])
		switch {
		case m == "END:VEVENT":
			return block, i, true
		case m == "BEGIN:VALARM":
			alarm, next, ok := collectSubBlock(lines, i+1, "END:VALARM")
			if !ok {
				return block, i, false
			}
			block.alarms = append(block.alarms, alarm)
			i = next
		case strings.HasPrefix(m, "BEGIN:"):
			// Unsupported nesting; skip to its END.
			_, next, ok := collectSubBlock(lines, i+1, "END:"+strings.TrimPrefix(m, "BEGIN:"))
			if !ok {
				return block, i, false
			}
			i = next
		default:
			cl, err := parseContentLine(lines[i])
			if err != nil {
				// Junk lines in third-party feeds are tolerated.
				continue
			}
			block.props = append(block.props, cl)
		}
	}
	return block, i, false
}

func collectSubBlock(lines []string, i int, end string) ([]*contentLine, int, bool) {
	var out []*contentLine
	for ; i < len(lines); i++ {
		m := marker(lines[i])
		if m == end {
			return out, i, true
		}
		if strings.HasPrefix(m, "BEGIN:") || strings.HasPrefix(m, "END:") {
			// A stray marker inside a sub-block means the block never
			// closed properly.
			return out, i, false
		}
		cl, err := parseContentLine(lines[i])
		if err != nil {
			continue
		}
		out = append(out, cl)
	}
	return out, i, false
}

// eventLabel picks a human-readable identifier for diagnostics.
func eventLabel(block eventBlock) string {
	if p := firstProp(block.props, "UID"); p != nil && p.Value != "" {
		return fmt.Sprintf(" (UID %s)", UnescapeText(p.Value))
	}
	if p := firstProp(block.props, "SUMMARY"); p != nil && p.Value != "" {
		return fmt.Sprintf(" (%q)", UnescapeText(p.Value))
	}
	return ""
}

func firstProp(props []*contentLine, name string) *contentLine {
	for _, p := range props {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func allProps(props []*contentLine, name string) []*contentLine {
	var out []*contentLine
	for _, p := range props {
		if p.Name == name {
			out = append(out, p)
		}
	}
	return out
}

func propValue(props []*contentLine, name string) string {
	if p := firstProp(props, name); p != nil {
		return p.Value
	}
	return ""
}

func propText(props []*contentLine, name string) string {
	return UnescapeText(propValue(props, name))
}

func propInstant(props []*contentLine, name string) time.Time {
	if t, ok := ParseInstant(propValue(props, name)); ok {
		return t
	}
	return time.Time{}
}

// decodeEvent extracts one Event from its raw block.  An error means the
// whole event is rejected; warnings report dropped optional values that
// would otherwise vanish silently.
func decodeEvent(idx int, block eventBlock) (Event, []string, error) {
	var warnings []string
	props := block.props
	ev := Event{
		UID:          propText(props, "UID"),
		DtStamp:      propInstant(props, "DTSTAMP"),
		Created:      propInstant(props, "CREATED"),
		LastModified: propInstant(props, "LAST-MODIFIED"),
		RecurrenceID: propInstant(props, "RECURRENCE-ID"),
		RelatedTo:    propText(props, "RELATED-TO"),

		Title:       propText(props, "SUMMARY"),
		Description: propText(props, "DESCRIPTION"),
		Location:    propText(props, "LOCATION"),
		Comment:     propText(props, "COMMENT"),
		Contact:     propText(props, "CONTACT"),
		URL:         propText(props, "URL"),
		Color:       propText(props, "COLOR"),

		Status: NormalizeEventStatus(propValue(props, "STATUS")),
		Class:  NormalizeClassification(propValue(props, "CLASS")),
		Transp: NormalizeTransparency(propValue(props, "TRANSP")),

		RecurrenceRule: propValue(props, "RRULE"),
	}

	start, ok := ParseInstant(propValue(props, "DTSTART"))
	if !ok {
		return Event{}, warnings, ErrMissingStartDate
	}
	ev.Start = start

	if end, ok := ParseInstant(propValue(props, "DTEND")); ok {
		ev.End = end
	} else if d, ok := parseExactDuration(propValue(props, "DURATION")); ok {
		// The exact multi-unit duration, not the lossy single-unit
		// reduction: the derived DTEND needs true elapsed time.
		ev.End = start.Add(d)
	} else {
		return Event{}, warnings, ErrMissingEndDate
	}

	if n, err := strconv.Atoi(propValue(props, "PRIORITY")); err == nil && n >= 0 && n <= 9 {
		ev.Priority = n
	}
	if n, err := strconv.Atoi(propValue(props, "SEQUENCE")); err == nil && n >= 0 {
		ev.Sequence = n
	}

	ev.Categories = decodeTextList(allProps(props, "CATEGORIES"))
	ev.Resources = decodeTextList(allProps(props, "RESOURCES"))
	ev.Geo = decodeGeo(propValue(props, "GEO"))

	ev.RDates, warnings = decodeInstantList(idx, "RDATE", allProps(props, "RDATE"), warnings)
	ev.ExDates, warnings = decodeInstantList(idx, "EXDATE", allProps(props, "EXDATE"), warnings)

	if p := firstProp(props, "ORGANIZER"); p != nil {
		name, email := decodeCalAddress(p)
		ev.Organizer = Organizer{Name: name, Email: email}
	}
	for _, p := range allProps(props, "ATTENDEE") {
		ev.Attendees = append(ev.Attendees, decodeAttendee(p))
	}
	for _, alarm := range block.alarms {
		if a, ok := decodeAlarm(alarm); ok {
			ev.Alarms = append(ev.Alarms, a)
		}
	}
	return ev, warnings, nil
}

// decodeTextList flattens comma-separated or repeated text properties
// into trimmed strings.  Escaped commas do not split.
func decodeTextList(props []*contentLine) []string {
	var out []string
	for _, p := range props {
		for _, part := range splitUnescapedCommas(p.Value) {
			v := strings.TrimSpace(UnescapeText(part))
			if v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func splitUnescapedCommas(s string) []string {
	var out []string
	start := 0
	escaped := false
	for i := 0; i < len(s); i++ {
		switch {
		case escaped:
			escaped = false
		case s[i] == '\\':
			escaped = true
		case s[i] == ',':
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

// decodeInstantList decodes RDATE/EXDATE occurrences.  Absent values are
// omitted silently; malformed values are dropped with a warning so the
// data loss is visible to the caller.
func decodeInstantList(idx int, name string, props []*contentLine, warnings []string) ([]time.Time, []string) {
	var out []time.Time
	for _, p := range props {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			t, ok := ParseInstant(part)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("Event %d: ignoring malformed %s value %q.", idx, name, clip(part)))
				continue
			}
			out = append(out, t)
		}
	}
	return out, warnings
}

// decodeGeo accepts the "{lat};{lon}" wire shape (comma tolerated as the
// separator).  Anything else yields no geography at all; there is no
// state with only one coordinate.
func decodeGeo(v string) *GeoPoint {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	sep := ";"
	if !strings.Contains(v, sep) {
		sep = ","
	}
	parts := strings.SplitN(v, sep, 2)
	if len(parts) != 2 {
		return nil
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	return &GeoPoint{Latitude: lat, Longitude: lon}
}

var (
	calAddressCnRe     = regexp.MustCompile(`(?i)CN=([^;:]+)`)
	calAddressMailtoRe = regexp.MustCompile(`(?i)mailto:([^;,\s]+)`)
)

// decodeCalAddress extracts the common name and email of an ORGANIZER or
// ATTENDEE.  CN and mailto: embedded in the value win; the CN parameter
// is the fallback.
func decodeCalAddress(p *contentLine) (name, email string) {
	if m := calAddressCnRe.FindStringSubmatch(p.Value); m != nil {
		name = strings.Trim(strings.TrimSpace(m[1]), `"`)
	}
	if m := calAddressMailtoRe.FindStringSubmatch(p.Value); m != nil {
		email = m[1]
	}
	if name == "" {
		name = strings.TrimSpace(p.param("CN"))
	}
	return name, email
}

func decodeAttendee(p *contentLine) Attendee {
	name, email := decodeCalAddress(p)
	a := Attendee{
		Name:  name,
		Email: email,
		RSVP:  strings.EqualFold(p.param("RSVP"), "TRUE"),
	}
	if role := p.param("ROLE"); role != "" {
		a.Role = NormalizeRole(role)
	}
	if status := p.param("PARTSTAT"); status != "" {
		a.Status = NormalizeParticipationStatus(status)
	}
	return a
}

// decodeAlarm converts one VALARM block.  An alarm missing either
// TRIGGER or ACTION is dropped rather than rejecting the whole event.
func decodeAlarm(props []*contentLine) (Alarm, bool) {
	trigger := propValue(props, "TRIGGER")
	action := propValue(props, "ACTION")
	if trigger == "" || action == "" {
		return Alarm{}, false
	}
	a := Alarm{
		Trigger:     trigger,
		Action:      NormalizeAlarmAction(action),
		Summary:     propText(props, "SUMMARY"),
		Description: propText(props, "DESCRIPTION"),
		Duration:    propValue(props, "DURATION"),
	}
	if n, err := strconv.Atoi(propValue(props, "REPEAT")); err == nil && n > 0 {
		a.Repeat = n
	}
	return a, true
}
