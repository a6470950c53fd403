package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generatorFallback = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func fullFeaturedEvent() Event {
	return Event{
		UID:          "evt-1@example.com",
		DtStamp:      time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
		Created:      time.Date(2024, 5, 30, 12, 0, 0, 0, time.UTC),
		LastModified: time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC),
		Start:        time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		End:          time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		Title:        "Team Sync; Q3, Planning",
		Description:  "Line1\nLine2",
		Location:     "HQ",
		Status:       StatusConfirmed,
		Priority:     1,
		Categories:   []string{"work", "planning"},
		URL:          "https://example.com/e/1",
		Class:        ClassPublic,
		Resources:    []string{"PROJECTOR"},
		Sequence:     3,
		Transp:       TransparencyOpaque,
		RecurrenceRule: "FREQ=WEEKLY;BYDAY=MO",
		RDates: []time.Time{
			time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC),
			time.Date(2024, 6, 22, 9, 0, 0, 0, time.UTC),
		},
		ExDates:   []time.Time{time.Date(2024, 6, 8, 9, 0, 0, 0, time.UTC)},
		Organizer: Organizer{Name: "Boss", Email: "boss@example.com"},
		Attendees: []Attendee{{
			Name:   "Dev One",
			Email:  "dev@example.com",
			Role:   RoleReqParticipant,
			Status: PartStatAccepted,
			RSVP:   true,
		}},
		Alarms: []Alarm{{
			Trigger:     "-PT15M",
			Action:      ActionDisplay,
			Description: "Reminder",
		}},
		Geo:   &GeoPoint{Latitude: 37.386013, Longitude: -122.082932},
		Color: "#FF0000",
	}
}

func TestGenerateFullFeaturedEvent(t *testing.T) {
	got := Generate("Team Calendar", []Event{fullFeaturedEvent()},
		WithFallbackTimestamp(generatorFallback))

	want := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//calendraft//ICS Codec//EN
CALSCALE:GREGORIAN
METHOD:PUBLISH
NAME:Team Calendar
X-WR-CALNAME:Team Calendar
BEGIN:VEVENT
UID:evt-1@example.com
DTSTAMP:20240601T080000Z
DTSTART:20240601T090000Z
DTEND:20240601T100000Z
CREATED:20240530T120000Z
LAST-MODIFIED:20240531T120000Z
SUMMARY:Team Sync\; Q3\, Planning
DESCRIPTION:Line1\nLine2
LOCATION:HQ
STATUS:CONFIRMED
PRIORITY:1
CATEGORIES:work,planning
URL:https://example.com/e/1
CLASS:PUBLIC
RESOURCES:PROJECTOR
SEQUENCE:3
TRANSP:OPAQUE
RRULE:FREQ=WEEKLY;BYDAY=MO
RDATE:20240615T090000Z
RDATE:20240622T090000Z
EXDATE:20240608T090000Z
GEO:37.386013;-122.082932
COLOR:#FF0000
ORGANIZER;CN=Boss:mailto:boss@example.com
ATTENDEE;CN=Dev One;ROLE=REQ-PARTICIPANT;PARTSTAT=ACCEPTED;RSVP=TRUE:mailto:dev@example.com
BEGIN:VALARM
TRIGGER:-PT15M
ACTION:DISPLAY
DESCRIPTION:Reminder
END:VALARM
END:VEVENT
END:VCALENDAR
`
	assert.Equal(t, want, strings.ReplaceAll(got, "\r\n", "\n"))
}

func TestGenerateUsesCrlf(t *testing.T) {
	got := Generate("", nil, WithFallbackTimestamp(generatorFallback))
	assert.True(t, strings.HasSuffix(got, "\r\n"))
	for _, line := range strings.Split(strings.TrimSuffix(got, "\r\n"), "\r\n") {
		assert.NotContains(t, line, "\n")
		assert.NotContains(t, line, "\r")
	}
}

func TestGenerateWithoutName(t *testing.T) {
	got := Generate("", nil, WithFallbackTimestamp(generatorFallback))
	assert.NotContains(t, got, "NAME:")
	assert.NotContains(t, got, "X-WR-CALNAME:")
}

func TestGenerateDefaultUID(t *testing.T) {
	ev := Event{
		ID:    "42",
		Start: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	got := Generate("", []Event{ev}, WithFallbackTimestamp(generatorFallback))
	assert.Contains(t, got, "UID:42@calendraft\r\n")

	// without a storage id the UID is still present and unique-looking
	got = Generate("", []Event{{Start: ev.Start, End: ev.End}},
		WithFallbackTimestamp(generatorFallback))
	events, _ := Parse(got)
	require.Len(t, events, 1)
	assert.True(t, strings.HasSuffix(events[0].UID, "@calendraft"))
	assert.Greater(t, len(events[0].UID), len("@calendraft"))
}

func TestGenerateFallbackTimestamps(t *testing.T) {
	ev := Event{
		Start: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	got := Generate("", []Event{ev}, WithFallbackTimestamp(generatorFallback))
	assert.Contains(t, got, "DTSTAMP:20240601T080000Z\r\n")
	assert.Contains(t, got, "CREATED:20240601T080000Z\r\n")
	assert.Contains(t, got, "LAST-MODIFIED:20240601T080000Z\r\n")
}

func TestGenerateAbsoluteTrigger(t *testing.T) {
	ev := Event{
		Start:  time.Date(2024, 12, 25, 9, 0, 0, 0, time.UTC),
		End:    time.Date(2024, 12, 25, 10, 0, 0, 0, time.UTC),
		Alarms: []Alarm{{Trigger: "20241225T080000Z", Action: ActionDisplay}},
	}
	got := Generate("", []Event{ev}, WithFallbackTimestamp(generatorFallback))
	assert.Contains(t, got, "TRIGGER;VALUE=DATE-TIME:20241225T080000Z\r\n")
}

func TestGenerateGeoRequiresBothCoordinates(t *testing.T) {
	ev := Event{
		Start: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	got := Generate("", []Event{ev}, WithFallbackTimestamp(generatorFallback))
	assert.NotContains(t, got, "GEO:")

	ev.Geo = &GeoPoint{Latitude: 48.2, Longitude: 16.37}
	got = Generate("", []Event{ev}, WithFallbackTimestamp(generatorFallback))
	assert.Contains(t, got, "GEO:48.2;16.37\r\n")
}

func TestGenerateQuotesParamValues(t *testing.T) {
	ev := Event{
		Start:     time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		End:       time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		Attendees: []Attendee{{Name: "Smith, Bob", Email: "bob@example.com"}},
	}
	got := Generate("", []Event{ev}, WithFallbackTimestamp(generatorFallback))
	assert.Contains(t, got, `ATTENDEE;CN="Smith, Bob":mailto:bob@example.com`)
}

func TestGeneratePreservesEventOrder(t *testing.T) {
	var events []Event
	for _, title := range []string{"zulu", "alpha", "mike"} {
		events = append(events, Event{
			Title: title,
			Start: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		})
	}
	got := Generate("", events, WithFallbackTimestamp(generatorFallback))
	zi := strings.Index(got, "SUMMARY:zulu")
	ai := strings.Index(got, "SUMMARY:alpha")
	mi := strings.Index(got, "SUMMARY:mike")
	assert.True(t, zi < ai && ai < mi, "events must keep their input order")
}

func TestGenerateLineFolding(t *testing.T) {
	ev := Event{
		UID:         "fold@example.com",
		Start:       time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		Description: strings.Repeat("All work and no play makes a dull calendar. ", 5),
	}
	got := Generate("", []Event{ev},
		WithFallbackTimestamp(generatorFallback), WithLineFolding())

	for _, line := range strings.Split(strings.TrimSuffix(got, "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), 75, "folded line too long: %q", line)
	}

	// unfolding on re-parse recovers the original text
	events, diags := Parse(got)
	require.Len(t, events, 1)
	assert.Empty(t, diags)
	assert.Equal(t, ev.Description, events[0].Description)
}

func TestGenerateParseRoundTrip(t *testing.T) {
	original := fullFeaturedEvent()
	document := Generate("Round Trip", []Event{original},
		WithFallbackTimestamp(generatorFallback))

	events, diags := Parse(document)
	require.Len(t, events, 1)
	assert.Empty(t, diags)
	if diff := cmp.Diff(original, events[0]); diff != "" {
		t.Errorf("round trip mismatch (-original +reparsed):\n%s", diff)
	}
}
