package ics

import "time"

// Event is the codec's in-memory representation of one VEVENT.  Parse
// produces Event values and never mutates them afterwards; Generate reads
// caller-supplied values once and retains no reference.  Zero values mean
// the field is absent: zero time.Time, empty string, empty slice, nil
// pointer.
type Event struct {
	// ID is the caller's storage identifier.  It is never read from the
	// wire; Generate uses it to build the default UID "{id}@calendraft"
	// when UID is empty.
	ID string

	UID          string
	DtStamp      time.Time
	Created      time.Time
	LastModified time.Time
	RecurrenceID time.Time
	RelatedTo    string

	// Start and End are required UTC instants.  The codec does not
	// enforce Start <= End; that is a caller-level invariant.
	Start time.Time
	End   time.Time

	Title       string
	Description string
	Location    string
	Status      EventStatus
	Priority    int // 0 means undefined, valid range 1-9
	Categories  []string
	URL         string
	Class       Classification
	Comment     string
	Contact     string
	Resources   []string
	Sequence    int
	Transp      TimeTransparency

	// RecurrenceRule holds the RRULE value verbatim.  The VEVENT codec
	// performs no semantic validation of it; use ParseRecurrenceRule for
	// a structured view.
	RecurrenceRule string
	RDates         []time.Time
	ExDates        []time.Time

	Organizer Organizer
	Attendees []Attendee
	Alarms    []Alarm

	// Geo is nil or carries both coordinates; there is no valid state
	// with exactly one of latitude and longitude set.
	Geo   *GeoPoint
	Color string
}

// Organizer is the decoded ORGANIZER property.  An empty Email means the
// property was absent.
type Organizer struct {
	Name  string
	Email string
}

// Attendee is one decoded ATTENDEE property.
type Attendee struct {
	Name   string
	Email  string
	Role   ParticipationRole
	Status ParticipationStatus
	RSVP   bool
}

// Alarm is one decoded VALARM sub-component.  Trigger holds the TRIGGER
// value verbatim; ParseTrigger interprets it.
type Alarm struct {
	Trigger     string
	Action      AlarmAction
	Summary     string
	Description string
	Duration    string
	Repeat      int
}

// GeoPoint is a decoded GEO property value.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}
