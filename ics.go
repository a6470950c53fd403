// Package ics is a bidirectional codec between RFC 5545 iCalendar text
// (with the RFC 7986 COLOR extension) and an in-memory calendar event
// model.  Parse consumes arbitrary, often slightly non-conformant feeds
// and degrades gracefully; Generate emits conformant output from stored
// event data.  All instants are UTC "basic" date-times; VTIMEZONE
// components are not interpreted.
package ics

import "strings"

// EventStatus enumerates the STATUS property values recognized for a
// VEVENT (RFC 5545 section 3.8.1.11).  Input is matched
// case-insensitively; output is always upper case.
type EventStatus string

const (
	StatusConfirmed EventStatus = "CONFIRMED"
	StatusTentative EventStatus = "TENTATIVE"
	StatusCancelled EventStatus = "CANCELLED"
)

// Classification enumerates CLASS property values (section 3.8.1.3).
type Classification string

const (
	ClassPublic       Classification = "PUBLIC"
	ClassPrivate      Classification = "PRIVATE"
	ClassConfidential Classification = "CONFIDENTIAL"
)

// TimeTransparency enumerates TRANSP property values (section 3.8.2.7).
type TimeTransparency string

const (
	TransparencyOpaque      TimeTransparency = "OPAQUE" // default
	TransparencyTransparent TimeTransparency = "TRANSPARENT"
)

// ParticipationRole enumerates the ROLE attendee parameter
// (section 3.2.16).
type ParticipationRole string

const (
	RoleChair          ParticipationRole = "CHAIR"
	RoleReqParticipant ParticipationRole = "REQ-PARTICIPANT"
	RoleOptParticipant ParticipationRole = "OPT-PARTICIPANT"
	RoleNonParticipant ParticipationRole = "NON-PARTICIPANT"
)

// ParticipationStatus enumerates the PARTSTAT attendee parameter
// (section 3.2.12).
type ParticipationStatus string

const (
	PartStatNeedsAction ParticipationStatus = "NEEDS-ACTION"
	PartStatAccepted    ParticipationStatus = "ACCEPTED"
	PartStatDeclined    ParticipationStatus = "DECLINED"
	PartStatTentative   ParticipationStatus = "TENTATIVE"
	PartStatDelegated   ParticipationStatus = "DELEGATED"
)

// AlarmAction enumerates VALARM ACTION values (section 3.8.6.1).
type AlarmAction string

const (
	ActionAudio     AlarmAction = "AUDIO"
	ActionDisplay   AlarmAction = "DISPLAY"
	ActionEmail     AlarmAction = "EMAIL"
	ActionProcedure AlarmAction = "PROCEDURE"
)

// NormalizeEventStatus maps a wire STATUS value onto the typed enum.
// Matching is case-insensitive.  Unrecognized values map to the empty
// status, which callers treat as absent.
func NormalizeEventStatus(s string) EventStatus {
	switch EventStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusConfirmed:
		return StatusConfirmed
	case StatusTentative:
		return StatusTentative
	case StatusCancelled:
		return StatusCancelled
	}
	return ""
}

// NormalizeClassification maps a wire CLASS value onto the typed enum.
// Unrecognized values map to the empty classification (absent).
func NormalizeClassification(s string) Classification {
	switch Classification(strings.ToUpper(strings.TrimSpace(s))) {
	case ClassPublic:
		return ClassPublic
	case ClassPrivate:
		return ClassPrivate
	case ClassConfidential:
		return ClassConfidential
	}
	return ""
}

// NormalizeTransparency maps a wire TRANSP value onto the typed enum.
// Unrecognized values map to the empty transparency (absent).
func NormalizeTransparency(s string) TimeTransparency {
	switch TimeTransparency(strings.ToUpper(strings.TrimSpace(s))) {
	case TransparencyOpaque:
		return TransparencyOpaque
	case TransparencyTransparent:
		return TransparencyTransparent
	}
	return ""
}

// NormalizeRole maps a wire ROLE value onto the typed enum.  Unrecognized
// values map to REQ-PARTICIPANT, the RFC 5545 default for the parameter.
func NormalizeRole(s string) ParticipationRole {
	switch ParticipationRole(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleChair:
		return RoleChair
	case RoleReqParticipant:
		return RoleReqParticipant
	case RoleOptParticipant:
		return RoleOptParticipant
	case RoleNonParticipant:
		return RoleNonParticipant
	}
	return RoleReqParticipant
}

// NormalizeParticipationStatus maps a wire PARTSTAT value onto the typed
// enum.  Unrecognized values map to NEEDS-ACTION, the RFC 5545 default.
func NormalizeParticipationStatus(s string) ParticipationStatus {
	switch ParticipationStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case PartStatNeedsAction:
		return PartStatNeedsAction
	case PartStatAccepted:
		return PartStatAccepted
	case PartStatDeclined:
		return PartStatDeclined
	case PartStatTentative:
		return PartStatTentative
	case PartStatDelegated:
		return PartStatDelegated
	}
	return PartStatNeedsAction
}

// NormalizeAlarmAction maps a wire ACTION value onto the typed enum.
// Unrecognized values map to DISPLAY.
func NormalizeAlarmAction(s string) AlarmAction {
	switch AlarmAction(strings.ToUpper(strings.TrimSpace(s))) {
	case ActionAudio:
		return ActionAudio
	case ActionDisplay:
		return ActionDisplay
	case ActionEmail:
		return ActionEmail
	case ActionProcedure:
		return ActionProcedure
	}
	return ActionDisplay
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	`;`, `\;`,
	`,`, `\,`,
	"\n", `\n`,
	"\r", "",
)

// EscapeText escapes a string for use as an iCalendar TEXT value
// (RFC 5545 section 3.3.11): backslash, semicolon, comma and newline are
// escaped, and carriage returns are stripped.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

var textUnescaper = strings.NewReplacer(
	`\\`, `\`,
	`\;`, `;`,
	`\,`, `,`,
	`\n`, "\n",
	`\N`, "\n",
)

// UnescapeText reverses EscapeText.  UnescapeText(EscapeText(s)) == s for
// any s without carriage returns.
func UnescapeText(s string) string {
	return textUnescaper.Replace(s)
}
