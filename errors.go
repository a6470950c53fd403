package ics

import (
	"errors"
)

var (
	// ErrMissingStartDate rejects a VEVENT without a usable DTSTART.
	ErrMissingStartDate = errors.New("no usable DTSTART")
	// ErrMissingEndDate rejects a VEVENT with neither a usable DTEND nor
	// a DURATION to derive an end from.
	ErrMissingEndDate = errors.New("no usable DTEND or DURATION")
)
