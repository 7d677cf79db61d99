// Package dates resolves raw ascent date/time strings to absolute instants.
package dates

import (
	"fmt"
	"time"
)

const dateOnlyLayout = "2006-01-02"

// Layouts carrying an explicit UTC offset. These take precedence over the
// naive layouts so a trailing offset is never misread as part of the time.
var offsetLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
}

// Layouts with a wall-clock time but no offset.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Resolved is the outcome of parsing an ascent date input.
type Resolved struct {
	// Instant is the absolute UTC instant of the ascent.
	Instant time.Time
	// DateOnly is true when the input carried no time of day. Instant is
	// then midnight UTC of that date by convention; it does not represent a
	// real time of day.
	DateOnly bool
}

// Resolve parses raw according to three rules:
//
//   - date only (YYYY-MM-DD): DateOnly=true, midnight UTC
//   - date+time with an explicit offset: the offset is used verbatim
//   - date+time with no offset: the wall-clock time is interpreted in loc,
//     which callers resolve from the mountain being ascended, not from the
//     requesting browser
//
// Unparseable input returns an error; loc is only consulted on the naive
// branch.
func Resolve(raw string, loc *time.Location) (Resolved, error) {
	if t, err := time.Parse(dateOnlyLayout, raw); err == nil {
		return Resolved{Instant: t.UTC(), DateOnly: true}, nil
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Resolved{Instant: t.UTC()}, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return Resolved{Instant: t.UTC()}, nil
		}
	}
	return Resolved{}, fmt.Errorf("invalid date format %q", raw)
}
