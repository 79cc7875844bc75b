package calendar

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

const prodID = "-//calassist//Calendar Assistant//EN"

// ErrNothingToExport is returned when no event has a date. iCalendar has no
// empty VCALENDAR.
var ErrNothingToExport = errors.New("no dated events to export")

// WriteICS encodes events as an iCalendar stream. Times are interpreted in
// loc. Events without a date cannot be placed and are skipped.
func WriteICS(w io.Writer, events []Event, loc *time.Location, now time.Time) error {
	if loc == nil {
		loc = time.Local
	}
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)

	for _, e := range events {
		comp, ok, err := toICal(e, loc, now)
		if err != nil {
			return fmt.Errorf("export %q: %w", e.Title, err)
		}
		if !ok {
			continue
		}
		cal.Children = append(cal.Children, comp.Component)
	}
	if len(cal.Children) == 0 {
		return ErrNothingToExport
	}
	return ical.NewEncoder(w).Encode(cal)
}

func toICal(e Event, loc *time.Location, now time.Time) (*ical.Event, bool, error) {
	day, ok := e.Day(loc)
	if !ok {
		return nil, false, nil
	}

	ev := ical.NewEvent()
	uid := e.ID
	if uid == "" {
		uid = uuid.NewString()
	}
	ev.Props.SetText(ical.PropUID, uid)
	ev.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	ev.Props.SetText(ical.PropSummary, e.Title)

	if e.IsAllDay || e.StartTime == "" {
		ev.Props.SetDate(ical.PropDateTimeStart, day)
		ev.Props.SetDate(ical.PropDateTimeEnd, day.AddDate(0, 0, 1))
	} else {
		start, err := at(day, e.StartTime, loc)
		if err != nil {
			return nil, false, err
		}
		ev.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
		if e.EndTime != "" {
			end, err := at(day, e.EndTime, loc)
			if err != nil {
				return nil, false, err
			}
			ev.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())
		}
	}

	if e.Location != "" {
		ev.Props.SetText(ical.PropLocation, e.Location)
	}
	if e.Description != "" {
		ev.Props.SetText(ical.PropDescription, e.Description)
	}
	ev.Props.SetText(ical.PropStatus, strings.ToUpper(string(e.EffectiveStatus())))
	for _, a := range e.Attendees {
		prop := ical.NewProp(ical.PropAttendee)
		prop.Value = "mailto:" + a
		ev.Props.Add(prop)
	}
	return ev, true, nil
}

// at places a "HH:MM" or RFC3339 value on day.
func at(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, full, err := parseClock(clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, clock)
	}
	if full {
		return t, nil
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
