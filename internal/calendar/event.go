package calendar

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusTentative Status = "tentative"
	StatusCancelled Status = "cancelled"
)

var (
	ErrMissingTitle    = errors.New("event title is required")
	ErrInvalidDate     = errors.New("event date must be YYYY-MM-DD")
	ErrInvalidTime     = errors.New("event time must be HH:MM or RFC3339")
	ErrInvalidStatus   = errors.New("event status must be confirmed, tentative or cancelled")
	ErrInvalidAttendee = errors.New("event attendee must be an email address")
)

// Event is one mocked calendar entry. Only Title is required; StartTime and
// EndTime carry no meaning when IsAllDay is set.
type Event struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Date        string   `json:"date,omitempty"`
	StartTime   string   `json:"startTime,omitempty"`
	EndTime     string   `json:"endTime,omitempty"`
	Location    string   `json:"location,omitempty"`
	Description string   `json:"description,omitempty"`
	Attendees   []string `json:"attendees,omitempty"`
	IsAllDay    bool     `json:"isAllDay,omitempty"`
	Status      Status   `json:"status,omitempty"`
}

// EffectiveStatus treats a missing status as confirmed.
func (e Event) EffectiveStatus() Status {
	if e.Status == "" {
		return StatusConfirmed
	}
	return e.Status
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrMissingTitle
	}
	if e.Date != "" {
		if _, err := time.Parse(DateLayout, e.Date); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDate, e.Date)
		}
	}
	if !e.IsAllDay {
		for _, t := range []string{e.StartTime, e.EndTime} {
			if t == "" {
				continue
			}
			if _, _, err := parseClock(t, time.Local); err != nil {
				return fmt.Errorf("%w: %q", ErrInvalidTime, t)
			}
		}
	}
	switch e.Status {
	case "", StatusConfirmed, StatusTentative, StatusCancelled:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, e.Status)
	}
	for _, a := range e.Attendees {
		if _, err := mail.ParseAddress(a); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidAttendee, a)
		}
	}
	return nil
}

// Day returns the event's calendar date at midnight in loc.
func (e Event) Day(loc *time.Location) (time.Time, bool) {
	if e.Date == "" {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(DateLayout, e.Date, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// DateString renders t as the YYYY-MM-DD form used by Event.Date.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// parseClock accepts "HH:MM" or a full RFC3339 datetime. For the short form
// the returned time only carries hour and minute.
func parseClock(s string, loc *time.Location) (time.Time, bool, error) {
	if strings.Contains(s, "T") {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, false, err
		}
		return t.In(loc), true, nil
	}
	t, err := time.ParseInLocation(TimeLayout, s, loc)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, false, nil
}

// Carousel is a scrollable strip of event cards attached to a chat message.
type Carousel struct {
	Events []Event `json:"events"`
}
