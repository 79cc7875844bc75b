package calendar

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// FormatDate renders a day the way the sidebar header does,
// e.g. "Monday, January 2, 2006".
func FormatDate(t time.Time) string {
	return t.Format("Monday, January 2, 2006")
}

// FormatTime turns "14:30" or an RFC3339 datetime into "2:30 PM" in the local
// zone. Values that parse as neither are returned unchanged.
func FormatTime(s string) string {
	t, _, err := parseClock(s, time.Local)
	if err != nil {
		log.Debugf("calendar: cannot format time %q: %v", s, err)
		return s
	}
	return t.Format("3:04 PM")
}

func FormatTimeRange(start, end string) string {
	return FormatTime(start) + " - " + FormatTime(end)
}

// When is the short schedule line shown on an event card.
func (e Event) When() string {
	switch {
	case e.IsAllDay:
		return "All day"
	case e.StartTime != "" && e.EndTime != "":
		return FormatTimeRange(e.StartTime, e.EndTime)
	case e.StartTime != "":
		return FormatTime(e.StartTime)
	default:
		return ""
	}
}
