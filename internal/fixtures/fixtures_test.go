package fixtures

import (
	"testing"
	"time"

	"calassist/internal/calendar"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func TestFixturesAreValid(t *testing.T) {
	all := append(DemoEvents(now), SeedEvents(now)...)
	all = append(all, StandupEvent(now), ProductReviewEvent(now))
	for _, e := range all {
		assert.NoError(t, e.Validate(), e.Title)
		assert.Empty(t, e.ID, "mock events never carry an id")
	}
}

func TestDemoEventsCoverEveryVariant(t *testing.T) {
	events := DemoEvents(now)
	if len(events) != 5 {
		t.Fatalf("expected 5 demo events, got %d", len(events))
	}

	var timed, allDay, fourAttendees, tentative, cancelled int
	for _, e := range events {
		if e.IsAllDay {
			allDay++
		}
		if len(e.Attendees) == 4 {
			fourAttendees++
		}
		switch e.Status {
		case calendar.StatusTentative:
			tentative++
		case calendar.StatusCancelled:
			cancelled++
		}
		if !e.IsAllDay && e.Status == "" && len(e.Attendees) == 2 {
			timed++
		}
	}
	assert.Equal(t, 1, timed)
	assert.Equal(t, 1, allDay)
	assert.Equal(t, 1, fourAttendees)
	assert.Equal(t, 1, tentative)
	assert.Equal(t, 1, cancelled)
}

func TestRelativeDates(t *testing.T) {
	assert.Equal(t, "2026-10-19", StandupEvent(now).Date)
	assert.Equal(t, "2026-10-20", ProductReviewEvent(now).Date)
	assert.Equal(t, "2026-10-26", SeedEvents(now)[2].Date)
}
