package calendar

import (
	"bytes"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		date string
		want Bucket
	}{
		{"today", "2026-10-19", BucketToday},
		{"tomorrow", "2026-10-20", BucketTomorrow},
		{"next week", "2026-10-26", BucketFuture},
		{"yesterday", "2026-10-18", BucketFuture},
		{"last year same day", "2025-10-19", BucketFuture},
		{"no date", "", BucketNone},
		{"garbage date", "someday", BucketFuture},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(Event{Title: "x", Date: tt.date}, now)
			if got != tt.want {
				t.Fatalf("Classify(%q) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

func TestClassify_UsesCalendarDaysAcrossMonthEnd(t *testing.T) {
	lateNight := time.Date(2026, 10, 31, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, BucketToday, Classify(Event{Title: "x", Date: "2026-10-31"}, lateNight))
	assert.Equal(t, BucketTomorrow, Classify(Event{Title: "x", Date: "2026-11-01"}, lateNight))
}

func TestGroup(t *testing.T) {
	events := []Event{
		{Title: "a", Date: "2026-10-19"},
		{Title: "b", Date: "2026-10-20"},
		{Title: "undated"},
		{Title: "c", Date: "2026-12-01"},
		{Title: "d", Date: "2026-10-19"},
	}
	g := Group(events, now)

	want := Groups{
		Today:    []Event{events[0], events[4]},
		Tomorrow: []Event{events[1]},
		Future:   []Event{events[3]},
	}
	if diff := cmp.Diff(want, g); diff != "" {
		t.Errorf("Group() mismatch (-want +got):\n%s", diff)
	}

	assert.Len(t, Filter(events, BucketToday, now), 2)
	assert.Empty(t, Filter(events, BucketNone, now))
}

func TestOnDate(t *testing.T) {
	events := []Event{
		{Title: "a", Date: "2026-10-19"},
		{Title: "b", Date: "2026-10-20"},
		{Title: "c"},
	}
	got := OnDate(events, now)
	if diff := cmp.Diff([]Event{events[0]}, got); diff != "" {
		t.Errorf("OnDate() mismatch (-want +got):\n%s", diff)
	}
}

func TestEffectiveStatus(t *testing.T) {
	assert.Equal(t, StatusConfirmed, Event{}.EffectiveStatus())
	assert.Equal(t, StatusTentative, Event{Status: StatusTentative}.EffectiveStatus())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		wantErr error
	}{
		{"minimal", Event{Title: "Standup"}, nil},
		{"full", Event{
			Title: "Standup", Date: "2026-10-19", StartTime: "10:00", EndTime: "2026-10-19T10:30:00Z",
			Attendees: []string{"john@example.com"}, Status: StatusTentative,
		}, nil},
		{"all day ignores times", Event{Title: "Offsite", IsAllDay: true, StartTime: "whenever"}, nil},
		{"missing title", Event{Title: "  "}, ErrMissingTitle},
		{"bad date", Event{Title: "x", Date: "19/10/2026"}, ErrInvalidDate},
		{"bad time", Event{Title: "x", StartTime: "10am"}, ErrInvalidTime},
		{"bad status", Event{Title: "x", Status: "maybe"}, ErrInvalidStatus},
		{"bad attendee", Event{Title: "x", Attendees: []string{"not an email"}}, ErrInvalidAttendee},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "2:30 PM", FormatTime("14:30"))
	assert.Equal(t, "10:00 AM", FormatTime("10:00"))
	assert.Equal(t, "nonsense", FormatTime("nonsense"))
	assert.Equal(t, "10:00 AM - 10:30 AM", FormatTimeRange("10:00", "10:30"))
	assert.Equal(t, "Monday, October 19, 2026", FormatDate(now))
}

func TestWhen(t *testing.T) {
	assert.Equal(t, "All day", Event{IsAllDay: true, StartTime: "10:00"}.When())
	assert.Equal(t, "1:00 PM - 2:00 PM", Event{StartTime: "13:00", EndTime: "14:00"}.When())
	assert.Equal(t, "9:00 AM", Event{StartTime: "09:00"}.When())
	assert.Equal(t, "", Event{}.When())
}

func TestWriteICS(t *testing.T) {
	events := []Event{
		{
			Title: "Team Standup", Date: "2026-10-19", StartTime: "10:00", EndTime: "10:30",
			Location: "Google Meet", Attendees: []string{"john@example.com", "sarah@example.com"},
		},
		{Title: "All-day Event", Date: "2026-10-20", IsAllDay: true},
		{Title: "Cancelled Meeting", Date: "2026-10-20", StartTime: "09:00", EndTime: "10:00", Status: StatusCancelled},
		{Title: "Undated"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, events, time.UTC, now))

	cal, err := ical.NewDecoder(&buf).Decode()
	require.NoError(t, err)

	got := cal.Events()
	require.Len(t, got, 3, "undated events are skipped")

	var titles, statuses []string
	for _, ev := range got {
		title, err := ev.Props.Text(ical.PropSummary)
		require.NoError(t, err)
		titles = append(titles, title)
		status, err := ev.Props.Text(ical.PropStatus)
		require.NoError(t, err)
		statuses = append(statuses, status)
	}
	assert.Equal(t, []string{"Team Standup", "All-day Event", "Cancelled Meeting"}, titles)
	assert.Equal(t, []string{"CONFIRMED", "CONFIRMED", "CANCELLED"}, statuses)

	start, err := got[0].DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC), start)
	assert.Len(t, got[0].Props[ical.PropAttendee], 2)
}

func TestWriteICS_InvalidTime(t *testing.T) {
	var buf bytes.Buffer
	err := WriteICS(&buf, []Event{{Title: "x", Date: "2026-10-19", StartTime: "soon"}}, time.UTC, now)
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestWriteICS_NothingToExport(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteICS(&buf, nil, time.UTC, now), ErrNothingToExport)
	assert.ErrorIs(t, WriteICS(&buf, []Event{{Title: "Undated"}}, time.UTC, now), ErrNothingToExport)
	assert.Zero(t, buf.Len())
}
