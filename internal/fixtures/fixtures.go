// Package fixtures holds the hardcoded events, user and canned texts the mock
// assistant answers with. Dates are relative to the supplied now.
package fixtures

import (
	"time"

	"calassist/internal/calendar"
)

const (
	DemoIntro      = "Here are examples of all the available calendar event card types:"
	CarouselIntro  = "And here's a carousel view of your upcoming events that you can easily scroll through:"
	ScheduledReply = "I've scheduled a 'Team Standup' for today at 10:00 AM. Here are the details:"
	TomorrowReply  = "Here's your meeting for tomorrow:"
	FallbackReply  = "I can help you manage your calendar. You can ask me to schedule meetings, check your availability, or manage existing events. What would you like to do?"

	WelcomeSignedIn  = "Hi there! I'm your Calendar Assistant. How can I help with your schedule today?"
	WelcomeSignedOut = "Welcome! Please sign in with your Google account to start managing your calendar."

	FailureTitle  = "Error"
	FailureNotice = "Failed to process your request. Please try again."
	Apology       = "I'm sorry, I encountered an error while processing your request. Please try again."
)

const (
	UserName    = "Test User"
	UserEmail   = "test@example.com"
	UserPicture = ""
	Token       = "mock-auth-token"
)

func day(now time.Time, offset int) string {
	return calendar.DateString(now.AddDate(0, 0, offset))
}

// StandupEvent is what "schedule"/"meeting" requests produce.
func StandupEvent(now time.Time) calendar.Event {
	return calendar.Event{
		Title:     "Team Standup",
		Date:      day(now, 0),
		StartTime: "10:00",
		EndTime:   "10:30",
		Location:  "Google Meet",
		Attendees: []string{"john@example.com", "sarah@example.com"},
	}
}

// ProductReviewEvent is what "tomorrow" requests produce.
func ProductReviewEvent(now time.Time) calendar.Event {
	return calendar.Event{
		Title:     "Product Review",
		Date:      day(now, 1),
		StartTime: "14:00",
		EndTime:   "15:00",
		Location:  "Conference Room A",
		Attendees: []string{"product@example.com", "design@example.com"},
	}
}

// DemoEvents covers every card variant: timed, all-day, multi-attendee,
// tentative and cancelled, in that order.
func DemoEvents(now time.Time) []calendar.Event {
	return []calendar.Event{
		{
			Title:     "Regular Meeting",
			Date:      day(now, 0),
			StartTime: "10:00",
			EndTime:   "10:30",
			Location:  "Google Meet",
			Attendees: []string{"john@example.com", "sarah@example.com"},
		},
		{
			Title:       "All-day Event",
			Date:        day(now, 1),
			IsAllDay:    true,
			Location:    "Conference Center",
			Description: "Company-wide training day",
		},
		{
			Title:       "Multi-attendee Meeting",
			Date:        day(now, 7),
			StartTime:   "13:00",
			EndTime:     "14:00",
			Location:    "Conference Room B",
			Attendees:   []string{"team@example.com", "client@example.com", "sales@example.com", "design@example.com"},
			Description: "Quarterly business review with all stakeholders",
		},
		{
			Title:       "Tentative Event",
			Date:        day(now, 0),
			StartTime:   "15:00",
			EndTime:     "16:00",
			Status:      calendar.StatusTentative,
			Description: "Pending confirmation from attendees",
		},
		{
			Title:       "Cancelled Meeting",
			Date:        day(now, 1),
			StartTime:   "09:00",
			EndTime:     "10:00",
			Status:      calendar.StatusCancelled,
			Description: "This meeting was cancelled",
		},
	}
}

// SeedEvents is the calendar a freshly signed-in session starts with.
func SeedEvents(now time.Time) []calendar.Event {
	return []calendar.Event{
		StandupEvent(now),
		ProductReviewEvent(now),
		{
			Title:     "Quarterly Planning",
			Date:      day(now, 7),
			StartTime: "09:00",
			EndTime:   "12:00",
			Location:  "Main Office",
			Attendees: []string{"team@example.com"},
		},
	}
}
