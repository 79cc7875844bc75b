package gateway

import (
	"fmt"
	"io"
	"strings"
	"time"

	"calassist/internal/calendar"
	"calassist/internal/chat"
)

// WriteMessage prints one thread entry the way the line-oriented front door
// shows it. Events become indented cards, a carousel a single strip.
func WriteMessage(w io.Writer, m chat.Message, loc *time.Location) {
	prefix := "assistant>"
	switch m.Type {
	case chat.TypeUser:
		prefix = "you>"
	case chat.TypeSystem:
		prefix = "system>"
	}
	if m.Content != "" {
		fmt.Fprintf(w, "%s %s\n", prefix, m.Content)
	}
	for _, e := range m.Events {
		fmt.Fprintf(w, "  %s\n", Card(e, loc))
	}
	if c, ok := m.Custom.(calendar.Carousel); ok && len(c.Events) > 0 {
		titles := make([]string, 0, len(c.Events))
		for _, e := range c.Events {
			titles = append(titles, e.Title)
		}
		fmt.Fprintf(w, "  < %s >\n", strings.Join(titles, " | "))
	}
}

// Card is the one-line summary of an event.
func Card(e calendar.Event, loc *time.Location) string {
	parts := []string{e.Title}
	if day, ok := e.Day(loc); ok {
		parts = append(parts, calendar.FormatDate(day))
	}
	if when := e.When(); when != "" {
		parts = append(parts, when)
	}
	if e.Location != "" {
		parts = append(parts, e.Location)
	}
	if n := len(e.Attendees); n > 0 {
		parts = append(parts, fmt.Sprintf("%d attendee%s", n, plural(n)))
	}
	line := strings.Join(parts, " · ")
	switch e.EffectiveStatus() {
	case calendar.StatusTentative:
		line += " [tentative]"
	case calendar.StatusCancelled:
		line += " [cancelled]"
	}
	return line
}

// WriteGroups prints the sidebar view of the event list.
func WriteGroups(w io.Writer, g calendar.Groups, loc *time.Location) {
	section := func(title string, events []calendar.Event) {
		fmt.Fprintf(w, "%s (%d)\n", title, len(events))
		for _, e := range events {
			fmt.Fprintf(w, "  %s\n", Card(e, loc))
		}
	}
	section("Today", g.Today)
	section("Tomorrow", g.Tomorrow)
	section("Upcoming", g.Future)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
