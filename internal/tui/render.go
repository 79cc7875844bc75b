package tui

import (
	"fmt"
	"strings"
	"time"

	"calassist/internal/calendar"
	"calassist/internal/chat"

	"github.com/charmbracelet/lipgloss"
)

func renderThread(msgs []chat.Message, width int, loc *time.Location) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderMessage(m, width, loc))
		b.WriteString("\n")
	}
	return b.String()
}

func renderMessage(m chat.Message, width int, loc *time.Location) string {
	var label string
	switch m.Type {
	case chat.TypeUser:
		label = userLabel.Render("You")
	case chat.TypeSystem:
		label = systemLabel.Render("System")
	default:
		label = agentLabel.Render("Assistant")
	}
	stamp := helpStyle.Render(m.Timestamp.In(loc).Format("3:04 PM"))

	parts := []string{label + " " + stamp}
	if m.IsLoading {
		parts = append(parts, helpStyle.Render("thinking..."))
	}
	if m.Content != "" {
		parts = append(parts, lipgloss.NewStyle().Width(max(width, 10)).Render(m.Content))
	}
	for _, e := range m.Events {
		parts = append(parts, renderCard(e, width, loc))
	}
	if c, ok := m.Custom.(calendar.Carousel); ok {
		parts = append(parts, renderCarousel(c, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderCard(e calendar.Event, width int, loc *time.Location) string {
	style := cardStyle
	switch e.EffectiveStatus() {
	case calendar.StatusTentative:
		style = tentativeCard
	case calendar.StatusCancelled:
		style = cancelledCard
	}

	lines := []string{lipgloss.NewStyle().Bold(true).Render(e.Title)}
	var when []string
	if day, ok := e.Day(loc); ok {
		when = append(when, calendar.FormatDate(day))
	}
	if w := e.When(); w != "" {
		when = append(when, w)
	}
	if len(when) > 0 {
		lines = append(lines, strings.Join(when, " · "))
	}
	if e.Location != "" {
		lines = append(lines, e.Location)
	}
	if n := len(e.Attendees); n > 0 {
		lines = append(lines, fmt.Sprintf("%d attendee(s): %s", n, strings.Join(e.Attendees, ", ")))
	}
	if e.Description != "" {
		lines = append(lines, helpStyle.Render(e.Description))
	}
	if s := e.EffectiveStatus(); s != calendar.StatusConfirmed {
		lines = append(lines, string(s))
	}
	return style.Width(max(width-2, 10)).Render(strings.Join(lines, "\n"))
}

// renderCarousel lays cards side by side and cuts the strip at width.
func renderCarousel(c calendar.Carousel, width int) string {
	var cards []string
	used := 0
	for i, e := range c.Events {
		card := carouselCard.Render(e.Title + "\n" + helpStyle.Render(e.When()))
		w := lipgloss.Width(card)
		if used+w > width && len(cards) > 0 {
			cards = append(cards, helpStyle.Render(fmt.Sprintf("+%d", len(c.Events)-i)))
			break
		}
		cards = append(cards, card)
		used += w
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, cards...)
}

func renderSidebar(g calendar.Groups, width int, loc *time.Location) string {
	section := func(title string, events []calendar.Event) string {
		out := []string{sectionStyle.Render(fmt.Sprintf("%s (%d)", title, len(events)))}
		if len(events) == 0 {
			out = append(out, helpStyle.Render("No events"))
		}
		for _, e := range events {
			out = append(out, renderCard(e, width, loc))
		}
		return strings.Join(out, "\n")
	}
	return strings.Join([]string{
		section("Today", g.Today),
		section("Tomorrow", g.Tomorrow),
		section("Upcoming", g.Future),
	}, "\n\n")
}
