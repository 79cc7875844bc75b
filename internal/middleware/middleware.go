package middleware

import (
	"context"
	"strings"
	"time"

	"calassist/internal/calendar"
)

// Reply is one agent message an intent wants delivered. Delay is measured
// from the previous reply of the same decision, or from dispatch for the
// first one.
type Reply struct {
	Delay   time.Duration
	Content string
	Events  []calendar.Event
	Custom  any // rendered by the front door, e.g. calendar.Carousel
}

type Decision struct {
	Match  bool   // stop the chain; this intent answers the turn
	Reason string // for logs

	Replies []Reply
	// Schedule is appended to the running event list once the replies land.
	Schedule []calendar.Event
}

type Event struct {
	UserText   string
	Normalized string // trimmed, lower-cased UserText
	Now        time.Time
	Events     []calendar.Event // read-only view of the current list
	Context    map[string]any   // per-intent switches, front door hints
}

// NewEvent builds the dispatch input for one user message.
func NewEvent(text string, now time.Time, events []calendar.Event) *Event {
	return &Event{
		UserText:   text,
		Normalized: Normalize(text),
		Now:        now,
		Events:     events,
		Context:    map[string]any{},
	}
}

func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type Intent interface {
	ID() string
	Priority() int
	OnEvent(ctx context.Context, e *Event) (Decision, error)
}

// ConditionalIntent is an optional extension that lets an intent be switched
// off per event. Skipped intents are still recorded in dispatch results.
type ConditionalIntent interface {
	ShouldLoad(ctx context.Context, e *Event) bool
}

// Enabled is the ShouldLoad helper intents share: Context[id] = false turns
// the intent off, anything else leaves it on.
func Enabled(e *Event, id string) bool {
	if e == nil || e.Context == nil {
		return true
	}
	if v, ok := e.Context[id].(bool); ok {
		return v
	}
	return true
}
