package calendar

import (
	"context"
	"strings"
	"time"

	"calassist/internal/calendar"
	"calassist/internal/fixtures"
	mw "calassist/internal/middleware"
)

func init() {
	mw.Register(Schedule{})
	mw.Register(Tomorrow{})
}

const ReplyDelay = 1500 * time.Millisecond

// Schedule pretends to book a standup whenever the message talks about
// scheduling or meetings.
type Schedule struct{}

func (Schedule) ID() string    { return "schedule" }
func (Schedule) Priority() int { return 120 }

func (s Schedule) ShouldLoad(_ context.Context, e *mw.Event) bool {
	return mw.Enabled(e, s.ID())
}

func (Schedule) OnEvent(_ context.Context, e *mw.Event) (mw.Decision, error) {
	if e == nil {
		return mw.Decision{}, nil
	}
	if !strings.Contains(e.Normalized, "schedule") && !strings.Contains(e.Normalized, "meeting") {
		return mw.Decision{}, nil
	}
	return single("schedule: booked standup", fixtures.ScheduledReply, fixtures.StandupEvent(e.Now)), nil
}

// Tomorrow shows the meeting planned for the next day.
type Tomorrow struct{}

func (Tomorrow) ID() string    { return "tomorrow" }
func (Tomorrow) Priority() int { return 110 }

func (t Tomorrow) ShouldLoad(_ context.Context, e *mw.Event) bool {
	return mw.Enabled(e, t.ID())
}

func (Tomorrow) OnEvent(_ context.Context, e *mw.Event) (mw.Decision, error) {
	if e == nil || !strings.Contains(e.Normalized, "tomorrow") {
		return mw.Decision{}, nil
	}
	return single("tomorrow: product review", fixtures.TomorrowReply, fixtures.ProductReviewEvent(e.Now)), nil
}

func single(reason, content string, ev calendar.Event) mw.Decision {
	return mw.Decision{
		Match:  true,
		Reason: reason,
		Replies: []mw.Reply{{
			Delay:   ReplyDelay,
			Content: content,
			Events:  []calendar.Event{ev},
		}},
		Schedule: []calendar.Event{ev},
	}
}
