package greeting

import (
	"context"
	"time"

	"calassist/internal/calendar"
	"calassist/internal/fixtures"
	mw "calassist/internal/middleware"
)

func init() {
	mw.Register(Demo{})
}

const (
	IntroDelay    = 800 * time.Millisecond
	CarouselDelay = 500 * time.Millisecond
)

// Demo answers a bare "hi" with every event card variant, first as a list
// and then as a carousel.
type Demo struct{}

func (Demo) ID() string    { return "demo" }
func (Demo) Priority() int { return 130 }

func (d Demo) ShouldLoad(_ context.Context, e *mw.Event) bool {
	return mw.Enabled(e, d.ID())
}

func (Demo) OnEvent(_ context.Context, e *mw.Event) (mw.Decision, error) {
	if e == nil || e.Normalized != "hi" {
		return mw.Decision{}, nil
	}

	events := fixtures.DemoEvents(e.Now)
	return mw.Decision{
		Match:  true,
		Reason: "demo: greeting shows every card variant",
		Replies: []mw.Reply{
			{
				Delay:   IntroDelay,
				Content: fixtures.DemoIntro,
				Events:  events,
			},
			{
				Delay:   CarouselDelay,
				Content: fixtures.CarouselIntro,
				Custom:  calendar.Carousel{Events: events},
			},
		},
		Schedule: events,
	}, nil
}
