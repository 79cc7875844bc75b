package fallback

import (
	"context"
	"time"

	"calassist/internal/fixtures"
	mw "calassist/internal/middleware"
)

func init() {
	mw.Register(Help{})
}

const ReplyDelay = 1500 * time.Millisecond

// Help is the catch-all: it always matches and explains what the assistant
// can do. It sits at the bottom of the chain.
type Help struct{}

func (Help) ID() string    { return "fallback" }
func (Help) Priority() int { return 0 }

func (Help) OnEvent(_ context.Context, _ *mw.Event) (mw.Decision, error) {
	return mw.Decision{
		Match:   true,
		Reason:  "fallback: help text",
		Replies: []mw.Reply{{Delay: ReplyDelay, Content: fixtures.FallbackReply}},
	}, nil
}
