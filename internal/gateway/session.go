package gateway

import (
	"context"
	"errors"
	"slices"
	"time"

	"calassist/internal/auth"
	"calassist/internal/calendar"
	"calassist/internal/chat"
	"calassist/internal/clock"
	"calassist/internal/event_bus"
	"calassist/internal/fixtures"
)

var ErrNotAuthenticated = errors.New("sign in to start managing your calendar")

// Session is what a front door drives: one thread, one event list and one
// auth state.
type Session struct {
	auth  *auth.Store
	chat  *chat.Service
	bus   *event_bus.EventBus
	clock clock.Clock
}

// Init loads the persisted auth state and resets the thread to the matching
// welcome. A signed-in session starts with the seed events.
func (s *Session) Init(ctx context.Context) auth.State {
	state := s.auth.Init()
	s.resetFor(ctx, state, nil)
	return state
}

// Login signs in and starts a new signed-in thread with the seed events.
func (s *Session) Login(ctx context.Context) (auth.State, error) {
	state, err := s.auth.Login(ctx)
	if err != nil {
		return state, err
	}
	s.resetFor(ctx, state, nil)
	return state, nil
}

// Logout signs out. The thread goes back to the signed-out welcome; the
// event list is kept.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.auth.Logout(ctx); err != nil {
		return err
	}
	s.resetFor(ctx, s.auth.State(), s.chat.Events())
	return nil
}

// SendMessage runs one turn. Turns are not cancelled by ctx: once accepted a
// message always gets its reply, even if the session signs out meanwhile.
func (s *Session) SendMessage(ctx context.Context, text string) (chat.Turn, error) {
	if !s.Authenticated() {
		return chat.Turn{}, ErrNotAuthenticated
	}
	return s.chat.Send(context.WithoutCancel(ctx), text)
}

// Clear starts the thread over with the welcome message, keeping the events.
func (s *Session) Clear(ctx context.Context) {
	s.chat.Reset(ctx, s.chat.Welcome(s.Authenticated()), s.chat.Events())
}

func (s *Session) Messages() []chat.Message { return s.chat.Messages() }
func (s *Session) Events() []calendar.Event { return s.chat.Events() }
func (s *Session) Processing() bool         { return s.chat.Processing() }

// Loading reports an in-flight login or logout.
func (s *Session) Loading() bool { return s.auth.Loading() }

func (s *Session) AuthState() auth.State { return s.auth.State() }
func (s *Session) Authenticated() bool   { return s.auth.State().IsAuthenticated }
func (s *Session) User() *auth.User      { return s.auth.State().User }

func (s *Session) Bus() *event_bus.EventBus { return s.bus }
func (s *Session) Now() time.Time           { return s.clock.Now() }

// Groups buckets the event list into today, tomorrow and later.
func (s *Session) Groups() calendar.Groups {
	return calendar.Group(s.Events(), s.clock.Now())
}

// OnDate lists the events on the given day, as the sidebar's date picker does.
func (s *Session) OnDate(day time.Time) []calendar.Event {
	return calendar.OnDate(s.Events(), day)
}

// Close ends the session. Turns already in flight still land.
func (s *Session) Close() {
	s.auth.Close()
}

func (s *Session) resetFor(ctx context.Context, state auth.State, keep []calendar.Event) {
	events := slices.Clone(keep)
	if state.IsAuthenticated {
		events = fixtures.SeedEvents(s.clock.Now())
	}
	s.chat.Reset(ctx, s.chat.Welcome(state.IsAuthenticated), events)
	s.bus.Emit(context.WithoutCancel(ctx), event_bus.AuthChanged, state)
}
