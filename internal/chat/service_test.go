package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"calassist/internal/calendar"
	"calassist/internal/clock"
	"calassist/internal/event_bus"
	"calassist/internal/fixtures"
	"calassist/internal/middleware"
	_ "calassist/middlewares/autoload"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

type recordingSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
	// failAt makes the n-th wait (1-based) fail with context.Canceled.
	failAt int
	during func()
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.waits = append(r.waits, d)
	n := len(r.waits)
	r.mu.Unlock()
	if r.during != nil {
		r.during()
	}
	if r.failAt == n {
		return context.Canceled
	}
	return ctx.Err()
}

type panicIntent struct{}

func (panicIntent) ID() string    { return "panic" }
func (panicIntent) Priority() int { return 1000 }
func (panicIntent) OnEvent(context.Context, *middleware.Event) (middleware.Decision, error) {
	panic("intent blew up")
}

type errIntent struct{}

func (errIntent) ID() string    { return "err" }
func (errIntent) Priority() int { return 1000 }
func (errIntent) OnEvent(context.Context, *middleware.Event) (middleware.Decision, error) {
	return middleware.Decision{}, errors.New("backend down")
}

func newTestService(t *testing.T, opts ...ServiceOption) (*Service, *recordingSleeper) {
	t.Helper()
	chain := middleware.NewChainFromRegistry(nil, nil)
	require.NotNil(t, chain)
	rec := &recordingSleeper{}
	base := []ServiceOption{
		WithChain(chain),
		WithClock(&clock.FixedClock{FixedNow: now}),
		WithSleeper(rec.sleep),
	}
	return NewService(append(base, opts...)...), rec
}

func types(msgs []Message) []MessageType {
	out := make([]MessageType, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Type)
	}
	return out
}

func TestSend_Hi(t *testing.T) {
	s, rec := newTestService(t)

	turn, err := s.Send(context.Background(), "  Hi ")
	require.NoError(t, err)
	require.False(t, turn.Failed())
	assert.Equal(t, "demo", turn.IntentID)

	msgs := s.Messages()
	assert.Equal(t, []MessageType{TypeUser, TypeAgent, TypeAgent}, types(msgs))
	assert.Equal(t, "  Hi ", msgs[0].Content, "user echo is verbatim")

	assert.Len(t, msgs[1].Events, 5)
	assert.Nil(t, msgs[1].Custom)
	carousel, ok := msgs[2].Custom.(calendar.Carousel)
	require.True(t, ok)
	assert.Empty(t, msgs[2].Events)
	if diff := cmp.Diff(msgs[1].Events, carousel.Events); diff != "" {
		t.Errorf("carousel differs from card list (-cards +carousel):\n%s", diff)
	}

	if diff := cmp.Diff(fixtures.DemoEvents(now), s.Events()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []time.Duration{800 * time.Millisecond, 500 * time.Millisecond}, rec.waits)
	assert.False(t, s.Processing())
}

func TestSend_ScheduleAndMeeting(t *testing.T) {
	for _, text := range []string{"schedule a call", "book a MEETING", "schedule something tomorrow"} {
		t.Run(text, func(t *testing.T) {
			s, rec := newTestService(t)
			turn, err := s.Send(context.Background(), text)
			require.NoError(t, err)
			assert.Equal(t, "schedule", turn.IntentID)

			msgs := s.Messages()
			require.Equal(t, []MessageType{TypeUser, TypeAgent}, types(msgs))
			require.Len(t, msgs[1].Events, 1)
			ev := msgs[1].Events[0]
			assert.Equal(t, "Team Standup", ev.Title)
			assert.Equal(t, "2026-10-19", ev.Date)
			assert.Equal(t, "10:00", ev.StartTime)
			assert.Equal(t, "10:30", ev.EndTime)
			assert.Equal(t, fixtures.ScheduledReply, msgs[1].Content)

			assert.Equal(t, []calendar.Event{ev}, s.Events())
			assert.Equal(t, []time.Duration{1500 * time.Millisecond}, rec.waits)
		})
	}
}

func TestSend_Tomorrow(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.Send(context.Background(), "what's on tomorrow?")
	require.NoError(t, err)

	msgs := s.Messages()
	require.Equal(t, []MessageType{TypeUser, TypeAgent}, types(msgs))
	require.Len(t, msgs[1].Events, 1)
	ev := msgs[1].Events[0]
	assert.Equal(t, "Product Review", ev.Title)
	assert.Equal(t, "2026-10-20", ev.Date)
	assert.Equal(t, "14:00", ev.StartTime)
	assert.Equal(t, "15:00", ev.EndTime)
	assert.Len(t, s.Events(), 1)
}

func TestSend_Fallback(t *testing.T) {
	s, rec := newTestService(t)
	s.Reset(context.Background(), s.Welcome(true), fixtures.SeedEvents(now))
	before := s.Events()

	turn, err := s.Send(context.Background(), "what's up")
	require.NoError(t, err)
	assert.Equal(t, "fallback", turn.IntentID)

	msgs := s.Messages()
	require.Equal(t, []MessageType{TypeAgent, TypeUser, TypeAgent}, types(msgs))
	assert.Equal(t, fixtures.FallbackReply, msgs[2].Content)
	assert.Empty(t, msgs[2].Events)
	assert.Equal(t, before, s.Events())
	assert.Empty(t, turn.Events)
	assert.Equal(t, []time.Duration{1500 * time.Millisecond}, rec.waits)
}

func TestSend_RepeatedScheduleDuplicates(t *testing.T) {
	s, _ := newTestService(t)
	for i := 0; i < 2; i++ {
		_, err := s.Send(context.Background(), "schedule a meeting")
		require.NoError(t, err)
	}
	evs := s.Events()
	require.Len(t, evs, 2)
	assert.Equal(t, evs[0], evs[1])
}

func TestSend_EmptyMessage(t *testing.T) {
	s, rec := newTestService(t)
	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := s.Send(context.Background(), text)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}
	assert.Empty(t, s.Messages())
	assert.Empty(t, rec.waits)
}

func TestHandle_DoesNotTouchState(t *testing.T) {
	s, _ := newTestService(t)
	current := fixtures.SeedEvents(now)

	turn, err := s.Handle(context.Background(), "hi", current)
	require.NoError(t, err)
	assert.Equal(t, []MessageType{TypeUser, TypeAgent, TypeAgent}, types(turn.Messages))
	assert.Len(t, turn.Events, 5)
	assert.Len(t, current, 3)

	assert.Empty(t, s.Messages())
	assert.Empty(t, s.Events())
	assert.False(t, s.Processing())

	_, err = s.Handle(context.Background(), " ", nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestSend_IntentFailures(t *testing.T) {
	tests := map[string]middleware.Intent{
		"panic": panicIntent{},
		"error": errIntent{},
	}
	for name, bad := range tests {
		t.Run(name, func(t *testing.T) {
			chain := middleware.NewChainFromRegistry(nil, nil)
			chain.Use(bad)

			var notes []Notification
			bus := event_bus.NewEventBus()
			var flags []bool
			event_bus.SubscribeTyped(bus, event_bus.ProcessingChanged, func(e event_bus.EventT[bool]) error {
				flags = append(flags, e.Data)
				return nil
			})

			s, _ := newTestService(t,
				WithChain(chain),
				WithBus(bus),
				WithNotifier(func(n Notification) { notes = append(notes, n) }),
			)

			turn, err := s.Send(context.Background(), "schedule a meeting")
			require.NoError(t, err)
			require.Error(t, turn.Err)
			assert.Empty(t, turn.IntentID)

			msgs := s.Messages()
			require.Equal(t, []MessageType{TypeUser, TypeSystem}, types(msgs))
			assert.Equal(t, fixtures.Apology, msgs[1].Content)
			assert.Empty(t, s.Events())

			require.Len(t, notes, 1)
			assert.Equal(t, fixtures.FailureNotice, notes[0].Description)
			assert.Equal(t, VariantDestructive, notes[0].Variant)

			assert.False(t, s.Processing())
			assert.Equal(t, []bool{true, false}, flags)
		})
	}
}

func TestSend_CancelledMidTurnKeepsEarlierReplies(t *testing.T) {
	s, rec := newTestService(t)
	rec.failAt = 2

	turn, err := s.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.ErrorIs(t, turn.Err, context.Canceled)

	msgs := s.Messages()
	assert.Equal(t, []MessageType{TypeUser, TypeAgent, TypeSystem}, types(msgs))
	assert.Len(t, msgs[1].Events, 5)
	assert.Empty(t, s.Events(), "events are appended only once every reply landed")
	assert.False(t, s.Processing())
}

func TestSend_NoChain(t *testing.T) {
	s := NewService(WithSleeper(clock.NoSleep))
	turn, err := s.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.ErrorIs(t, turn.Err, ErrNoReply)
	assert.Equal(t, []MessageType{TypeUser, TypeSystem}, types(s.Messages()))
}

func TestSend_FallbackDisabledFails(t *testing.T) {
	chain := middleware.NewChainFromRegistry([]string{"fallback"}, nil)
	s, _ := newTestService(t, WithChain(chain))
	turn, err := s.Send(context.Background(), "what's up")
	require.NoError(t, err)
	assert.ErrorIs(t, turn.Err, ErrNoReply)
}

func TestSend_IntentSwitches(t *testing.T) {
	s, _ := newTestService(t, WithIntentSwitches(map[string]any{"demo": false}))
	turn, err := s.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "fallback", turn.IntentID)
}

func TestDelayScale(t *testing.T) {
	s, rec := newTestService(t, WithDelayScale(0.5))
	_, err := s.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{400 * time.Millisecond, 250 * time.Millisecond}, rec.waits)

	s, rec = newTestService(t, WithDelayScale(0))
	_, err = s.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{0, 0}, rec.waits)
}

func TestProcessingDuringTurn(t *testing.T) {
	s, rec := newTestService(t)
	var seen []bool
	var threadLen []int
	rec.during = func() {
		seen = append(seen, s.Processing())
		threadLen = append(threadLen, len(s.Messages()))
	}

	_, err := s.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, seen)
	assert.Equal(t, []int{1, 2}, threadLen, "user echo lands before the first delay")
	assert.False(t, s.Processing())
}

func TestBusSeesMessagesInOrder(t *testing.T) {
	bus := event_bus.NewEventBus()
	var got []MessageType
	var scheduled int
	event_bus.SubscribeTyped(bus, event_bus.MessageAppended, func(e event_bus.EventT[Message]) error {
		got = append(got, e.Data.Type)
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.EventsScheduled, func(e event_bus.EventT[[]calendar.Event]) error {
		scheduled += len(e.Data)
		return nil
	})

	s, _ := newTestService(t, WithBus(bus))
	_, err := s.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, []MessageType{TypeUser, TypeAgent, TypeAgent}, got)
	assert.Equal(t, 5, scheduled)
}

func TestResetAndWelcome(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.Send(context.Background(), "schedule")
	require.NoError(t, err)

	s.Reset(context.Background(), s.Welcome(false), nil)
	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, fixtures.WelcomeSignedOut, msgs[0].Content)
	assert.Equal(t, TypeAgent, msgs[0].Type)
	assert.Empty(t, s.Events())

	assert.Equal(t, fixtures.WelcomeSignedIn, s.Welcome(true).Content)
}
