package chat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"calassist/internal/calendar"
	"calassist/internal/clock"
	"calassist/internal/event_bus"
	"calassist/internal/fixtures"
	"calassist/internal/middleware"

	log "github.com/sirupsen/logrus"
)

var (
	ErrEmptyMessage = errors.New("empty message")
	ErrNoReply      = errors.New("no intent produced a reply")
)

// Service owns one conversation: the append-only thread, the running event
// list and the processing flag.
type Service struct {
	chain    *middleware.Chain
	clock    clock.Clock
	sleep    clock.Sleeper
	scale    float64
	bus      *event_bus.EventBus
	notify   Notifier
	switches map[string]any

	mu         sync.RWMutex
	messages   []Message
	events     []calendar.Event
	processing int
}

type ServiceOption func(*Service)

func WithChain(chain *middleware.Chain) ServiceOption {
	return func(s *Service) { s.chain = chain }
}

func WithClock(c clock.Clock) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithSleeper(sl clock.Sleeper) ServiceOption {
	return func(s *Service) {
		if sl != nil {
			s.sleep = sl
		}
	}
}

// WithDelayScale multiplies every simulated reply delay. 0 or less makes
// replies land immediately.
func WithDelayScale(f float64) ServiceOption {
	return func(s *Service) { s.scale = f }
}

func WithBus(bus *event_bus.EventBus) ServiceOption {
	return func(s *Service) { s.bus = bus }
}

func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) { s.notify = n }
}

// WithIntentSwitches is copied into every dispatch event's Context, so
// {"demo": false} turns the demo intent off for this conversation.
func WithIntentSwitches(sw map[string]any) ServiceOption {
	return func(s *Service) { s.switches = sw }
}

func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		clock:    clock.SystemClock{},
		sleep:    clock.Sleep,
		scale:    1,
		messages: make([]Message, 0, 16),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle runs one message through the intent chain against current and
// returns what it produced. It does not touch the service's thread or event
// list. Only an empty message is reported as an error; any other failure is
// folded into the turn as an apology and recorded in Turn.Err.
func (s *Service) Handle(ctx context.Context, text string, current []calendar.Event) (Turn, error) {
	if strings.TrimSpace(text) == "" {
		return Turn{}, ErrEmptyMessage
	}

	var turn Turn
	turn.Messages = append(turn.Messages, s.userMessage(text))
	turn.IntentID, turn.Err = s.respond(ctx, text, current,
		func(m Message) { turn.Messages = append(turn.Messages, m) },
		func(evs []calendar.Event) { turn.Events = append(turn.Events, evs...) },
	)
	if turn.Err != nil {
		turn.Messages = append(turn.Messages, s.apology())
	}
	return turn, nil
}

// Send is Handle against the service's own state: the user echo is appended
// before any delay, each agent message as it lands and the scheduled events
// once the replies are in. On failure the notifier fires and an apology is
// appended; whatever landed before stays. The processing flag is cleared on
// every path.
func (s *Service) Send(ctx context.Context, text string) (Turn, error) {
	if strings.TrimSpace(text) == "" {
		return Turn{}, ErrEmptyMessage
	}

	s.setProcessing(ctx, +1)
	defer s.setProcessing(ctx, -1)

	var turn Turn
	add := func(m Message) {
		turn.Messages = append(turn.Messages, m)
		s.appendMessage(ctx, m)
	}
	add(s.userMessage(text))

	turn.IntentID, turn.Err = s.respond(ctx, text, s.Events(), add, func(evs []calendar.Event) {
		turn.Events = append(turn.Events, evs...)
		s.appendEvents(ctx, evs)
	})
	if turn.Err != nil {
		log.Errorf("chat: error processing message: %v", turn.Err)
		s.notifyFailure(ctx)
		add(s.apology())
	}
	return turn, nil
}

// respond dispatches text and delivers the matching intent's replies.
// Panics raised by an intent are returned as errors.
func (s *Service) respond(
	ctx context.Context,
	text string,
	current []calendar.Event,
	emit func(Message),
	schedule func([]calendar.Event),
) (intentID string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("intent panic: %v", r)
		}
	}()

	if s.chain == nil {
		return "", ErrNoReply
	}

	e := middleware.NewEvent(text, s.clock.Now(), slices.Clone(current))
	for k, v := range s.switches {
		e.Context[k] = v
	}

	results, err := s.chain.Dispatch(ctx, e)
	if err != nil {
		return "", err
	}
	m, ok := middleware.Matched(results)
	if !ok || len(m.Decision.Replies) == 0 {
		return "", ErrNoReply
	}
	log.Debugf("chat: %q answered by %s (%s)", e.Normalized, m.IntentID, m.Decision.Reason)

	for _, r := range m.Decision.Replies {
		if err := s.sleep(ctx, s.scaled(r.Delay)); err != nil {
			return "", fmt.Errorf("waiting for %s reply: %w", m.IntentID, err)
		}
		emit(Message{
			Content:   r.Content,
			Type:      TypeAgent,
			Timestamp: s.clock.Now(),
			Events:    slices.Clone(r.Events),
			Custom:    r.Custom,
		})
	}
	if len(m.Decision.Schedule) > 0 {
		schedule(slices.Clone(m.Decision.Schedule))
	}
	return m.IntentID, nil
}

// Reset replaces the thread with a single message and the event list with
// events. Used when the signed-in user changes.
func (s *Service) Reset(ctx context.Context, first Message, events []calendar.Event) {
	s.mu.Lock()
	s.messages = append(make([]Message, 0, 16), first)
	s.events = slices.Clone(events)
	thread := slices.Clone(s.messages)
	s.mu.Unlock()

	s.bus.Emit(context.WithoutCancel(ctx), event_bus.ThreadReset, thread)
}

// Messages returns a copy of the thread.
func (s *Service) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.messages)
}

// Events returns a copy of the running event list.
func (s *Service) Events() []calendar.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}

// Processing reports whether a turn is in flight. It is advisory: nothing
// stops a caller from starting another turn meanwhile.
func (s *Service) Processing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.processing > 0
}

// Welcome builds the first message of a thread.
func (s *Service) Welcome(signedIn bool) Message {
	content := fixtures.WelcomeSignedOut
	if signedIn {
		content = fixtures.WelcomeSignedIn
	}
	return Message{Content: content, Type: TypeAgent, Timestamp: s.clock.Now()}
}

func (s *Service) userMessage(text string) Message {
	return Message{Content: text, Type: TypeUser, Timestamp: s.clock.Now()}
}

func (s *Service) apology() Message {
	return Message{Content: fixtures.Apology, Type: TypeSystem, Timestamp: s.clock.Now()}
}

func (s *Service) scaled(d time.Duration) time.Duration {
	if s.scale <= 0 {
		return 0
	}
	return time.Duration(float64(d) * s.scale)
}

func (s *Service) appendMessage(ctx context.Context, m Message) {
	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()
	s.bus.Emit(context.WithoutCancel(ctx), event_bus.MessageAppended, m)
}

func (s *Service) appendEvents(ctx context.Context, evs []calendar.Event) {
	s.mu.Lock()
	s.events = append(s.events, evs...)
	s.mu.Unlock()
	s.bus.Emit(context.WithoutCancel(ctx), event_bus.EventsScheduled, evs)
}

func (s *Service) setProcessing(ctx context.Context, delta int) {
	s.mu.Lock()
	before := s.processing > 0
	s.processing += delta
	after := s.processing > 0
	s.mu.Unlock()
	if before != after {
		s.bus.Emit(context.WithoutCancel(ctx), event_bus.ProcessingChanged, after)
	}
}

func (s *Service) notifyFailure(ctx context.Context) {
	n := Notification{
		Title:       fixtures.FailureTitle,
		Description: fixtures.FailureNotice,
		Variant:     VariantDestructive,
	}
	if s.notify != nil {
		s.notify(n)
	}
	s.bus.Emit(context.WithoutCancel(ctx), event_bus.Notification, n)
}
