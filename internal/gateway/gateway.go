package gateway

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"calassist/internal/auth"
	"calassist/internal/chat"
	"calassist/internal/clock"
	"calassist/internal/config"
	"calassist/internal/event_bus"
	"calassist/internal/middleware"
	"calassist/internal/storage"
	_ "calassist/middlewares/autoload" // Auto-load all intents

	log "github.com/sirupsen/logrus"
)

// Gateway turns configuration into ready-to-use sessions. Front doors get
// one and open as many sessions as they need.
type Gateway struct {
	Config config.Application

	storage storage.Storage
	clock   clock.Clock
	sleep   clock.Sleeper

	mu       sync.Mutex
	chain    *middleware.Chain
	debugLog io.WriteCloser
}

type Option func(*Gateway)

// WithStorage replaces the file storage under Config.Storage.Dir.
func WithStorage(st storage.Storage) Option {
	return func(g *Gateway) { g.storage = st }
}

func WithClock(c clock.Clock) Option {
	return func(g *Gateway) { g.clock = c }
}

// WithSleeper replaces the real timer behind every simulated delay.
func WithSleeper(sl clock.Sleeper) Option {
	return func(g *Gateway) { g.sleep = sl }
}

func New(cfg config.Application, opts ...Option) (*Gateway, error) {
	g := &Gateway{
		Config: cfg,
		clock:  clock.SystemClock{},
		sleep:  clock.Sleep,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.storage == nil {
		if err := os.MkdirAll(cfg.Storage.Dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create storage dir: %w", err)
		}
		g.storage = storage.NewFileStorage(cfg.Storage.Dir)
	}
	return g, nil
}

// Chain returns the intent chain shared by every session, building it on
// first use.
func (g *Gateway) Chain() *middleware.Chain {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.chain != nil {
		return g.chain
	}

	var debugW io.Writer
	if path := g.Config.DebugLog; path != "" {
		_ = os.MkdirAll(filepath.Dir(path), 0o755)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Warnf("failed to open intent debug log (%s): %v", path, err)
		} else {
			g.debugLog = f
			debugW = f
		}
	}

	g.chain = middleware.NewChainFromRegistry(g.Config.Chat.DisabledIntents, debugW)
	if g.chain == nil {
		log.Warn("every intent is disabled, all messages will fail")
	}
	return g.chain
}

// NewSession wires a fresh bus, auth store and chat service and runs the auth
// bootstrap.
func (g *Gateway) NewSession(ctx context.Context) *Session {
	bus := event_bus.NewEventBus()

	store := auth.New(g.storage,
		auth.WithKey(g.Config.Auth.Key),
		auth.WithLoginDelay(g.Config.Auth.LoginDelay),
		auth.WithLogoutDelay(g.Config.Auth.LogoutDelay),
		auth.WithSleeper(g.sleep),
	)

	svc := chat.NewService(
		chat.WithChain(g.Chain()),
		chat.WithClock(g.clock),
		chat.WithSleeper(g.sleep),
		chat.WithDelayScale(g.Config.Chat.DelayScale),
		chat.WithBus(bus),
	)

	s := &Session{
		auth:  store,
		chat:  svc,
		bus:   bus,
		clock: g.clock,
	}
	s.Init(ctx)
	return s
}

// Storage exposes the slot the sessions persist auth state in.
func (g *Gateway) Storage() storage.Storage {
	return g.storage
}

func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.debugLog == nil {
		return nil
	}
	err := g.debugLog.Close()
	g.debugLog = nil
	return err
}
