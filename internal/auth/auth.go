package auth

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"calassist/internal/clock"
	"calassist/internal/fixtures"
	"calassist/internal/storage"

	log "github.com/sirupsen/logrus"
)

const DefaultKey = "calendar_assistant_auth"

var ErrClosed = errors.New("auth store closed")

type User struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// State is the persisted authentication record. User is expected to be set
// when IsAuthenticated is, but nothing enforces it.
type State struct {
	IsAuthenticated bool    `json:"isAuthenticated"`
	User            *User   `json:"user"`
	Token           *string `json:"token"`
}

// SignedOut is the default state.
func SignedOut() State {
	return State{}
}

func (s State) HasToken() bool {
	return s.Token != nil && *s.Token != ""
}

// Store owns the authentication state of one session and the storage slot it
// is persisted in.
type Store struct {
	storage     storage.Storage
	key         string
	loginDelay  time.Duration
	logoutDelay time.Duration
	sleep       clock.Sleeper

	mu      sync.RWMutex
	state   State
	pending int
	closed  bool
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithLoginDelay(d time.Duration) Option {
	return func(s *Store) { s.loginDelay = d }
}

func WithLogoutDelay(d time.Duration) Option {
	return func(s *Store) { s.logoutDelay = d }
}

func WithSleeper(sl clock.Sleeper) Option {
	return func(s *Store) {
		if sl != nil {
			s.sleep = sl
		}
	}
}

func New(st storage.Storage, opts ...Option) *Store {
	s := &Store{
		storage:     st,
		key:         DefaultKey,
		loginDelay:  time.Second,
		logoutDelay: 500 * time.Millisecond,
		sleep:       clock.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init loads the persisted state. A record that claims to be authenticated
// without a valid token is downgraded in memory only; the stale record stays
// in storage until the next login or logout.
func (s *Store) Init() State {
	state := s.LoadAuthState()
	if state.IsAuthenticated && !s.IsTokenValid() {
		log.Warn("auth: persisted session has no valid token, treating as signed out")
		state = SignedOut()
	}
	s.mu.Lock()
	s.state = state
	s.closed = false
	s.mu.Unlock()
	return state
}

// LoadAuthState reads the persisted record. Missing or malformed data yields
// the signed-out state; errors are logged, never returned.
func (s *Store) LoadAuthState() State {
	raw, ok, err := s.storage.GetItem(s.key)
	if err != nil {
		log.Errorf("auth: error loading auth state from storage: %v", err)
		return SignedOut()
	}
	if !ok {
		return SignedOut()
	}
	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		log.Errorf("auth: error loading auth state from storage: %v", err)
		return SignedOut()
	}
	return state
}

// IsTokenValid reports whether the persisted record has a non-empty token.
// There is no expiry.
func (s *Store) IsTokenValid() bool {
	return s.LoadAuthState().HasToken()
}

// Login waits the simulated latency and then signs in the mock user. It only
// fails when ctx is done first or the store is closed.
func (s *Store) Login(ctx context.Context) (State, error) {
	if err := s.begin(); err != nil {
		return State{}, err
	}
	defer s.end()

	if err := s.sleep(ctx, s.loginDelay); err != nil {
		log.Errorf("auth: login error: %v", err)
		return s.State(), err
	}

	token := fixtures.Token
	state := State{
		IsAuthenticated: true,
		User: &User{
			Name:    fixtures.UserName,
			Email:   fixtures.UserEmail,
			Picture: fixtures.UserPicture,
		},
		Token: &token,
	}
	s.save(state)

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	log.Infof("auth: signed in as %s", state.User.Email)
	return state, nil
}

// Logout waits the simulated latency and clears the persisted record.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	if err := s.sleep(ctx, s.logoutDelay); err != nil {
		log.Errorf("auth: logout error: %v", err)
		return err
	}
	s.clear()

	s.mu.Lock()
	s.state = SignedOut()
	s.mu.Unlock()
	log.Info("auth: signed out")
	return nil
}

// State returns the in-memory state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Loading reports whether a login or logout is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending > 0
}

// Close drops the in-memory state. Persisted data is left alone.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.state = SignedOut()
}

func (s *Store) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.pending++
	return nil
}

func (s *Store) end() {
	s.mu.Lock()
	s.pending--
	s.mu.Unlock()
}

func (s *Store) save(state State) {
	data, err := json.Marshal(state)
	if err != nil {
		log.Errorf("auth: error saving auth state to storage: %v", err)
		return
	}
	if err := s.storage.SetItem(s.key, string(data)); err != nil {
		log.Errorf("auth: error saving auth state to storage: %v", err)
	}
}

func (s *Store) clear() {
	if err := s.storage.RemoveItem(s.key); err != nil {
		log.Errorf("auth: error clearing auth state from storage: %v", err)
	}
}
