package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"calassist/internal/clock"
	"calassist/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

type brokenStorage struct{}

func (brokenStorage) GetItem(string) (string, bool, error) { return "", false, errors.New("disk on fire") }
func (brokenStorage) SetItem(string, string) error         { return errors.New("quota exceeded") }
func (brokenStorage) RemoveItem(string) error              { return errors.New("read-only") }

func newTestStore(st storage.Storage) (*Store, *recordingSleeper) {
	rec := &recordingSleeper{}
	return New(st, WithSleeper(rec.sleep)), rec
}

func TestLoadAuthState_EmptyOrCorrupt(t *testing.T) {
	tests := map[string]func(storage.Storage){
		"empty":     func(storage.Storage) {},
		"corrupt":   func(st storage.Storage) { _ = st.SetItem(DefaultKey, "{not json") },
		"wrong doc": func(st storage.Storage) { _ = st.SetItem(DefaultKey, `[1,2,3]`) },
	}
	for name, prepare := range tests {
		t.Run(name, func(t *testing.T) {
			st := storage.NewMemoryStorage()
			prepare(st)
			s, _ := newTestStore(st)

			got := s.LoadAuthState()
			assert.Equal(t, SignedOut(), got)
			assert.False(t, got.IsAuthenticated)
			assert.Nil(t, got.User)
			assert.Nil(t, got.Token)
		})
	}
}

func TestLoadAuthState_StorageFailureFallsBack(t *testing.T) {
	s, _ := newTestStore(brokenStorage{})
	assert.Equal(t, SignedOut(), s.LoadAuthState())
	assert.False(t, s.IsTokenValid())
}

func TestLogin_PersistsMockUser(t *testing.T) {
	st := storage.NewMemoryStorage()
	s, rec := newTestStore(st)
	s.Init()

	state, err := s.Login(context.Background())
	require.NoError(t, err)

	assert.True(t, state.IsAuthenticated)
	require.NotNil(t, state.User)
	assert.Equal(t, User{Name: "Test User", Email: "test@example.com", Picture: ""}, *state.User)
	require.NotNil(t, state.Token)
	assert.NotEmpty(t, *state.Token)
	assert.Equal(t, []time.Duration{time.Second}, rec.waits)

	assert.Equal(t, state, s.LoadAuthState())
	assert.Equal(t, state, s.State())
	assert.True(t, s.IsTokenValid())

	raw, ok, err := st.GetItem(DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t,
		`{"isAuthenticated":true,"user":{"name":"Test User","email":"test@example.com","picture":""},"token":"mock-auth-token"}`,
		raw)
}

func TestLogin_SucceedsEvenWhenStorageFails(t *testing.T) {
	s, _ := newTestStore(brokenStorage{})
	state, err := s.Login(context.Background())
	require.NoError(t, err)
	assert.True(t, state.IsAuthenticated)
}

func TestLogout_ClearsPersistedState(t *testing.T) {
	st := storage.NewMemoryStorage()
	s, rec := newTestStore(st)
	_, err := s.Login(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Logout(context.Background()))
	assert.Equal(t, []time.Duration{time.Second, 500 * time.Millisecond}, rec.waits)
	assert.Equal(t, SignedOut(), s.LoadAuthState())
	assert.Equal(t, SignedOut(), s.State())

	_, ok, _ := st.GetItem(DefaultKey)
	assert.False(t, ok)
}

func TestInit_DowngradesTokenlessSessionWithoutPersisting(t *testing.T) {
	st := storage.NewMemoryStorage()
	stale := `{"isAuthenticated":true,"user":{"name":"Old","email":"old@example.com","picture":""},"token":null}`
	require.NoError(t, st.SetItem(DefaultKey, stale))

	s, _ := newTestStore(st)
	state := s.Init()
	assert.Equal(t, SignedOut(), state)
	assert.False(t, s.State().IsAuthenticated)

	raw, ok, err := st.GetItem(DefaultKey)
	require.NoError(t, err)
	require.True(t, ok, "downgrade must not touch storage")
	assert.Equal(t, stale, raw)
}

func TestInit_RestoresPersistedSession(t *testing.T) {
	st := storage.NewMemoryStorage()
	first, _ := newTestStore(st)
	want, err := first.Login(context.Background())
	require.NoError(t, err)

	second, _ := newTestStore(st)
	assert.Equal(t, want, second.Init())
}

func TestLogin_CancelledContext(t *testing.T) {
	s := New(storage.NewMemoryStorage(), WithLoginDelay(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Login(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, s.State().IsAuthenticated)
	assert.False(t, s.Loading())
}

func TestLoading_DuringLogin(t *testing.T) {
	var s *Store
	var seen bool
	s = New(storage.NewMemoryStorage(), WithSleeper(func(ctx context.Context, _ time.Duration) error {
		seen = s.Loading()
		return nil
	}))
	_, err := s.Login(context.Background())
	require.NoError(t, err)
	assert.True(t, seen)
	assert.False(t, s.Loading())
}

func TestClose(t *testing.T) {
	s := New(storage.NewMemoryStorage(), WithSleeper(clock.NoSleep))
	_, err := s.Login(context.Background())
	require.NoError(t, err)

	s.Close()
	assert.False(t, s.State().IsAuthenticated)
	_, err = s.Login(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Logout(context.Background()), ErrClosed)

	// the persisted session survives Close
	assert.True(t, s.IsTokenValid())
}

func TestWithKey(t *testing.T) {
	st := storage.NewMemoryStorage()
	s := New(st, WithKey("other_slot"), WithSleeper(clock.NoSleep))
	_, err := s.Login(context.Background())
	require.NoError(t, err)

	_, ok, _ := st.GetItem("other_slot")
	assert.True(t, ok)
	_, ok, _ = st.GetItem(DefaultKey)
	assert.False(t, ok)
}
