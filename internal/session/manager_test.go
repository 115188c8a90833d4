package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediahub/mediahub/internal/catalog"
)

type sentMessage struct {
	sessionID string
	msgType   string
	payload   any
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (p *fakePublisher) SendTo(sessionID, msgType string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, sentMessage{sessionID: sessionID, msgType: msgType, payload: payload})
	return p.err
}

func newTestManager(t *testing.T, cfg Config, pub Publisher) *Manager {
	t.Helper()
	if cfg.Secret == "" {
		cfg.Secret = "test-secret"
	}
	m, err := NewManager(cfg, nil, pub, zerolog.Nop())
	require.NoError(t, err)
	return m
}

func TestManager_ResolveCreatesSeededSession(t *testing.T) {
	m := newTestManager(t, Config{}, nil)

	sess, token, err := m.Resolve("", "10.0.0.1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.Equal(t, 4, sess.Store.Len())
	assert.Equal(t, 1, m.Count())

	again, newToken, err := m.Resolve(token, "10.0.0.1")
	require.NoError(t, err)
	assert.Empty(t, newToken)
	assert.Same(t, sess, again)
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	m := newTestManager(t, Config{}, nil)

	a, _, err := m.Create()
	require.NoError(t, err)
	b, _, err := m.Create()
	require.NoError(t, err)

	d := catalog.NewDraft()
	title := "Только в A"
	d = catalog.DraftPatch{Title: &title}.Apply(d)
	_, err = a.Store.Add(d)
	require.NoError(t, err)

	assert.Equal(t, 5, a.Store.Len())
	assert.Equal(t, 4, b.Store.Len())
	assert.NotEqual(t, a.ID, b.ID)
}

func TestManager_InvalidTokenStartsNewSession(t *testing.T) {
	m := newTestManager(t, Config{}, nil)
	other := newTestManager(t, Config{Secret: "another-secret"}, nil)

	_, foreign, err := other.Create()
	require.NoError(t, err)

	for _, token := range []string{"garbage", foreign} {
		sess, newToken, err := m.Resolve(token, "10.0.0.1")
		require.NoError(t, err)
		assert.NotNil(t, sess)
		assert.NotEmpty(t, newToken)
	}
	assert.Equal(t, 2, m.Count())
}

func TestManager_SweepExpiresIdleSessions(t *testing.T) {
	m := newTestManager(t, Config{IdleTimeout: time.Minute}, nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	stale, staleToken, err := m.Create()
	require.NoError(t, err)

	now = now.Add(45 * time.Second)
	fresh, _, err := m.Create()
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, m.Sweep())

	_, ok := m.Get(stale.ID)
	assert.False(t, ok)
	_, ok = m.Get(fresh.ID)
	assert.True(t, ok)

	sess, newToken, err := m.Resolve(staleToken, "10.0.0.1")
	require.NoError(t, err)
	assert.NotEqual(t, stale.ID, sess.ID)
	assert.NotEmpty(t, newToken)
}

func TestManager_GetRefreshesLastSeen(t *testing.T) {
	m := newTestManager(t, Config{IdleTimeout: time.Minute}, nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	sess, _, err := m.Create()
	require.NoError(t, err)

	now = now.Add(50 * time.Second)
	_, ok := m.Get(sess.ID)
	require.True(t, ok)

	now = now.Add(50 * time.Second)
	assert.Equal(t, 0, m.Sweep())
	assert.Equal(t, now.Add(-50*time.Second), sess.LastSeen())
}

func TestManager_RateLimitsCreation(t *testing.T) {
	m := newTestManager(t, Config{CreatesPerIPMin: 2}, nil)

	for i := 0; i < 2; i++ {
		_, _, err := m.Resolve("", "10.0.0.9")
		require.NoError(t, err)
	}
	_, _, err := m.Resolve("", "10.0.0.9")
	assert.ErrorIs(t, err, ErrRateLimited)

	_, _, err = m.Resolve("", "10.0.0.10")
	assert.NoError(t, err)
}

func TestManager_PublishesStoreEvents(t *testing.T) {
	pub := &fakePublisher{err: errors.New("no sockets")}
	m := newTestManager(t, Config{}, pub)

	sess, _, err := m.Create()
	require.NoError(t, err)

	_, err = sess.Store.Submit()
	require.Error(t, err)

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.sent, 1)
	assert.Equal(t, sess.ID, pub.sent[0].sessionID)
	assert.Equal(t, catalog.EventNotice, pub.sent[0].msgType)
	assert.Equal(t, catalog.Notice{Level: catalog.NoticeError, Message: catalog.MessageTitleRequired}, pub.sent[0].payload)
}

func TestManager_StartStop(t *testing.T) {
	m := newTestManager(t, Config{SweepInterval: time.Hour}, nil)
	require.NoError(t, m.Start())
	assert.NoError(t, m.Stop())
}

func TestMiddleware_BindsSession(t *testing.T) {
	m := newTestManager(t, Config{}, nil)

	e := echo.New()
	e.GET("/count", func(c echo.Context) error {
		store, err := catalog.StoreFrom(c)
		if err != nil {
			return err
		}
		sess, ok := FromContext(c)
		if !ok {
			return c.String(http.StatusInternalServerError, "no session")
		}
		return c.JSON(http.StatusOK, map[string]any{"id": sess.ID, "items": store.Len()})
	}, m.Middleware("mediahub_session", false))

	req := httptest.NewRequest(http.MethodGet, "/count", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	token := rec.Header().Get(HeaderToken)
	require.NotEmpty(t, token)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "mediahub_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	// cookie round trip keeps the same session
	req = httptest.NewRequest(http.MethodGet, "/count", nil)
	req.AddCookie(&http.Cookie{Name: "mediahub_session", Value: token})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(HeaderToken))

	// header round trip too
	req = httptest.NewRequest(http.MethodGet, "/count", nil)
	req.Header.Set(HeaderToken, token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, m.Count())
}

func TestMiddleware_RateLimited(t *testing.T) {
	m := newTestManager(t, Config{CreatesPerIPMin: 1}, nil)

	e := echo.New()
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, m.Middleware("s", false))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestTokenIssuer(t *testing.T) {
	issuer, err := NewTokenIssuer("")
	require.NoError(t, err)

	token, err := issuer.Issue("abc", time.Now())
	require.NoError(t, err)

	id, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	_, err = issuer.Verify(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
