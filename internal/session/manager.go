package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mediahub/mediahub/internal/catalog"
)

var ErrRateLimited = errors.New("too many new sessions, please try again later")

// Publisher delivers events to the sockets of one session.
type Publisher interface {
	SendTo(sessionID, msgType string, payload any) error
}

// Config holds session registry settings.
type Config struct {
	Secret          string
	IdleTimeout     time.Duration
	SweepInterval   time.Duration
	CreatesPerIPMin int
}

// Session is one browser's catalog.
type Session struct {
	ID        string
	Store     *catalog.Store
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Manager owns every live session.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	tokens    *TokenIssuer
	limiter   *CreateLimiter
	publisher Publisher
	seed      func() []catalog.Item
	cfg       Config
	now       func() time.Time
	logger    zerolog.Logger

	cron gocron.Scheduler
}

// NewManager creates a session registry. seed is called once per new
// session so every catalog gets its own copy.
func NewManager(cfg Config, seed func() []catalog.Item, publisher Publisher, logger zerolog.Logger) (*Manager, error) {
	tokens, err := NewTokenIssuer(cfg.Secret)
	if err != nil {
		return nil, err
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if seed == nil {
		seed = catalog.DefaultSeed
	}

	return &Manager{
		sessions:  make(map[string]*Session),
		tokens:    tokens,
		limiter:   NewCreateLimiter(cfg.CreatesPerIPMin, time.Minute),
		publisher: publisher,
		seed:      seed,
		cfg:       cfg,
		now:       time.Now,
		logger:    logger.With().Str("component", "session").Logger(),
	}, nil
}

// Resolve returns the session named by token. When the token is empty,
// invalid, or names an expired session, a new session is created and
// its token returned; otherwise the returned token is empty.
func (m *Manager) Resolve(token, clientIP string) (*Session, string, error) {
	if token != "" {
		id, err := m.tokens.Verify(token)
		if err == nil {
			if sess, ok := m.Get(id); ok {
				return sess, "", nil
			}
			m.logger.Debug().Str("sessionId", id).Msg("session expired, starting a new one")
		} else {
			m.logger.Debug().Err(err).Msg("rejected session token")
		}
	}

	if !m.limiter.Allow(clientIP) {
		return nil, "", ErrRateLimited
	}
	return m.Create()
}

// Create starts a new seeded session.
func (m *Manager) Create() (*Session, string, error) {
	now := m.now()
	id := uuid.NewString()

	token, err := m.tokens.Issue(id, now)
	if err != nil {
		return nil, "", fmt.Errorf("issue session token: %w", err)
	}

	sess := &Session{
		ID:        id,
		CreatedAt: now,
		lastSeen:  now,
	}
	sess.Store = catalog.NewStore(m.seed(), catalog.WithNotifier(m.notifierFor(id)))

	m.mu.Lock()
	m.sessions[id] = sess
	count := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info().Str("sessionId", id).Int("sessions", count).Msg("session created")
	return sess, token, nil
}

func (m *Manager) notifierFor(id string) catalog.Notifier {
	return catalog.NotifierFunc(func(event string, payload any) {
		if m.publisher == nil {
			return
		}
		if err := m.publisher.SendTo(id, event, payload); err != nil {
			m.logger.Warn().Err(err).Str("sessionId", id).Str("event", event).Msg("failed to publish catalog event")
		}
	})
}

// Get returns a live session and marks it as used.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	sess.touch(m.now())
	return sess, true
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle longer than the configured timeout and
// returns how many were removed.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.cfg.IdleTimeout)

	m.mu.Lock()
	removed := 0
	for id, sess := range m.sessions {
		if sess.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	remaining := len(m.sessions)
	m.mu.Unlock()

	m.limiter.Prune()

	if removed > 0 {
		m.logger.Info().Int("removed", removed).Int("sessions", remaining).Msg("expired idle sessions")
	}
	return removed
}

// Start schedules the idle sweep.
func (m *Manager) Start() error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(m.cfg.SweepInterval),
		gocron.NewTask(func() { m.Sweep() }),
		gocron.WithName("session-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}

	m.cron = s
	s.Start()

	m.logger.Info().
		Dur("idleTimeout", m.cfg.IdleTimeout).
		Dur("sweepInterval", m.cfg.SweepInterval).
		Msg("session sweeper started")
	return nil
}

// Stop shuts the sweeper down.
func (m *Manager) Stop() error {
	if m.cron == nil {
		return nil
	}
	return m.cron.Shutdown()
}
