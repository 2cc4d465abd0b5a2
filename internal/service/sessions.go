package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DeepakTayde/rentpe-v1-sub002/internal/metrics"
)

// SessionManager holds one Session per session id in process memory
type SessionManager struct {
	extractor    FilterExtractor
	finder       PropertyFinder
	conversation *ConversationManager
	opts         SessionOptions
	idleTTL      time.Duration
	logger       *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionManager creates an empty session registry
func NewSessionManager(
	extractor FilterExtractor,
	finder PropertyFinder,
	conversation *ConversationManager,
	opts SessionOptions,
	idleTTL time.Duration,
	logger *zap.Logger,
) *SessionManager {
	return &SessionManager{
		extractor:    extractor,
		finder:       finder,
		conversation: conversation,
		opts:         opts,
		idleTTL:      idleTTL,
		logger:       logger,
		sessions:     make(map[string]*Session),
	}
}

// Get returns the session for id, if any
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	return session, ok
}

// GetOrCreate returns the session for id, creating it when unknown.
// An empty id always starts a new session with a generated id.
func (m *SessionManager) GetOrCreate(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != "" {
		if session, ok := m.sessions[id]; ok {
			// keeps the janitor off a session that is about to serve a turn
			session.touch()
			return session
		}
	} else {
		id = uuid.NewString()
	}

	session := NewSession(id, m.extractor, m.finder, m.conversation, m.opts, m.logger)
	m.sessions[id] = session
	metrics.ActiveSessions.Set(float64(len(m.sessions)))

	m.logger.Debug("session created", zap.String("session_id", id))
	return session
}

// Remove closes and forgets the session for id. It reports false when id is unknown.
func (m *SessionManager) Remove(id string) bool {
	m.mu.Lock()
	session, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		metrics.ActiveSessions.Set(float64(len(m.sessions)))
	}
	m.mu.Unlock()

	if ok {
		session.Close()
	}
	return ok
}

// Len returns the number of live sessions
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// EvictIdle closes every session inactive for longer than the idle TTL
func (m *SessionManager) EvictIdle(now time.Time) int {
	if m.idleTTL <= 0 {
		return 0
	}

	m.mu.Lock()
	var expired []*Session
	for id, session := range m.sessions {
		if now.Sub(session.LastActive()) > m.idleTTL {
			expired = append(expired, session)
			delete(m.sessions, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	for _, session := range expired {
		session.Close()
	}
	if len(expired) > 0 {
		m.logger.Info("evicted idle sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run evicts idle sessions until ctx is cancelled
func (m *SessionManager) Run(ctx context.Context) {
	if m.idleTTL <= 0 {
		return
	}

	interval := m.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.EvictIdle(now)
		}
	}
}

// Close stops every session
func (m *SessionManager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	metrics.ActiveSessions.Set(0)
	m.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}
