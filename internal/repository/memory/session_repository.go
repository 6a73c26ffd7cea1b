package memory

import (
	"context"
	"sync"
	"time"

	"go-contact-review-backend/internal/domain"

	"github.com/google/uuid"
)

// Config bounds the lifetime of in-process sessions. Zero values reproduce
// the unbounded reference behavior: TTL 0 means sessions never expire,
// MaxSessions 0 means no capacity limit.
type Config struct {
	TTL         time.Duration
	MaxSessions int
}

type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.ReviewSession
	cfg      Config
	stop     chan struct{}
	stopOnce sync.Once
}

// NewSessionRepository creates the in-process session store. When a TTL is
// configured a janitor goroutine sweeps expired sessions until Close.
func NewSessionRepository(cfg Config) domain.SessionRepository {
	r := &sessionRepository{
		sessions: make(map[string]*domain.ReviewSession),
		cfg:      cfg,
		stop:     make(chan struct{}),
	}
	if cfg.TTL > 0 {
		go r.janitor()
	}
	return r
}

func (r *sessionRepository) Create(ctx context.Context, contacts []domain.Contact) (string, error) {
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cfg.MaxSessions > 0 {
		for len(r.sessions) >= r.cfg.MaxSessions {
			r.evictOldestLocked()
		}
	}

	r.sessions[id] = &domain.ReviewSession{
		SessionID:   id,
		Contacts:    contacts,
		DispatchLog: make(map[int]map[domain.Target]bool),
		CreatedAt:   time.Now(),
	}
	return id, nil
}

func (r *sessionRepository) Get(ctx context.Context, sessionID string) (*domain.ReviewSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return snapshot(s), nil
}

func (r *sessionRepository) GetContact(ctx context.Context, sessionID string, index int) (*domain.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if index < 0 || index >= len(s.Contacts) {
		return nil, domain.ErrContactIndex
	}
	c := s.Contacts[index]
	return &c, nil
}

func (r *sessionRepository) RecordOutcome(ctx context.Context, sessionID string, index int, target domain.Target, ok bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, found := r.sessions[sessionID]
	if !found {
		return domain.ErrSessionNotFound
	}
	if index < 0 || index >= len(s.Contacts) {
		return domain.ErrContactIndex
	}
	if s.DispatchLog[index] == nil {
		s.DispatchLog[index] = make(map[domain.Target]bool)
	}
	s.DispatchLog[index][target] = ok
	return nil
}

func (r *sessionRepository) Len(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), nil
}

func (r *sessionRepository) Close() error {
	r.stopOnce.Do(func() { close(r.stop) })
	return nil
}

// evictOldestLocked drops the session with the earliest creation time.
// Caller holds the write lock.
func (r *sessionRepository) evictOldestLocked() {
	var oldestID string
	var oldestAt time.Time
	for id, s := range r.sessions {
		if oldestID == "" || s.CreatedAt.Before(oldestAt) {
			oldestID = id
			oldestAt = s.CreatedAt
		}
	}
	if oldestID != "" {
		delete(r.sessions, oldestID)
	}
}

func (r *sessionRepository) janitor() {
	interval := r.cfg.TTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case now := <-ticker.C:
			r.mu.Lock()
			for id, s := range r.sessions {
				if now.Sub(s.CreatedAt) > r.cfg.TTL {
					delete(r.sessions, id)
				}
			}
			r.mu.Unlock()
		}
	}
}

// snapshot copies the session so callers never share the mutable dispatch
// log with the store. The contact slice is shared: contacts are immutable
// after creation.
func snapshot(s *domain.ReviewSession) *domain.ReviewSession {
	log := make(map[int]map[domain.Target]bool, len(s.DispatchLog))
	for idx, targets := range s.DispatchLog {
		entry := make(map[domain.Target]bool, len(targets))
		for target, ok := range targets {
			entry[target] = ok
		}
		log[idx] = entry
	}
	return &domain.ReviewSession{
		SessionID:   s.SessionID,
		Contacts:    s.Contacts,
		DispatchLog: log,
		CreatedAt:   s.CreatedAt,
	}
}
